package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Question represents a question-bank entry. Text is bilingual; the
// Bengali text is preferred for display with English as fallback.
// Options are stored raw because legacy rows mix bare strings and
// {text, isCorrect} objects — use NormalizeOptions to read them.
type Question struct {
	ID             uuid.UUID       `json:"id"`
	SubjectID      *uuid.UUID      `json:"subject_id,omitempty"`
	ChapterID      *uuid.UUID      `json:"chapter_id,omitempty"`
	TopicID        *uuid.UUID      `json:"topic_id,omitempty"`
	ExamTypeID     *uuid.UUID      `json:"exam_type_id,omitempty"`
	QuestionTextBn string          `json:"question_text_bn"`
	QuestionTextEn string          `json:"question_text_en,omitempty"`
	Options        json.RawMessage `json:"options"`
	Explanation    string          `json:"explanation,omitempty"`
	Difficulty     string          `json:"difficulty,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Text returns the display text, preferring Bengali.
func (q *Question) Text() string {
	if q.QuestionTextBn != "" {
		return q.QuestionTextBn
	}
	return q.QuestionTextEn
}

// Option is the uniform option shape after normalization.
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect,omitempty"`
}

// NormalizeOptions parses a raw options array where each element is either
// a bare string or an {text, isCorrect} object, into uniform Options.
// Elements of any other shape are skipped.
func NormalizeOptions(raw json.RawMessage) []Option {
	if len(raw) == 0 {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	options := make([]Option, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			options = append(options, Option{Text: s})
			continue
		}
		var o Option
		if err := json.Unmarshal(item, &o); err == nil && o.Text != "" {
			options = append(options, o)
		}
	}
	return options
}

// CorrectAnswer returns the text of the first option flagged correct,
// or "" when the question has no answer key.
func CorrectAnswer(options []Option) string {
	for _, o := range options {
		if o.IsCorrect {
			return o.Text
		}
	}
	return ""
}
