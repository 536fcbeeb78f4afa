package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AccessType controls which students may attempt an exam.
type AccessType string

const (
	AccessTypeAll      AccessType = "all"
	AccessTypeSpecific AccessType = "specific"
)

// Exam represents an exam entity. Behavioral configuration is kept as a raw
// JSON blob (legacy rows store booleans as the strings "true"/"false") and
// must be read through ParseExamConfig.
type Exam struct {
	ID               uuid.UUID       `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description,omitempty"`
	Instructions     string          `json:"instructions,omitempty"`
	Warnings         string          `json:"warnings,omitempty"`
	SubjectID        *uuid.UUID      `json:"subject_id,omitempty"`
	DurationMinutes  int             `json:"duration"`
	TotalMarks       float64         `json:"total_marks"`
	MarksPerQuestion float64         `json:"marks_per_question"`
	QuestionIDs      []uuid.UUID     `json:"question_ids"`
	StartDate        string          `json:"start_date,omitempty"` // "2006-01-02"
	StartTime        string          `json:"start_time,omitempty"` // "15:04"
	EndDate          string          `json:"end_date,omitempty"`
	EndTime          string          `json:"end_time,omitempty"`
	Published        bool            `json:"published"`
	PublishedAt      *time.Time      `json:"published_at,omitempty"`
	Config           json.RawMessage `json:"config"`
	AccessType       AccessType      `json:"access_type"`
	AllowedStudents  []uuid.UUID     `json:"allowed_students,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ExamWithQuestions is the populated shape returned by GET /exams/:id.
type ExamWithQuestions struct {
	Exam
	Questions []Question `json:"questions"`
}

// Question display modes.
const (
	NumberingSequential = "sequential"
	NumberingRandom     = "random"

	PresentationAllAtOnce = "all-at-once"
	PresentationOneByOne  = "one-by-one"
)

// ExamConfig is the normalized behavioral configuration of an exam.
// All fields are plain Go values with the documented defaults applied;
// code past the parse boundary never branches on payload shape again.
type ExamConfig struct {
	NegativeMarking       bool    `json:"negative_marking"`
	NegativeMarkValue     float64 `json:"negative_mark_value"`
	QuestionNumbering     string  `json:"question_numbering"`
	QuestionPresentation  string  `json:"question_presentation"`
	ShuffleQuestions      bool    `json:"shuffle_questions"`
	ShuffleOptions        bool    `json:"shuffle_options"`
	AllowMultipleAttempts bool    `json:"allow_multiple_attempts"`
	AllowAnswerChange     bool    `json:"allow_answer_change"`
	ResultVisibility      string  `json:"result_visibility"`
	AnswerVisibility      string  `json:"answer_visibility"`
	AutoSubmit            bool    `json:"auto_submit"`
}

// rawExamConfig mirrors the stored blob before normalization. Boolean
// fields arrive either as JSON booleans or as the strings "true"/"false".
type rawExamConfig struct {
	NegativeMarking       json.RawMessage `json:"negativeMarking"`
	NegativeMarkValue     *float64        `json:"negativeMarkValue"`
	QuestionNumbering     string          `json:"questionNumbering"`
	QuestionPresentation  string          `json:"questionPresentation"`
	ShuffleQuestions      json.RawMessage `json:"shuffleQuestions"`
	ShuffleOptions        json.RawMessage `json:"shuffleOptions"`
	AllowMultipleAttempts json.RawMessage `json:"allowMultipleAttempts"`
	AllowAnswerChange     json.RawMessage `json:"allowAnswerChange"`
	ResultVisibility      string          `json:"resultVisibility"`
	AnswerVisibility      string          `json:"answerVisibility"`
	AutoSubmit            json.RawMessage `json:"autoSubmit"`
}

// ParseExamConfig normalizes a raw config blob into an ExamConfig,
// applying the documented default for every absent or malformed field.
// A nil or unparseable blob yields the full default configuration.
func ParseExamConfig(raw json.RawMessage) ExamConfig {
	cfg := ExamConfig{
		QuestionNumbering:    NumberingSequential,
		QuestionPresentation: PresentationAllAtOnce,
		// Only an explicit false makes an exam single-attempt; an absent
		// flag permits retakes.
		AllowMultipleAttempts: true,
		AllowAnswerChange:     true,
		ResultVisibility:      "immediate",
		AnswerVisibility:      "after-exam-end",
		AutoSubmit:            true,
	}

	if len(raw) == 0 {
		return cfg
	}

	var rc rawExamConfig
	if err := json.Unmarshal(raw, &rc); err != nil {
		return cfg
	}

	cfg.NegativeMarking = flexBool(rc.NegativeMarking, cfg.NegativeMarking)
	if rc.NegativeMarkValue != nil {
		cfg.NegativeMarkValue = *rc.NegativeMarkValue
	}
	if rc.QuestionNumbering == NumberingRandom {
		cfg.QuestionNumbering = NumberingRandom
	}
	if rc.QuestionPresentation == PresentationOneByOne {
		cfg.QuestionPresentation = PresentationOneByOne
	}
	cfg.ShuffleQuestions = flexBool(rc.ShuffleQuestions, cfg.ShuffleQuestions)
	cfg.ShuffleOptions = flexBool(rc.ShuffleOptions, cfg.ShuffleOptions)
	cfg.AllowMultipleAttempts = flexBool(rc.AllowMultipleAttempts, cfg.AllowMultipleAttempts)
	cfg.AllowAnswerChange = flexBool(rc.AllowAnswerChange, cfg.AllowAnswerChange)
	if rc.ResultVisibility != "" {
		cfg.ResultVisibility = rc.ResultVisibility
	}
	if rc.AnswerVisibility != "" {
		cfg.AnswerVisibility = rc.AnswerVisibility
	}
	cfg.AutoSubmit = flexBool(rc.AutoSubmit, cfg.AutoSubmit)

	return cfg
}

// flexBool accepts a JSON boolean or the strings "true"/"false" (any case).
// Anything else falls back to the provided default.
func flexBool(raw json.RawMessage, fallback bool) bool {
	if len(raw) == 0 {
		return fallback
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.ToLower(s) {
		case "true":
			return true
		case "false":
			return false
		}
	}
	return fallback
}
