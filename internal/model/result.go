package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamResult is the scored outcome of one attempt. A (student, exam) pair
// produces at most one row unless the exam allows multiple attempts; the
// server is the authority of record, the per-user store holds a fallback
// copy when the write fails.
type ExamResult struct {
	ID          uuid.UUID         `json:"id"`
	ExamID      uuid.UUID         `json:"exam_id"`
	StudentID   uuid.UUID         `json:"student_id"`
	Score       float64           `json:"score"`
	TotalMarks  float64           `json:"total_marks"`
	Percentage  int               `json:"percentage"`
	Answers     map[string]string `json:"answers"` // question id → selected option text
	TimeTaken   int               `json:"time_taken"` // seconds
	CompletedAt time.Time         `json:"completed_at"`
}

// SubmitResultRequest is the payload for POST /exam-results.
// Score fields are advisory: for question-bank exams the server recomputes
// them from the answer key before persisting.
type SubmitResultRequest struct {
	ExamID     string            `json:"examId" binding:"required,uuid"`
	Answers    map[string]string `json:"answers" binding:"required"`
	Score      float64           `json:"score" binding:"min=0"`
	TotalMarks float64           `json:"totalMarks" binding:"min=0"`
	Percentage int               `json:"percentage" binding:"min=0,max=100"`
	TimeTaken  int               `json:"timeTaken" binding:"min=0"`
}

// ReviewStatus classifies one question inside a result review.
type ReviewStatus string

const (
	ReviewCorrect ReviewStatus = "correct"
	ReviewWrong   ReviewStatus = "wrong"
	ReviewSkipped ReviewStatus = "skipped"
)

// QuestionReview is one row of the scored answer review.
type QuestionReview struct {
	QuestionID    uuid.UUID    `json:"question_id"`
	QuestionText  string       `json:"question_text"`
	Options       []Option     `json:"options"`
	CorrectAnswer string       `json:"correct_answer"`
	GivenAnswer   string       `json:"given_answer,omitempty"`
	Status        ReviewStatus `json:"status"`
	Explanation   string       `json:"explanation,omitempty"`
}

// SubjectHistoryEntry is one prior result on the same subject.
type SubjectHistoryEntry struct {
	ExamID      uuid.UUID `json:"exam_id"`
	ExamTitle   string    `json:"exam_title,omitempty"`
	Percentage  int       `json:"percentage"`
	CompletedAt time.Time `json:"completed_at"`
}

// SubjectStats aggregates a student's recent performance on one subject.
type SubjectStats struct {
	Average int `json:"average"`
	Count   int `json:"count"`
}
