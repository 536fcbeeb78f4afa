package client

import (
	"context"
	"fmt"

	"github.com/learnedu/learnedu-backend/internal/model"
)

// Auth calls.

// LoginResponse is the payload of a successful login or signup.
type LoginResponse struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

// Login authenticates and installs the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	err := c.Post(ctx, "/api/v1/auth/login", model.LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// Signup registers a student account and installs the returned token.
func (c *Client) Signup(ctx context.Context, req model.SignupRequest) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.Post(ctx, "/api/v1/auth/signup", req, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// Exam calls.

// ExamListItem mirrors the lobby row returned by /exams/mine.
type ExamListItem struct {
	Exam   model.Exam `json:"exam"`
	Status string     `json:"status"`
}

// MyExams lists the exams visible to the authenticated student.
func (c *Client) MyExams(ctx context.Context) ([]ExamListItem, error) {
	var out struct {
		Exams []ExamListItem `json:"exams"`
	}
	if err := c.Get(ctx, "/api/v1/exams/mine", &out); err != nil {
		return nil, err
	}
	return out.Exams, nil
}

// Exam retrieves one published exam without question bodies.
func (c *Client) Exam(ctx context.Context, examID string) (*model.Exam, error) {
	var out struct {
		Exam model.Exam `json:"exam"`
	}
	if err := c.Get(ctx, "/api/v1/exams/"+examID, &out); err != nil {
		return nil, err
	}
	return &out.Exam, nil
}

// InstructionsView mirrors the pre-attempt gate payload.
type InstructionsView struct {
	Exam         model.Exam       `json:"exam"`
	Config       model.ExamConfig `json:"config"`
	ScheduleText string           `json:"schedule_text"`
	Upcoming     bool             `json:"upcoming"`
	HasEnded     bool             `json:"has_ended"`
	IsAllowed    bool             `json:"is_allowed"`
	Completed    bool             `json:"completed"`
	CanAttempt   bool             `json:"can_attempt"`
}

// Instructions retrieves the gating view for one exam.
func (c *Client) Instructions(ctx context.Context, examID string) (*InstructionsView, error) {
	var out InstructionsView
	if err := c.Get(ctx, fmt.Sprintf("/api/v1/exams/%s/instructions", examID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PaperQuestion is one question of a started attempt, without answer key.
type PaperQuestion struct {
	ID      string   `json:"id"`
	Text    string   `json:"question_text"`
	Options []string `json:"options"`
	Marks   float64  `json:"marks"`
}

// Paper is the started-attempt payload.
type Paper struct {
	ExamID     string           `json:"exam_id"`
	Title      string           `json:"title"`
	Duration   int              `json:"duration"`
	TotalMarks float64          `json:"total_marks"`
	Remaining  int              `json:"remaining"`
	Config     model.ExamConfig `json:"config"`
	Questions  []PaperQuestion  `json:"questions"`
}

// StartExam runs the gate and begins (or resumes) a timed attempt.
// agreed must be true; the server rejects un-agreed starts.
func (c *Client) StartExam(ctx context.Context, examID string, agreed bool) (*Paper, error) {
	var out Paper
	err := c.Post(ctx, fmt.Sprintf("/api/v1/exams/%s/start", examID), map[string]bool{"agreed": agreed}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePracticeRequest mirrors the practice exam payload.
type CreatePracticeRequest struct {
	Title            string   `json:"title"`
	QuestionIDs      []string `json:"questionIds"`
	DurationMinutes  int      `json:"duration"`
	MarksPerQuestion float64  `json:"marksPerQuestion"`
	NegativeMarking  bool     `json:"negativeMarking"`
	NegativeMark     float64  `json:"negativeMarkValue"`
}

// CreatePractice assembles a self-authored exam from question-bank picks.
func (c *Client) CreatePractice(ctx context.Context, req CreatePracticeRequest) (*model.Exam, error) {
	var out struct {
		Exam model.Exam `json:"exam"`
	}
	if err := c.Post(ctx, "/api/v1/practice-exams", req, &out); err != nil {
		return nil, err
	}
	return &out.Exam, nil
}
