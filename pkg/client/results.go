package client

import (
	"context"

	"github.com/learnedu/learnedu-backend/internal/model"
)

// SubmitResult posts a completed answer sheet.
func (c *Client) SubmitResult(ctx context.Context, req model.SubmitResultRequest) (*model.ExamResult, error) {
	var out struct {
		Result model.ExamResult `json:"result"`
	}
	if err := c.Post(ctx, "/api/v1/exam-results", req, &out); err != nil {
		return nil, err
	}
	return &out.Result, nil
}

// MyResults lists all of the student's persisted results.
func (c *Client) MyResults(ctx context.Context) ([]model.ExamResult, error) {
	var out struct {
		Results []model.ExamResult `json:"results"`
	}
	if err := c.Get(ctx, "/api/v1/exam-results/mine", &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// ResultView mirrors the decorated result page payload.
type ResultView struct {
	Result         model.ExamResult            `json:"result"`
	ExamTitle      string                      `json:"exam_title,omitempty"`
	Review         []model.QuestionReview      `json:"review,omitempty"`
	SubjectHistory []model.SubjectHistoryEntry `json:"subject_history,omitempty"`
	SubjectStats   *model.SubjectStats         `json:"subject_stats,omitempty"`
}

// Result resolves the student's result for one exam, with review and
// subject history when available.
func (c *Client) Result(ctx context.Context, examID string) (*ResultView, error) {
	var out ResultView
	if err := c.Get(ctx, "/api/v1/exam-results/"+examID, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
