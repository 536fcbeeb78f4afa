package attempt

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/learnedu/learnedu-backend/internal/model"
)

func newRunningAttempt(cfg model.ExamConfig, questions int) *Attempt {
	exam := &model.Exam{ID: uuid.New(), DurationMinutes: 1, TotalMarks: float64(questions), MarksPerQuestion: 1}
	return New(exam, cfg, makePaper(questions))
}

func TestSelectAnswerAllowsChangeByDefault(t *testing.T) {
	a := newRunningAttempt(model.ExamConfig{AllowAnswerChange: true}, 3)
	qid := a.Paper()[0].ID.String()

	if err := a.SelectAnswer(qid, "wrong"); err != nil {
		t.Fatalf("first select: %v", err)
	}
	if err := a.SelectAnswer(qid, "right"); err != nil {
		t.Fatalf("change should be allowed: %v", err)
	}
	if a.AnsweredCount() != 1 {
		t.Errorf("answered = %d, want 1", a.AnsweredCount())
	}
}

func TestSelectAnswerLockedWhenChangeDisallowed(t *testing.T) {
	a := newRunningAttempt(model.ExamConfig{AllowAnswerChange: false}, 3)
	qid := a.Paper()[0].ID.String()

	if err := a.SelectAnswer(qid, "right"); err != nil {
		t.Fatalf("first select: %v", err)
	}
	// Re-sending the same answer is a no-op, not a violation.
	if err := a.SelectAnswer(qid, "right"); err != nil {
		t.Fatalf("idempotent re-select: %v", err)
	}
	if err := a.SelectAnswer(qid, "wrong"); !errors.Is(err, ErrAnswerLocked) {
		t.Fatalf("got %v, want ErrAnswerLocked", err)
	}
}

func TestSelectAnswerUnknownQuestion(t *testing.T) {
	a := newRunningAttempt(model.ExamConfig{AllowAnswerChange: true}, 1)
	if err := a.SelectAnswer(uuid.NewString(), "right"); !errors.Is(err, ErrUnknownQuestion) {
		t.Fatalf("got %v, want ErrUnknownQuestion", err)
	}
}

func TestToggleFlag(t *testing.T) {
	a := newRunningAttempt(model.ExamConfig{}, 2)
	qid := a.Paper()[1].ID.String()

	flagged, err := a.ToggleFlag(qid)
	if err != nil || !flagged {
		t.Fatalf("first toggle = %v, %v; want true, nil", flagged, err)
	}
	flagged, err = a.ToggleFlag(qid)
	if err != nil || flagged {
		t.Fatalf("second toggle = %v, %v; want false, nil", flagged, err)
	}
}

func TestNavigateClampsToBounds(t *testing.T) {
	cfg := model.ExamConfig{QuestionPresentation: model.PresentationOneByOne}
	a := newRunningAttempt(cfg, 3)

	if pos, _ := a.Navigate(-1); pos != 0 {
		t.Errorf("retreat at start = %d, want 0", pos)
	}
	if pos, _ := a.Navigate(1); pos != 1 {
		t.Errorf("advance = %d, want 1", pos)
	}
	if pos, _ := a.Navigate(10); pos != 2 {
		t.Errorf("advance past end = %d, want 2", pos)
	}
}

func TestNavigateDisabledForAllAtOnce(t *testing.T) {
	a := newRunningAttempt(model.ExamConfig{QuestionPresentation: model.PresentationAllAtOnce}, 3)
	if _, err := a.Navigate(1); !errors.Is(err, ErrNavigationDisabled) {
		t.Fatalf("got %v, want ErrNavigationDisabled", err)
	}
}

func TestTickExpiresExactlyOnce(t *testing.T) {
	a := newRunningAttempt(model.ExamConfig{}, 1) // 60 seconds

	expiries := 0
	for i := 0; i < 70; i++ {
		if _, expired := a.Tick(); expired {
			expiries++
		}
	}

	if expiries != 1 {
		t.Fatalf("expired %d times, want exactly once", expiries)
	}
	if a.Remaining() != 0 {
		t.Errorf("remaining = %d, want 0", a.Remaining())
	}
}

func TestMutationsRejectedAfterSubmit(t *testing.T) {
	a := newRunningAttempt(model.ExamConfig{AllowAnswerChange: true}, 2)
	qid := a.Paper()[0].ID.String()

	if !a.beginSubmit() {
		t.Fatal("beginSubmit should win on a running attempt")
	}
	if err := a.SelectAnswer(qid, "right"); !errors.Is(err, ErrClosed) {
		t.Errorf("select after submit = %v, want ErrClosed", err)
	}
	if _, err := a.ToggleFlag(qid); !errors.Is(err, ErrClosed) {
		t.Errorf("flag after submit = %v, want ErrClosed", err)
	}
	if a.beginSubmit() {
		t.Error("second beginSubmit should lose")
	}
}

func TestGradeComputesTimeTaken(t *testing.T) {
	a := newRunningAttempt(model.ExamConfig{AllowAnswerChange: true}, 2)
	_ = a.SelectAnswer(a.Paper()[0].ID.String(), "right")

	for i := 0; i < 15; i++ {
		a.Tick()
	}
	a.beginSubmit()
	summary, result := a.grade()

	if result.TimeTaken != 15 {
		t.Errorf("time taken = %d, want 15", result.TimeTaken)
	}
	if summary.Correct != 1 || summary.Skipped != 1 {
		t.Errorf("correct/skipped = %d/%d, want 1/1", summary.Correct, summary.Skipped)
	}
	if result.Score != 1 {
		t.Errorf("score = %v, want 1", result.Score)
	}
}
