// Package attempt holds the in-memory exam attempt state machine: the
// prepared paper, the countdown, answer selection and the single-shot
// submission guard. All mutation goes through the Manager or through the
// Attempt's mutex-guarded methods.
package attempt

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/learnedu/learnedu-backend/internal/model"
)

// Phase is the attempt lifecycle phase. Transitions only move forward:
// Running → Submitting → Submitted.
type Phase string

const (
	PhaseRunning    Phase = "running"
	PhaseSubmitting Phase = "submitting"
	PhaseSubmitted  Phase = "submitted"
)

var (
	// ErrClosed is returned for any mutation after submission has begun.
	ErrClosed = errors.New("attempt already submitted")
	// ErrAnswerLocked is returned when the exam forbids changing a
	// recorded answer.
	ErrAnswerLocked = errors.New("answer change not allowed")
	// ErrUnknownQuestion is returned for question ids outside the paper.
	ErrUnknownQuestion = errors.New("question not part of this attempt")
	// ErrNavigationDisabled is returned for navigation on all-at-once exams.
	ErrNavigationDisabled = errors.New("navigation applies to one-by-one exams only")
)

// Attempt is one student's live run of one exam.
type Attempt struct {
	ExamID    uuid.UUID
	StudentID uuid.UUID
	Config    model.ExamConfig
	Practice  bool

	mu        sync.Mutex
	paper     []PreparedQuestion
	index     map[string]int // question id → paper position
	answers   map[string]string
	flagged   map[string]bool
	current   int
	remaining int // seconds
	duration  int // seconds, fixed at start
	phase     Phase
	startedAt time.Time
	total     float64
}

// New builds a running attempt over an already-prepared paper. The countdown
// starts at the exam's duration in seconds.
func New(exam *model.Exam, cfg model.ExamConfig, paper []PreparedQuestion) *Attempt {
	index := make(map[string]int, len(paper))
	for i := range paper {
		index[paper[i].ID.String()] = i
	}
	seconds := exam.DurationMinutes * 60
	return &Attempt{
		ExamID:    exam.ID,
		Config:    cfg,
		paper:     paper,
		index:     index,
		answers:   make(map[string]string),
		flagged:   make(map[string]bool),
		remaining: seconds,
		duration:  seconds,
		phase:     PhaseRunning,
		startedAt: time.Now(),
		total:     exam.TotalMarks,
	}
}

// Paper returns the prepared questions in attempt order.
func (a *Attempt) Paper() []PreparedQuestion {
	return a.paper
}

// SelectAnswer records the option text chosen for a question. Once the exam
// disallows answer changes, the first recorded answer is final.
func (a *Attempt) SelectAnswer(questionID, option string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.phase != PhaseRunning {
		return ErrClosed
	}
	if _, ok := a.index[questionID]; !ok {
		return ErrUnknownQuestion
	}
	if prev, ok := a.answers[questionID]; ok && !a.Config.AllowAnswerChange && prev != option {
		return ErrAnswerLocked
	}
	a.answers[questionID] = option
	return nil
}

// ToggleFlag flips the review flag on a question and reports the new state.
func (a *Attempt) ToggleFlag(questionID string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.phase != PhaseRunning {
		return false, ErrClosed
	}
	if _, ok := a.index[questionID]; !ok {
		return false, ErrUnknownQuestion
	}
	a.flagged[questionID] = !a.flagged[questionID]
	return a.flagged[questionID], nil
}

// Navigate moves the cursor by delta questions on one-by-one exams,
// clamped to the paper bounds. Returns the resulting position.
func (a *Attempt) Navigate(delta int) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.phase != PhaseRunning {
		return a.current, ErrClosed
	}
	if a.Config.QuestionPresentation != model.PresentationOneByOne {
		return a.current, ErrNavigationDisabled
	}
	next := a.current + delta
	if next < 0 {
		next = 0
	}
	if max := len(a.paper) - 1; next > max {
		next = max
	}
	a.current = next
	return a.current, nil
}

// Tick decrements the countdown by one second. expired is true exactly once,
// on the tick that reaches zero; the caller decides whether that triggers
// auto-submission.
func (a *Attempt) Tick() (remaining int, expired bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.phase != PhaseRunning || a.remaining <= 0 {
		return a.remaining, false
	}
	a.remaining--
	return a.remaining, a.remaining == 0
}

// Remaining returns the seconds left on the countdown.
func (a *Attempt) Remaining() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.remaining
}

// Phase returns the current lifecycle phase.
func (a *Attempt) Phase() Phase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}

// AnsweredCount returns how many questions carry a non-empty answer.
func (a *Attempt) AnsweredCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, v := range a.answers {
		if v != "" {
			n++
		}
	}
	return n
}

// beginSubmit is the idempotency gate: the first caller wins and moves the
// attempt to Submitting, every later caller (manual submit racing the timer
// tick, a double-clicked button) gets false and must not grade again.
func (a *Attempt) beginSubmit() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.phase != PhaseRunning {
		return false
	}
	a.phase = PhaseSubmitting
	return true
}

// finishSubmit marks the attempt terminal.
func (a *Attempt) finishSubmit() {
	a.mu.Lock()
	a.phase = PhaseSubmitted
	a.mu.Unlock()
}

// grade freezes the answers and scores them. Only the submit path calls
// this, after beginSubmit succeeded.
func (a *Attempt) grade() (Summary, *model.ExamResult) {
	a.mu.Lock()
	answers := make(map[string]string, len(a.answers))
	for k, v := range a.answers {
		answers[k] = v
	}
	remaining := a.remaining
	a.mu.Unlock()

	summary := Score(a.paper, answers, a.Config, a.total)
	return summary, &model.ExamResult{
		ID:          uuid.New(),
		ExamID:      a.ExamID,
		StudentID:   a.StudentID,
		Score:       summary.Score,
		TotalMarks:  a.total,
		Percentage:  summary.Percentage,
		Answers:     answers,
		TimeTaken:   a.duration - remaining,
		CompletedAt: time.Now(),
	}
}
