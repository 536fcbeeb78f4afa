package attempt

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/learnedu/learnedu-backend/internal/model"
	"github.com/learnedu/learnedu-backend/internal/store"
)

// ErrNoAttempt is returned when no live attempt exists for the pair.
var ErrNoAttempt = errors.New("no running attempt")

// ResultSink persists a graded result to the system of record. The manager
// treats persistence as best-effort: a sink failure falls back to the
// per-user store and never blocks the student from seeing their result.
type ResultSink interface {
	Persist(ctx context.Context, result *model.ExamResult) error
}

type runningAttempt struct {
	attempt *Attempt
	state   *store.UserState
	cancel  context.CancelFunc
}

// Manager owns all live attempts in this process, one per (student, exam)
// pair, each with its own one-second countdown goroutine.
type Manager struct {
	mu       sync.Mutex
	running  map[string]*runningAttempt
	sink     ResultSink
	kv       store.KV
	log      zerolog.Logger
	newRand  func() *rand.Rand
	onSubmit func()
}

// NewManager wires a manager to its result sink and fallback store.
func NewManager(sink ResultSink, kv store.KV, log zerolog.Logger) *Manager {
	return &Manager{
		running: make(map[string]*runningAttempt),
		sink:    sink,
		kv:      kv,
		log:     log.With().Str("component", "attempt_manager").Logger(),
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

func attemptKey(studentID, examID string) string {
	return studentID + ":" + examID
}

// OnSubmit registers a callback invoked after every successful submission,
// including timer-expiry auto-submits. The server uses it to drop cached
// read responses so a fresh result is visible on the next request.
func (m *Manager) OnSubmit(fn func()) {
	m.mu.Lock()
	m.onSubmit = fn
	m.mu.Unlock()
}

// Start builds the paper and begins a timed attempt. Calling Start again
// while an attempt is live resumes it instead of resetting the clock.
func (m *Manager) Start(studentID string, exam *model.Exam, questions []model.Question, practice bool) (*Attempt, error) {
	cfg := model.ParseExamConfig(exam.Config)
	key := attemptKey(studentID, exam.ID.String())

	m.mu.Lock()
	if ra, ok := m.running[key]; ok {
		m.mu.Unlock()
		return ra.attempt, nil
	}

	paper := BuildPaper(exam, cfg, questions, m.newRand())
	a := New(exam, cfg, paper)
	a.Practice = practice
	if sid, err := uuid.Parse(studentID); err == nil {
		a.StudentID = sid
	}

	tickCtx, cancel := context.WithCancel(context.Background())
	ra := &runningAttempt{
		attempt: a,
		state:   store.NewUserState(m.kv, studentID),
		cancel:  cancel,
	}
	m.running[key] = ra
	m.mu.Unlock()

	if err := ra.state.MarkInProgress(context.Background(), exam.ID.String()); err != nil {
		m.log.Warn().Err(err).Str("exam_id", exam.ID.String()).Msg("failed to mark attempt in progress")
	}

	go m.countdown(tickCtx, key, ra)

	m.log.Info().
		Str("student_id", studentID).
		Str("exam_id", exam.ID.String()).
		Int("questions", len(paper)).
		Int("duration_seconds", a.duration).
		Msg("attempt started")

	return a, nil
}

// Get returns the live attempt for the pair, if any.
func (m *Manager) Get(studentID, examID string) (*Attempt, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ra, ok := m.running[attemptKey(studentID, examID)]
	if !ok {
		return nil, false
	}
	return ra.attempt, true
}

// countdown drives the attempt clock. When the countdown reaches zero and
// the exam auto-submits, whatever answers exist are submitted; otherwise
// the clock simply stops and only a manual submit closes the attempt.
func (m *Manager) countdown(ctx context.Context, key string, ra *runningAttempt) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, expired := ra.attempt.Tick()
			if !expired {
				continue
			}
			if !ra.attempt.Config.AutoSubmit {
				m.log.Info().Str("key", key).Msg("time expired, waiting for manual submit")
				return
			}
			if _, err := m.submit(context.Background(), key, ra); err != nil && !errors.Is(err, ErrClosed) {
				m.log.Error().Err(err).Str("key", key).Msg("auto-submit failed")
			}
			return
		}
	}
}

// Submit closes the attempt for the pair and returns the graded result.
// Submitting twice, or racing the expiry tick, grades exactly once; the
// loser of the race gets ErrClosed.
func (m *Manager) Submit(ctx context.Context, studentID, examID string) (*model.ExamResult, error) {
	m.mu.Lock()
	ra, ok := m.running[attemptKey(studentID, examID)]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNoAttempt
	}
	return m.submit(ctx, attemptKey(studentID, examID), ra)
}

func (m *Manager) submit(ctx context.Context, key string, ra *runningAttempt) (*model.ExamResult, error) {
	a := ra.attempt
	if !a.beginSubmit() {
		return nil, ErrClosed
	}

	summary, result := a.grade()
	examID := a.ExamID.String()

	if err := ra.state.MarkCompleted(ctx, examID); err != nil {
		m.log.Warn().Err(err).Str("exam_id", examID).Msg("failed to mark exam completed")
	}
	if err := ra.state.SaveLastResult(ctx, result); err != nil {
		m.log.Warn().Err(err).Str("exam_id", examID).Msg("failed to cache last result")
	}

	if a.Practice {
		// Practice attempts never reach the system of record.
		if err := ra.state.SaveResult(ctx, result); err != nil {
			m.log.Warn().Err(err).Str("exam_id", examID).Msg("failed to cache practice result")
		}
	} else if err := m.sink.Persist(ctx, result); err != nil {
		m.log.Error().Err(err).Str("exam_id", examID).Msg("result persistence failed, falling back to user store")
		if serr := ra.state.SaveResult(ctx, result); serr != nil {
			m.log.Error().Err(serr).Str("exam_id", examID).Msg("fallback result save failed")
		}
	}

	if err := ra.state.ClearInProgress(ctx, examID); err != nil {
		m.log.Warn().Err(err).Str("exam_id", examID).Msg("failed to clear in-progress marker")
	}

	a.finishSubmit()
	ra.cancel()

	m.mu.Lock()
	delete(m.running, key)
	notify := m.onSubmit
	m.mu.Unlock()

	if notify != nil {
		notify()
	}

	m.log.Info().
		Str("exam_id", examID).
		Float64("score", summary.Score).
		Int("percentage", summary.Percentage).
		Int("correct", summary.Correct).
		Int("wrong", summary.Wrong).
		Int("skipped", summary.Skipped).
		Msg("attempt submitted")

	return result, nil
}

// Stop cancels every live countdown. Attempts are abandoned, not submitted.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, ra := range m.running {
		ra.cancel()
		delete(m.running, key)
	}
}
