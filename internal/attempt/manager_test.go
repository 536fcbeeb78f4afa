package attempt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/learnedu/learnedu-backend/internal/model"
	"github.com/learnedu/learnedu-backend/internal/store"
)

type recordingSink struct {
	mu      sync.Mutex
	results []*model.ExamResult
	err     error
}

func (s *recordingSink) Persist(_ context.Context, result *model.ExamResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.results = append(s.results, result)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

func testExam(questions int) (*model.Exam, []model.Question) {
	qs := make([]model.Question, 0, questions)
	ids := make([]uuid.UUID, 0, questions)
	for i := 0; i < questions; i++ {
		q := model.Question{
			ID:             uuid.New(),
			QuestionTextBn: "প্রশ্ন",
			Options:        json.RawMessage(`[{"text":"right","isCorrect":true},{"text":"wrong"}]`),
		}
		qs = append(qs, q)
		ids = append(ids, q.ID)
	}
	exam := &model.Exam{
		ID:               uuid.New(),
		Title:            "পদার্থবিজ্ঞান মডেল টেস্ট",
		DurationMinutes:  10,
		TotalMarks:       float64(questions),
		MarksPerQuestion: 1,
		QuestionIDs:      ids,
		Published:        true,
	}
	return exam, qs
}

func newTestManager(sink ResultSink, kv store.KV) *Manager {
	return NewManager(sink, kv, zerolog.Nop())
}

func TestManagerStartIsResumable(t *testing.T) {
	exam, qs := testExam(3)
	kv := store.NewMemoryKV()
	m := newTestManager(&recordingSink{}, kv)
	defer m.Stop()

	studentID := uuid.NewString()
	a1, err := m.Start(studentID, exam, qs, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	a2, err := m.Start(studentID, exam, qs, false)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if a1 != a2 {
		t.Fatal("second start should resume the live attempt, not reset it")
	}

	state := store.NewUserState(kv, studentID)
	if !state.InProgress(context.Background(), exam.ID.String()) {
		t.Error("in-progress marker missing after start")
	}
}

func TestManagerSubmitPersistsAndCleansUp(t *testing.T) {
	exam, qs := testExam(2)
	kv := store.NewMemoryKV()
	sink := &recordingSink{}
	m := newTestManager(sink, kv)
	defer m.Stop()

	studentID := uuid.NewString()
	a, err := m.Start(studentID, exam, qs, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	_ = a.SelectAnswer(a.Paper()[0].ID.String(), "right")

	result, err := m.Submit(context.Background(), studentID, exam.ID.String())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 1 {
		t.Errorf("score = %v, want 1", result.Score)
	}
	if result.Percentage != 50 {
		t.Errorf("percentage = %d, want 50", result.Percentage)
	}
	if sink.count() != 1 {
		t.Fatalf("sink received %d results, want 1", sink.count())
	}

	ctx := context.Background()
	state := store.NewUserState(kv, studentID)
	if !state.Completed(ctx, exam.ID.String()) {
		t.Error("exam not marked completed")
	}
	if state.InProgress(ctx, exam.ID.String()) {
		t.Error("in-progress marker not cleared")
	}
	if last, err := state.LastResult(ctx); err != nil || last.ExamID != exam.ID {
		t.Errorf("last result slot = %v, %v", last, err)
	}
	if _, ok := m.Get(studentID, exam.ID.String()); ok {
		t.Error("attempt should be removed after submit")
	}
}

func TestManagerSubmitIsIdempotent(t *testing.T) {
	exam, qs := testExam(2)
	m := newTestManager(&recordingSink{}, store.NewMemoryKV())
	defer m.Stop()

	studentID := uuid.NewString()
	if _, err := m.Start(studentID, exam, qs, false); err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := m.Submit(context.Background(), studentID, exam.ID.String()); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := m.Submit(context.Background(), studentID, exam.ID.String())
	if !errors.Is(err, ErrNoAttempt) && !errors.Is(err, ErrClosed) {
		t.Fatalf("second submit = %v, want closed or gone", err)
	}
}

func TestManagerConcurrentSubmitGradesOnce(t *testing.T) {
	// The manual submit racing the expiry tick must grade exactly once.
	exam, qs := testExam(2)
	sink := &recordingSink{}
	m := newTestManager(sink, store.NewMemoryKV())
	defer m.Stop()

	studentID := uuid.NewString()
	if _, err := m.Start(studentID, exam, qs, false); err != nil {
		t.Fatalf("start: %v", err)
	}

	const racers = 8
	var wg sync.WaitGroup
	var successes int32
	var mu sync.Mutex

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Submit(context.Background(), studentID, exam.ID.String()); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("%d submits succeeded, want exactly 1", successes)
	}
	if sink.count() != 1 {
		t.Fatalf("sink received %d results, want 1", sink.count())
	}
}

func TestManagerFallsBackToStoreOnSinkFailure(t *testing.T) {
	exam, qs := testExam(1)
	kv := store.NewMemoryKV()
	sink := &recordingSink{err: errors.New("queue down")}
	m := newTestManager(sink, kv)
	defer m.Stop()

	studentID := uuid.NewString()
	a, err := m.Start(studentID, exam, qs, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	_ = a.SelectAnswer(a.Paper()[0].ID.String(), "right")

	result, err := m.Submit(context.Background(), studentID, exam.ID.String())
	if err != nil {
		t.Fatalf("submit should succeed despite sink failure: %v", err)
	}

	state := store.NewUserState(kv, studentID)
	cached, err := state.Result(context.Background(), exam.ID.String())
	if err != nil {
		t.Fatalf("fallback copy missing: %v", err)
	}
	if cached.Score != result.Score {
		t.Errorf("fallback score = %v, want %v", cached.Score, result.Score)
	}
}

func TestManagerSubmitRunsInvalidationHook(t *testing.T) {
	exam, qs := testExam(1)
	m := newTestManager(&recordingSink{}, store.NewMemoryKV())
	defer m.Stop()

	var flushes int32
	m.OnSubmit(func() { atomic.AddInt32(&flushes, 1) })

	studentID := uuid.NewString()
	if _, err := m.Start(studentID, exam, qs, false); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := m.Submit(context.Background(), studentID, exam.ID.String()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if n := atomic.LoadInt32(&flushes); n != 1 {
		t.Fatalf("hook ran %d times, want 1", n)
	}

	// A losing second submit must not flush again.
	_, _ = m.Submit(context.Background(), studentID, exam.ID.String())
	if n := atomic.LoadInt32(&flushes); n != 1 {
		t.Fatalf("hook ran %d times after failed resubmit, want 1", n)
	}
}

func TestManagerPracticeSkipsSink(t *testing.T) {
	exam, qs := testExam(1)
	kv := store.NewMemoryKV()
	sink := &recordingSink{}
	m := newTestManager(sink, kv)
	defer m.Stop()

	studentID := uuid.NewString()
	if _, err := m.Start(studentID, exam, qs, true); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := m.Submit(context.Background(), studentID, exam.ID.String()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if sink.count() != 0 {
		t.Errorf("practice result reached the sink")
	}
	state := store.NewUserState(kv, studentID)
	if _, err := state.Result(context.Background(), exam.ID.String()); err != nil {
		t.Errorf("practice result not cached: %v", err)
	}
}
