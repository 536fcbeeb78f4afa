package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/learnedu/learnedu-backend/internal/model"
)

func TestUserStateNamespacing(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	examID := uuid.NewString()

	alice := NewUserState(kv, "alice")
	bob := NewUserState(kv, "bob")

	if err := alice.MarkCompleted(ctx, examID); err != nil {
		t.Fatalf("mark completed: %v", err)
	}

	if !alice.Completed(ctx, examID) {
		t.Error("alice should see her completion")
	}
	if bob.Completed(ctx, examID) {
		t.Error("bob must not see alice's completion")
	}
}

func TestMarkCompletedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	state := NewUserState(NewMemoryKV(), "u1")
	examID := uuid.NewString()

	for i := 0; i < 3; i++ {
		if err := state.MarkCompleted(ctx, examID); err != nil {
			t.Fatalf("mark %d: %v", i, err)
		}
	}

	ids, err := state.completedIDs(ctx)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("got %d entries, want 1", len(ids))
	}
}

func TestMarkCompletedConcurrent(t *testing.T) {
	ctx := context.Background()
	state := NewUserState(NewMemoryKV(), "u1")

	const n = 32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := state.MarkCompleted(ctx, fmt.Sprintf("exam-%d", i)); err != nil {
				t.Errorf("mark %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if !state.Completed(ctx, fmt.Sprintf("exam-%d", i)) {
			t.Errorf("exam-%d lost under concurrent marks", i)
		}
	}
}

func TestInProgressLifecycle(t *testing.T) {
	ctx := context.Background()
	state := NewUserState(NewMemoryKV(), "u1")
	examID := uuid.NewString()

	if state.InProgress(ctx, examID) {
		t.Fatal("fresh state should have no marker")
	}
	if err := state.MarkInProgress(ctx, examID); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if !state.InProgress(ctx, examID) {
		t.Fatal("marker missing")
	}
	if err := state.ClearInProgress(ctx, examID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if state.InProgress(ctx, examID) {
		t.Fatal("marker survived clear")
	}
}

func TestResultRoundTrip(t *testing.T) {
	ctx := context.Background()
	state := NewUserState(NewMemoryKV(), "u1")

	result := &model.ExamResult{
		ID:         uuid.New(),
		ExamID:     uuid.New(),
		StudentID:  uuid.New(),
		Score:      7.5,
		TotalMarks: 10,
		Percentage: 75,
		Answers:    map[string]string{"q1": "ঢাকা"},
		TimeTaken:  420,
	}

	if err := state.SaveResult(ctx, result); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := state.Result(ctx, result.ExamID.String())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Score != 7.5 || got.Answers["q1"] != "ঢাকা" {
		t.Errorf("round trip mismatch: %+v", got)
	}

	if _, err := state.Result(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown exam = %v, want ErrNotFound", err)
	}
}

func TestMigrateLegacyKeys(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	userID := "u1"
	examID := uuid.NewString()

	// Seed the pre-namespacing layout.
	completed, _ := json.Marshal([]string{examID})
	_ = kv.Set(ctx, legacyCompletedKey, string(completed), 0)

	legacyResult := model.ExamResult{ID: uuid.New(), ExamID: uuid.MustParse(examID), Percentage: 80}
	rawResult, _ := json.Marshal(legacyResult)
	_ = kv.Set(ctx, legacyLastResultKey, string(rawResult), 0)

	byExam, _ := json.Marshal(map[string]model.ExamResult{examID: legacyResult})
	_ = kv.Set(ctx, legacyResultsKey, string(byExam), 0)

	MigrateLegacyKeys(ctx, kv, userID)

	state := NewUserState(kv, userID)
	if !state.Completed(ctx, examID) {
		t.Error("completion not migrated")
	}
	if last, err := state.LastResult(ctx); err != nil || last.Percentage != 80 {
		t.Errorf("last result not migrated: %v, %v", last, err)
	}
	if cached, err := state.Result(ctx, examID); err != nil || cached.Percentage != 80 {
		t.Errorf("per-exam result not migrated: %v, %v", cached, err)
	}

	// Legacy keys removed.
	for _, key := range []string{legacyCompletedKey, legacyLastResultKey, legacyResultsKey} {
		if _, err := kv.Get(ctx, key); !errors.Is(err, ErrNotFound) {
			t.Errorf("legacy key %q survived migration", key)
		}
	}
}

func TestMigrateLegacyKeysRunsOnce(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	userID := "u1"
	examID := uuid.NewString()

	MigrateLegacyKeys(ctx, kv, userID)

	// Keys written after the first migration belong to someone else's
	// session and must not be folded in.
	completed, _ := json.Marshal([]string{examID})
	_ = kv.Set(ctx, legacyCompletedKey, string(completed), 0)

	MigrateLegacyKeys(ctx, kv, userID)

	state := NewUserState(kv, userID)
	if state.Completed(ctx, examID) {
		t.Error("second migration should be a no-op")
	}
}
