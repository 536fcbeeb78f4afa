package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/learnedu/learnedu-backend/internal/config"
	"github.com/learnedu/learnedu-backend/internal/model"
)

// In-progress markers are cosmetic resumption hints, not attempt state;
// they expire on their own so an abandoned tab cannot pin the flag forever.
const inProgressTTL = 12 * time.Hour

// UserState exposes the attempt lifecycle's per-user markers over a KV,
// namespaced by user id at construction time.
type UserState struct {
	kv     KV
	userID string
}

// NewUserState binds a KV to one authenticated user.
func NewUserState(kv KV, userID string) *UserState {
	return &UserState{kv: kv, userID: userID}
}

// inProgressMarker is the stored in-progress payload.
type inProgressMarker struct {
	StartedAt time.Time `json:"started_at"`
}

// MarkInProgress records that an attempt on examID has started.
func (u *UserState) MarkInProgress(ctx context.Context, examID string) error {
	raw, _ := json.Marshal(inProgressMarker{StartedAt: time.Now()})
	return u.kv.Set(ctx, config.CacheKey.InProgressKey(u.userID, examID), string(raw), inProgressTTL)
}

// InProgress reports whether an unsubmitted attempt marker exists.
func (u *UserState) InProgress(ctx context.Context, examID string) bool {
	_, err := u.kv.Get(ctx, config.CacheKey.InProgressKey(u.userID, examID))
	return err == nil
}

// ClearInProgress removes the marker after submission.
func (u *UserState) ClearInProgress(ctx context.Context, examID string) error {
	return u.kv.Remove(ctx, config.CacheKey.InProgressKey(u.userID, examID))
}

// MarkCompleted adds examID to the user's completed-exam set. The add is
// atomic in the KV, so two exams finishing at once both land.
func (u *UserState) MarkCompleted(ctx context.Context, examID string) error {
	return u.kv.AddToSet(ctx, config.CacheKey.CompletedExamsKey(u.userID), examID)
}

// Completed reports whether the user has already completed examID.
func (u *UserState) Completed(ctx context.Context, examID string) bool {
	ids, err := u.completedIDs(ctx)
	if err != nil {
		return false
	}
	for _, id := range ids {
		if id == examID {
			return true
		}
	}
	return false
}

func (u *UserState) completedIDs(ctx context.Context) ([]string, error) {
	return u.kv.SetMembers(ctx, config.CacheKey.CompletedExamsKey(u.userID))
}

// SaveLastResult fills the session-scoped last-result slot.
func (u *UserState) SaveLastResult(ctx context.Context, result *model.ExamResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return u.kv.Set(ctx, config.CacheKey.LastResultKey(u.userID), string(raw), inProgressTTL)
}

// LastResult loads the last-result slot, or ErrNotFound.
func (u *UserState) LastResult(ctx context.Context) (*model.ExamResult, error) {
	raw, err := u.kv.Get(ctx, config.CacheKey.LastResultKey(u.userID))
	if err != nil {
		return nil, err
	}
	return decodeResult(raw)
}

// SaveResult caches a result in the per-user results map, keyed by exam id.
func (u *UserState) SaveResult(ctx context.Context, result *model.ExamResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return u.kv.Set(ctx, config.CacheKey.ResultKey(u.userID, result.ExamID.String()), string(raw), 0)
}

// Result loads the cached result for one exam, or ErrNotFound.
func (u *UserState) Result(ctx context.Context, examID string) (*model.ExamResult, error) {
	raw, err := u.kv.Get(ctx, config.CacheKey.ResultKey(u.userID, examID))
	if err != nil {
		return nil, err
	}
	return decodeResult(raw)
}

// PracticeExam is a self-authored exam blob that never touches the
// question bank; attempts against it resolve entirely from this store.
type PracticeExam struct {
	Exam      model.Exam       `json:"exam"`
	Questions []model.Question `json:"questions"`
}

// SavePracticeExam stores a self-authored exam for this user.
func (u *UserState) SavePracticeExam(ctx context.Context, examID string, practice *PracticeExam) error {
	raw, err := json.Marshal(practice)
	if err != nil {
		return err
	}
	return u.kv.Set(ctx, config.CacheKey.PracticeExamKey(u.userID, examID), string(raw), 0)
}

// PracticeExam loads a self-authored exam blob, or ErrNotFound.
func (u *UserState) PracticeExam(ctx context.Context, examID string) (*PracticeExam, error) {
	raw, err := u.kv.Get(ctx, config.CacheKey.PracticeExamKey(u.userID, examID))
	if err != nil {
		return nil, err
	}
	var practice PracticeExam
	if err := json.Unmarshal([]byte(raw), &practice); err != nil {
		return nil, fmt.Errorf("decode practice exam: %w", err)
	}
	return &practice, nil
}

func decodeResult(raw string) (*model.ExamResult, error) {
	var result model.ExamResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &result, nil
}
