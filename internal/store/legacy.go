package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/learnedu/learnedu-backend/internal/config"
	"github.com/learnedu/learnedu-backend/internal/model"
)

// Keys written before per-user namespacing was introduced. On a shared
// machine these could leak one user's cached results into another's view;
// MigrateLegacyKeys folds them into the authenticated user's namespace
// once, then deletes them.
const (
	legacyCompletedKey  = "completedExams"
	legacyLastResultKey = "lastExamResult"
	legacyResultsKey    = "examResults"
)

// MigrateLegacyKeys performs the one-time, best-effort migration of
// unnamespaced markers into userID's namespace. It is called at login;
// every failure short of a store outage is swallowed because the legacy
// data is advisory.
func MigrateLegacyKeys(ctx context.Context, kv KV, userID string) {
	guardKey := config.CacheKey.LegacyMigratedKey(userID)
	if _, err := kv.Get(ctx, guardKey); err == nil {
		return // already migrated
	}

	state := NewUserState(kv, userID)

	if raw, err := kv.Get(ctx, legacyCompletedKey); err == nil {
		var ids []string
		if json.Unmarshal([]byte(raw), &ids) == nil {
			for _, id := range ids {
				_ = state.MarkCompleted(ctx, id)
			}
		}
		_ = kv.Remove(ctx, legacyCompletedKey)
	}

	if raw, err := kv.Get(ctx, legacyLastResultKey); err == nil {
		if result, derr := decodeResult(raw); derr == nil {
			if _, lerr := state.LastResult(ctx); errors.Is(lerr, ErrNotFound) {
				_ = state.SaveLastResult(ctx, result)
			}
		}
		_ = kv.Remove(ctx, legacyLastResultKey)
	}

	if raw, err := kv.Get(ctx, legacyResultsKey); err == nil {
		var byExam map[string]model.ExamResult
		if json.Unmarshal([]byte(raw), &byExam) == nil {
			for _, result := range byExam {
				r := result
				_ = state.SaveResult(ctx, &r)
			}
		}
		_ = kv.Remove(ctx, legacyResultsKey)
	}

	_ = kv.Set(ctx, guardKey, "1", 0)
}
