package config

import "fmt"

// CacheKeyStruct builds the Redis key layout. All per-user state is
// namespaced by the authenticated user id so results cached on a shared
// machine never leak across accounts; the unnamespaced legacy keys are
// migrated once at login (see store.MigrateLegacyKeys).
type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the key for a user's login session.
func (r *CacheKeyStruct) UserSessionKey(userID string) string {
	return fmt.Sprintf("login:%s", userID)
}

// InProgressKey returns the key marking an attempt started but not submitted.
func (r *CacheKeyStruct) InProgressKey(userID, examID string) string {
	return fmt.Sprintf("user:%s:exam:%s:in_progress", userID, examID)
}

// CompletedExamsKey returns the key of the user's completed-exam id set.
func (r *CacheKeyStruct) CompletedExamsKey(userID string) string {
	return fmt.Sprintf("user:%s:completed_exams", userID)
}

// LastResultKey returns the key of the user's most recent result slot.
func (r *CacheKeyStruct) LastResultKey(userID string) string {
	return fmt.Sprintf("user:%s:last_result", userID)
}

// ResultKey returns the key of the user's cached result for one exam.
func (r *CacheKeyStruct) ResultKey(userID, examID string) string {
	return fmt.Sprintf("user:%s:exam:%s:result", userID, examID)
}

// PracticeExamKey returns the key of a user's self-authored exam blob.
func (r *CacheKeyStruct) PracticeExamKey(userID, examID string) string {
	return fmt.Sprintf("user:%s:exam:%s:practice", userID, examID)
}

// LegacyMigratedKey returns the key recording that legacy unnamespaced
// markers were already folded into this user's namespace.
func (r *CacheKeyStruct) LegacyMigratedKey(userID string) string {
	return fmt.Sprintf("user:%s:legacy_migrated", userID)
}

var CacheKey = NewCacheKeyStruct()
