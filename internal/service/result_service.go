package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/learnedu/learnedu-backend/internal/config"
	"github.com/learnedu/learnedu-backend/internal/model"
	"github.com/learnedu/learnedu-backend/internal/repository"
	"github.com/learnedu/learnedu-backend/internal/store"
)

// ErrResultNotFound is returned when every resolution tier comes up empty.
var ErrResultNotFound = errors.New("result not found")

// subjectHistorySize caps the subject performance window.
const subjectHistorySize = 5

// ResultService handles result submission, resolution and review.
type ResultService struct {
	results   *repository.ResultRepository
	exams     *repository.ExamRepository
	questions *repository.QuestionRepository
	kv        store.KV
	rdb       *redis.Client
	log       zerolog.Logger
}

// NewResultService creates a new ResultService.
func NewResultService(results *repository.ResultRepository, exams *repository.ExamRepository, questions *repository.QuestionRepository, kv store.KV, rdb *redis.Client, log zerolog.Logger) *ResultService {
	return &ResultService{
		results:   results,
		exams:     exams,
		questions: questions,
		kv:        kv,
		rdb:       rdb,
		log:       log.With().Str("component", "result_service").Logger(),
	}
}

// Persist queues a graded result for batched database persistence.
// It satisfies the attempt manager's sink; a queue failure makes the
// manager fall back to the per-user store.
func (s *ResultService) Persist(ctx context.Context, result *model.ExamResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw).Err(); err != nil {
		return fmt.Errorf("enqueue result: %w", err)
	}
	return nil
}

// Submit handles a direct REST submission. For question-bank exams the
// client's score fields are advisory: the server regrades the answers
// against the answer key before persisting. Practice exams, which live
// only in the user's store, keep the client's numbers.
func (s *ResultService) Submit(ctx context.Context, studentID uuid.UUID, req *model.SubmitResultRequest) (*model.ExamResult, error) {
	examID, err := uuid.Parse(req.ExamID)
	if err != nil {
		return nil, ErrExamNotFound
	}

	state := store.NewUserState(s.kv, studentID.String())
	now := time.Now()

	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get exam: %w", err)
		}
		return s.submitPractice(ctx, state, studentID, examID, req, now)
	}

	cfg := model.ParseExamConfig(exam.Config)
	if !cfg.AllowMultipleAttempts && state.Completed(ctx, req.ExamID) && !HasEnded(exam, now) {
		return nil, ErrAlreadyCompleted
	}

	result := s.regrade(ctx, exam, cfg, studentID, req, now)

	if err := state.MarkCompleted(ctx, req.ExamID); err != nil {
		s.log.Warn().Err(err).Str("exam_id", req.ExamID).Msg("failed to mark exam completed")
	}
	if err := state.SaveLastResult(ctx, result); err != nil {
		s.log.Warn().Err(err).Str("exam_id", req.ExamID).Msg("failed to cache last result")
	}

	if err := s.Persist(ctx, result); err != nil {
		s.log.Error().Err(err).Str("exam_id", req.ExamID).Msg("result persistence failed, falling back to user store")
		if serr := state.SaveResult(ctx, result); serr != nil {
			s.log.Error().Err(serr).Str("exam_id", req.ExamID).Msg("fallback result save failed")
		}
	}

	_ = state.ClearInProgress(ctx, req.ExamID)
	return result, nil
}

// regrade rebuilds the score from the answer key. Answers for unknown
// question ids count as skipped; a missing answer key row grades as wrong.
func (s *ResultService) regrade(ctx context.Context, exam *model.Exam, cfg model.ExamConfig, studentID uuid.UUID, req *model.SubmitResultRequest, now time.Time) *model.ExamResult {
	result := &model.ExamResult{
		ID:          uuid.New(),
		ExamID:      exam.ID,
		StudentID:   studentID,
		TotalMarks:  exam.TotalMarks,
		Answers:     req.Answers,
		TimeTaken:   clampTimeTaken(req.TimeTaken, exam.DurationMinutes),
		CompletedAt: now,
	}

	questions, err := s.questions.GetByIDs(ctx, exam.QuestionIDs)
	if err != nil {
		// Answer key unavailable; keep the client's numbers rather than
		// losing the submission.
		s.log.Warn().Err(err).Str("exam_id", exam.ID.String()).Msg("regrade skipped, answer key unavailable")
		result.Score = req.Score
		result.Percentage = req.Percentage
		return result
	}

	var score float64
	for i := range questions {
		q := &questions[i]
		given, answered := req.Answers[q.ID.String()]
		if !answered || given == "" {
			continue
		}
		correct := model.CorrectAnswer(model.NormalizeOptions(q.Options))
		if given == correct {
			score += exam.MarksPerQuestion
		} else if cfg.NegativeMarking {
			score -= cfg.NegativeMarkValue
		}
	}

	result.Score = math.Max(0, score)
	if exam.TotalMarks > 0 {
		result.Percentage = int(math.Round(result.Score / exam.TotalMarks * 100))
	}
	return result
}

// submitPractice records a result for a self-authored exam. Nothing is
// enqueued; the user's store is the only home these results have.
func (s *ResultService) submitPractice(ctx context.Context, state *store.UserState, studentID, examID uuid.UUID, req *model.SubmitResultRequest, now time.Time) (*model.ExamResult, error) {
	practice, err := state.PracticeExam(ctx, req.ExamID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get practice exam: %w", err)
	}

	result := &model.ExamResult{
		ID:          uuid.New(),
		ExamID:      examID,
		StudentID:   studentID,
		Score:       req.Score,
		TotalMarks:  req.TotalMarks,
		Percentage:  req.Percentage,
		Answers:     req.Answers,
		TimeTaken:   clampTimeTaken(req.TimeTaken, practice.Exam.DurationMinutes),
		CompletedAt: now,
	}

	if err := state.MarkCompleted(ctx, req.ExamID); err != nil {
		s.log.Warn().Err(err).Str("exam_id", req.ExamID).Msg("failed to mark practice exam completed")
	}
	if err := state.SaveLastResult(ctx, result); err != nil {
		s.log.Warn().Err(err).Str("exam_id", req.ExamID).Msg("failed to cache last result")
	}
	if err := state.SaveResult(ctx, result); err != nil {
		return nil, fmt.Errorf("save practice result: %w", err)
	}
	return result, nil
}

func clampTimeTaken(seconds, durationMinutes int) int {
	if seconds < 0 {
		return 0
	}
	if max := durationMinutes * 60; max > 0 && seconds > max {
		return max
	}
	return seconds
}

// ─── Resolution ─────────────────────────────────────────────────────

// Resolve finds the result for one exam by walking the tiers in order:
// the session's last-result slot, the per-user cached results, and
// finally the database. The database query is already scoped to the
// student, so a foreign result id can never leak across accounts.
func (s *ResultService) Resolve(ctx context.Context, studentID uuid.UUID, examID uuid.UUID) (*model.ExamResult, error) {
	state := store.NewUserState(s.kv, studentID.String())

	if last, err := state.LastResult(ctx); err == nil && last.ExamID == examID {
		return last, nil
	}

	if cached, err := state.Result(ctx, examID.String()); err == nil {
		return cached, nil
	}

	result, err := s.results.GetByStudentAndExam(ctx, studentID, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("get result: %w", err)
	}
	return result, nil
}

// ListByStudent returns all of the student's persisted results.
func (s *ResultService) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.ExamResult, error) {
	return s.results.ListByStudent(ctx, studentID)
}

// ─── Review ─────────────────────────────────────────────────────────

// ResultView is the full result page payload.
type ResultView struct {
	Result         *model.ExamResult          `json:"result"`
	ExamTitle      string                     `json:"exam_title,omitempty"`
	Review         []model.QuestionReview     `json:"review,omitempty"`
	SubjectHistory []model.SubjectHistoryEntry `json:"subject_history,omitempty"`
	SubjectStats   *model.SubjectStats        `json:"subject_stats,omitempty"`
}

// View resolves a result and decorates it with the per-question review and
// the subject history. Review rows honor the exam's answer visibility:
// before the window closes an "after-exam-end" exam shows statuses only.
func (s *ResultService) View(ctx context.Context, studentID uuid.UUID, examID uuid.UUID) (*ResultView, error) {
	result, err := s.Resolve(ctx, studentID, examID)
	if err != nil {
		return nil, err
	}

	view := &ResultView{Result: result}
	state := store.NewUserState(s.kv, studentID.String())
	now := time.Now()

	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get exam: %w", err)
		}
		// Practice exam: review from the stored blob, answers always visible.
		if practice, perr := state.PracticeExam(ctx, examID.String()); perr == nil {
			view.ExamTitle = practice.Exam.Title
			view.Review = buildReview(practice.Questions, result.Answers, true)
		}
		return view, nil
	}

	view.ExamTitle = exam.Title
	cfg := model.ParseExamConfig(exam.Config)
	showAnswers := cfg.AnswerVisibility == "immediate" || HasEnded(exam, now)

	questions, err := s.questions.GetByIDs(ctx, exam.QuestionIDs)
	if err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("review unavailable")
	} else {
		view.Review = buildReview(questions, result.Answers, showAnswers)
	}

	if exam.SubjectID != nil {
		view.SubjectHistory, view.SubjectStats = s.subjectHistory(ctx, studentID, *exam.SubjectID)
	}
	return view, nil
}

func buildReview(questions []model.Question, answers map[string]string, showAnswers bool) []model.QuestionReview {
	review := make([]model.QuestionReview, 0, len(questions))
	for i := range questions {
		q := &questions[i]
		options := model.NormalizeOptions(q.Options)
		correct := model.CorrectAnswer(options)
		given := answers[q.ID.String()]

		status := model.ReviewSkipped
		if given != "" {
			if given == correct {
				status = model.ReviewCorrect
			} else {
				status = model.ReviewWrong
			}
		}

		row := model.QuestionReview{
			QuestionID:   q.ID,
			QuestionText: q.Text(),
			Options:      options,
			GivenAnswer:  given,
			Status:       status,
		}
		if showAnswers {
			row.CorrectAnswer = correct
			row.Explanation = q.Explanation
		}
		review = append(review, row)
	}
	return review
}

// subjectHistory is best-effort: any failure returns empty rather than
// degrading the result page.
func (s *ResultService) subjectHistory(ctx context.Context, studentID, subjectID uuid.UUID) ([]model.SubjectHistoryEntry, *model.SubjectStats) {
	entries, err := s.results.ListBySubject(ctx, studentID, subjectID, subjectHistorySize)
	if err != nil {
		s.log.Warn().Err(err).Str("subject_id", subjectID.String()).Msg("subject history unavailable")
		return nil, nil
	}
	if len(entries) == 0 {
		return nil, nil
	}

	sum := 0
	for _, e := range entries {
		sum += e.Percentage
	}
	return entries, &model.SubjectStats{
		Average: int(math.Round(float64(sum) / float64(len(entries)))),
		Count:   len(entries),
	}
}
