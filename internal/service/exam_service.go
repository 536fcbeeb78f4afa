package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/learnedu/learnedu-backend/internal/model"
	"github.com/learnedu/learnedu-backend/internal/repository"
	"github.com/learnedu/learnedu-backend/internal/store"
)

// Gating errors, mapped to error codes at the handler boundary.
var (
	ErrExamNotFound      = errors.New("exam not found")
	ErrExamNotPublished  = errors.New("exam not published")
	ErrExamUpcoming      = errors.New("exam has not started yet")
	ErrNotAllowedForExam = errors.New("student not allowed for this exam")
	ErrAlreadyCompleted  = errors.New("exam already completed")
	ErrAgreementRequired = errors.New("instructions must be agreed to first")
	ErrNoQuestions       = errors.New("exam has no questions")
)

// ExamService handles exam reads and the start-attempt gate.
type ExamService struct {
	exams     *repository.ExamRepository
	questions *repository.QuestionRepository
	kv        store.KV
	log       zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(exams *repository.ExamRepository, questions *repository.QuestionRepository, kv store.KV, log zerolog.Logger) *ExamService {
	return &ExamService{
		exams:     exams,
		questions: questions,
		kv:        kv,
		log:       log.With().Str("component", "exam_service").Logger(),
	}
}

// GetByID retrieves one published exam. Unpublished exams are invisible to
// students regardless of schedule.
func (s *ExamService) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if !exam.Published {
		return nil, ErrExamNotPublished
	}
	return exam, nil
}

// GetWithQuestions retrieves a published exam with its question bodies.
func (s *ExamService) GetWithQuestions(ctx context.Context, id uuid.UUID) (*model.ExamWithQuestions, error) {
	exam, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	questions, err := s.questions.GetByIDs(ctx, exam.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("get questions: %w", err)
	}
	return &model.ExamWithQuestions{Exam: *exam, Questions: questions}, nil
}

// SetPublished publishes or unpublishes an exam. The admin route is the
// only caller; role enforcement happens in the middleware.
func (s *ExamService) SetPublished(ctx context.Context, id uuid.UUID, published bool) error {
	if err := s.exams.SetPublished(ctx, id, published); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrExamNotFound
		}
		return fmt.Errorf("set published: %w", err)
	}
	return nil
}

// ─── Schedule ───────────────────────────────────────────────────────

// buildDateTime combines an exam's date and time strings into a local
// timestamp. An absent time defaults to midnight for starts; callers that
// need end-of-day semantics pass defaultTime "23:59".
func buildDateTime(dateStr, timeStr, defaultTime string) (time.Time, bool) {
	if dateStr == "" {
		return time.Time{}, false
	}
	if timeStr == "" {
		timeStr = defaultTime
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", dateStr+" "+timeStr, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// StartsAt returns the exam's scheduled start, if any.
func StartsAt(exam *model.Exam) (time.Time, bool) {
	return buildDateTime(exam.StartDate, exam.StartTime, "00:00")
}

// EndsAt returns the exam's scheduled end, if any.
func EndsAt(exam *model.Exam) (time.Time, bool) {
	return buildDateTime(exam.EndDate, exam.EndTime, "23:59")
}

// Upcoming reports whether the exam's scheduled start is still in the
// future. No start date means the exam is open immediately.
func Upcoming(exam *model.Exam, now time.Time) bool {
	start, ok := StartsAt(exam)
	return ok && now.Before(start)
}

// HasEnded reports whether the exam's scheduled window has closed.
// No end date means the exam never ends.
func HasEnded(exam *model.Exam, now time.Time) bool {
	end, ok := EndsAt(exam)
	return ok && now.After(end)
}

// ScheduleText renders the exam window for the instructions view, e.g.
// "2 Jan 2006 09:00 — 2 Jan 2006 12:00". Open-ended parts are omitted.
func ScheduleText(exam *model.Exam) string {
	const layout = "2 Jan 2006 15:04"
	start, hasStart := StartsAt(exam)
	end, hasEnd := EndsAt(exam)
	switch {
	case hasStart && hasEnd:
		return start.Format(layout) + " — " + end.Format(layout)
	case hasStart:
		return "From " + start.Format(layout)
	case hasEnd:
		return "Until " + end.Format(layout)
	default:
		return "Always open"
	}
}

// ─── Gating ─────────────────────────────────────────────────────────

// CanAttempt reports whether the student may take (or retake) the exam.
// Retakes are allowed when the exam permits multiple attempts, when the
// student has no completed attempt, or when the exam window has already
// closed. The last disjunct re-opens ended exams for review-style retakes.
func (s *ExamService) CanAttempt(ctx context.Context, studentID string, exam *model.Exam, now time.Time) bool {
	cfg := model.ParseExamConfig(exam.Config)
	if cfg.AllowMultipleAttempts {
		return true
	}
	state := store.NewUserState(s.kv, studentID)
	if !state.Completed(ctx, exam.ID.String()) {
		return true
	}
	return HasEnded(exam, now)
}

// IsAllowedByExam enforces the exam's access list. Exams with access type
// "all" (or anything unrecognized) admit every student.
func IsAllowedByExam(exam *model.Exam, studentID uuid.UUID) bool {
	if exam.AccessType != model.AccessTypeSpecific {
		return true
	}
	for _, id := range exam.AllowedStudents {
		if id == studentID {
			return true
		}
	}
	return false
}

// CanStart runs the full pre-attempt gate: published, schedule open,
// access list, attempt policy and instruction agreement, in that order.
func (s *ExamService) CanStart(ctx context.Context, studentID uuid.UUID, exam *model.Exam, agreed bool) error {
	now := time.Now()

	if !exam.Published {
		return ErrExamNotPublished
	}
	if Upcoming(exam, now) {
		return ErrExamUpcoming
	}
	if !IsAllowedByExam(exam, studentID) {
		return ErrNotAllowedForExam
	}
	if !s.CanAttempt(ctx, studentID.String(), exam, now) {
		return ErrAlreadyCompleted
	}
	if !agreed {
		return ErrAgreementRequired
	}
	if len(exam.QuestionIDs) == 0 {
		return ErrNoQuestions
	}
	return nil
}

// ─── Views ──────────────────────────────────────────────────────────

// InstructionsView is the pre-attempt gate as the client sees it.
type InstructionsView struct {
	Exam         *model.Exam      `json:"exam"`
	Config       model.ExamConfig `json:"config"`
	ScheduleText string           `json:"schedule_text"`
	Upcoming     bool             `json:"upcoming"`
	HasEnded     bool             `json:"has_ended"`
	IsAllowed    bool             `json:"is_allowed"`
	Completed    bool             `json:"completed"`
	CanAttempt   bool             `json:"can_attempt"`
}

// Instructions builds the gating view for one exam and student.
func (s *ExamService) Instructions(ctx context.Context, studentID uuid.UUID, examID uuid.UUID) (*InstructionsView, error) {
	exam, err := s.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	state := store.NewUserState(s.kv, studentID.String())

	return &InstructionsView{
		Exam:         exam,
		Config:       model.ParseExamConfig(exam.Config),
		ScheduleText: ScheduleText(exam),
		Upcoming:     Upcoming(exam, now),
		HasEnded:     HasEnded(exam, now),
		IsAllowed:    IsAllowedByExam(exam, studentID),
		Completed:    state.Completed(ctx, exam.ID.String()),
		CanAttempt:   s.CanAttempt(ctx, studentID.String(), exam, now),
	}, nil
}

// Lobby statuses for the exam list.
const (
	StatusUpcoming   = "upcoming"
	StatusAvailable  = "available"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusEnded      = "ended"
)

// ExamListItem is one exam row in the student lobby.
type ExamListItem struct {
	Exam   model.Exam `json:"exam"`
	Status string     `json:"status"`
}

// ListMine returns the published exams visible to the student, each with
// its lobby status. Access-restricted exams the student is not on simply
// do not appear.
func (s *ExamService) ListMine(ctx context.Context, studentID uuid.UUID) ([]ExamListItem, error) {
	exams, err := s.exams.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}

	now := time.Now()
	state := store.NewUserState(s.kv, studentID.String())

	items := make([]ExamListItem, 0, len(exams))
	for i := range exams {
		exam := &exams[i]
		if !IsAllowedByExam(exam, studentID) {
			continue
		}

		status := StatusAvailable
		switch {
		case Upcoming(exam, now):
			status = StatusUpcoming
		case state.InProgress(ctx, exam.ID.String()):
			status = StatusInProgress
		case state.Completed(ctx, exam.ID.String()):
			status = StatusCompleted
		case HasEnded(exam, now):
			status = StatusEnded
		}

		items = append(items, ExamListItem{Exam: *exam, Status: status})
	}
	return items, nil
}
