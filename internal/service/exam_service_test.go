package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/learnedu/learnedu-backend/internal/model"
	"github.com/learnedu/learnedu-backend/internal/store"
)

func gatingService(kv store.KV) *ExamService {
	return NewExamService(nil, nil, kv, zerolog.Nop())
}

func publishedExam() *model.Exam {
	return &model.Exam{
		ID:          uuid.New(),
		Title:       "রসায়ন সাপ্তাহিক পরীক্ষা",
		Published:   true,
		QuestionIDs: []uuid.UUID{uuid.New()},
		AccessType:  model.AccessTypeAll,
	}
}

func TestBuildDateTime(t *testing.T) {
	start, ok := buildDateTime("2026-03-01", "09:30", "00:00")
	if !ok {
		t.Fatal("expected a timestamp")
	}
	if start.Hour() != 9 || start.Minute() != 30 {
		t.Errorf("got %v", start)
	}

	// Missing time falls back to the caller's default.
	end, ok := buildDateTime("2026-03-01", "", "23:59")
	if !ok || end.Hour() != 23 || end.Minute() != 59 {
		t.Errorf("default time: got %v, ok=%v", end, ok)
	}

	if _, ok := buildDateTime("", "09:30", "00:00"); ok {
		t.Error("missing date should yield no timestamp")
	}
	if _, ok := buildDateTime("garbage", "09:30", "00:00"); ok {
		t.Error("malformed date should yield no timestamp")
	}
}

func TestUpcomingAndHasEnded(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

	exam := &model.Exam{StartDate: "2026-03-11", StartTime: "09:00"}
	if !Upcoming(exam, now) {
		t.Error("exam starting tomorrow should be upcoming")
	}

	exam = &model.Exam{StartDate: "2026-03-09", EndDate: "2026-03-09", EndTime: "18:00"}
	if Upcoming(exam, now) {
		t.Error("started exam is not upcoming")
	}
	if !HasEnded(exam, now) {
		t.Error("exam past its end should have ended")
	}

	// No schedule at all: always open, never ends.
	exam = &model.Exam{}
	if Upcoming(exam, now) || HasEnded(exam, now) {
		t.Error("unscheduled exam should be open")
	}
}

func TestIsAllowedByExam(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()

	exam := publishedExam()
	if !IsAllowedByExam(exam, alice) {
		t.Error("access type all should admit everyone")
	}

	exam.AccessType = model.AccessTypeSpecific
	exam.AllowedStudents = []uuid.UUID{alice}
	if !IsAllowedByExam(exam, alice) {
		t.Error("listed student should be admitted")
	}
	if IsAllowedByExam(exam, bob) {
		t.Error("unlisted student must be rejected")
	}
}

func TestCanAttempt(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	kv := store.NewMemoryKV()
	svc := gatingService(kv)
	studentID := uuid.NewString()

	exam := publishedExam()

	// Fresh exam: attempt allowed.
	if !svc.CanAttempt(ctx, studentID, exam, now) {
		t.Fatal("first attempt should be allowed")
	}

	// Completed with no config at all: the absent flag permits retakes.
	state := store.NewUserState(kv, studentID)
	_ = state.MarkCompleted(ctx, exam.ID.String())
	if !svc.CanAttempt(ctx, studentID, exam, now) {
		t.Fatal("absent allowMultipleAttempts should permit a retake")
	}

	// Explicit single-attempt, still-open exam: blocked.
	exam.Config = json.RawMessage(`{"allowMultipleAttempts": false}`)
	if svc.CanAttempt(ctx, studentID, exam, now) {
		t.Fatal("retake of an open single-attempt exam should be blocked")
	}

	// Multiple attempts allowed: retake permitted.
	exam.Config = json.RawMessage(`{"allowMultipleAttempts": true}`)
	if !svc.CanAttempt(ctx, studentID, exam, now) {
		t.Fatal("multi-attempt exam should allow retakes")
	}

	// Single-attempt but the window has closed: re-opens for review retakes.
	exam.Config = json.RawMessage(`{"allowMultipleAttempts": false}`)
	exam.EndDate = now.AddDate(0, 0, -1).Format("2006-01-02")
	if !svc.CanAttempt(ctx, studentID, exam, now) {
		t.Fatal("ended exam should allow a repeat attempt")
	}
}

func TestCanStartGateOrder(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	svc := gatingService(kv)
	studentID := uuid.New()

	exam := publishedExam()

	// Not agreed yet.
	if err := svc.CanStart(ctx, studentID, exam, false); err != ErrAgreementRequired {
		t.Errorf("unagreed start = %v, want ErrAgreementRequired", err)
	}

	// Agreed and eligible.
	if err := svc.CanStart(ctx, studentID, exam, true); err != nil {
		t.Errorf("eligible start = %v, want nil", err)
	}

	// Unpublished wins over everything.
	exam.Published = false
	if err := svc.CanStart(ctx, studentID, exam, true); err != ErrExamNotPublished {
		t.Errorf("unpublished start = %v, want ErrExamNotPublished", err)
	}
	exam.Published = true

	// Upcoming schedule blocks the start.
	exam.StartDate = time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	if err := svc.CanStart(ctx, studentID, exam, true); err != ErrExamUpcoming {
		t.Errorf("upcoming start = %v, want ErrExamUpcoming", err)
	}
	exam.StartDate = ""

	// Access list blocks outsiders.
	exam.AccessType = model.AccessTypeSpecific
	if err := svc.CanStart(ctx, studentID, exam, true); err != ErrNotAllowedForExam {
		t.Errorf("unlisted start = %v, want ErrNotAllowedForExam", err)
	}
	exam.AccessType = model.AccessTypeAll

	// No questions.
	exam.QuestionIDs = nil
	if err := svc.CanStart(ctx, studentID, exam, true); err != ErrNoQuestions {
		t.Errorf("empty exam start = %v, want ErrNoQuestions", err)
	}
}

func TestScheduleText(t *testing.T) {
	exam := &model.Exam{
		StartDate: "2026-03-01", StartTime: "09:00",
		EndDate: "2026-03-01", EndTime: "12:00",
	}
	if got := ScheduleText(exam); got != "1 Mar 2026 09:00 — 1 Mar 2026 12:00" {
		t.Errorf("got %q", got)
	}
	if got := ScheduleText(&model.Exam{}); got != "Always open" {
		t.Errorf("got %q", got)
	}
}
