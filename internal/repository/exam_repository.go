package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnedu/learnedu-backend/internal/model"
)

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

const examColumns = `id, title, description, instructions, warnings, subject_id,
	duration_minutes, total_marks, marks_per_question, question_ids,
	start_date, start_time, end_date, end_time,
	published, published_at, config, access_type, allowed_students,
	created_at, updated_at`

func scanExam(row interface{ Scan(...any) error }) (*model.Exam, error) {
	e := &model.Exam{}
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Instructions, &e.Warnings,
		&e.SubjectID, &e.DurationMinutes, &e.TotalMarks, &e.MarksPerQuestion,
		&e.QuestionIDs, &e.StartDate, &e.StartTime, &e.EndDate, &e.EndTime,
		&e.Published, &e.PublishedAt, &e.Config, &e.AccessType, &e.AllowedStudents,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetByID retrieves an exam by its UUID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return scanExam(r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1`, id))
}

// SetPublished flips an exam's published flag. published_at tracks the
// first moment students could see the exam and clears on unpublish.
func (r *ExamRepository) SetPublished(ctx context.Context, id uuid.UUID, published bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exams
		 SET published = $2,
		     published_at = CASE WHEN $2 THEN now() ELSE NULL END,
		     updated_at = now()
		 WHERE id = $1`, id, published)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListPublished retrieves all published exams, newest first.
func (r *ExamRepository) ListPublished(ctx context.Context) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams WHERE published ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		exams = append(exams, *e)
	}
	return exams, rows.Err()
}
