package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnedu/learnedu-backend/internal/model"
)

// ResultRepository handles exam result data access.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

const resultColumns = `id, exam_id, student_id, score, total_marks, percentage,
	answers, time_taken, completed_at`

// Create inserts a single result row.
func (r *ResultRepository) Create(ctx context.Context, res *model.ExamResult) error {
	answers, err := json.Marshal(res.Answers)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO exam_results
		 (id, exam_id, student_id, score, total_marks, percentage, answers, time_taken, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		res.ID, res.ExamID, res.StudentID, res.Score, res.TotalMarks,
		res.Percentage, answers, res.TimeTaken, res.CompletedAt)
	return err
}

// BulkCreate inserts a batch of results in one round trip via UNNEST.
func (r *ResultRepository) BulkCreate(ctx context.Context, batch []*model.ExamResult) error {
	n := len(batch)
	if n == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, n)
	examIDs := make([]uuid.UUID, 0, n)
	studentIDs := make([]uuid.UUID, 0, n)
	scores := make([]float64, 0, n)
	totals := make([]float64, 0, n)
	percentages := make([]int, 0, n)
	answers := make([][]byte, 0, n)
	timesTaken := make([]int, 0, n)
	completedAts := make([]time.Time, 0, n)

	for _, res := range batch {
		raw, err := json.Marshal(res.Answers)
		if err != nil {
			return err
		}
		ids = append(ids, res.ID)
		examIDs = append(examIDs, res.ExamID)
		studentIDs = append(studentIDs, res.StudentID)
		scores = append(scores, res.Score)
		totals = append(totals, res.TotalMarks)
		percentages = append(percentages, res.Percentage)
		answers = append(answers, raw)
		timesTaken = append(timesTaken, res.TimeTaken)
		completedAts = append(completedAts, res.CompletedAt)
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO exam_results
		 (id, exam_id, student_id, score, total_marks, percentage, answers, time_taken, completed_at)
		 SELECT * FROM UNNEST(
		   $1::uuid[], $2::uuid[], $3::uuid[], $4::float8[], $5::float8[],
		   $6::int[], $7::jsonb[], $8::int[], $9::timestamptz[])
		 ON CONFLICT (id) DO NOTHING`,
		ids, examIDs, studentIDs, scores, totals, percentages, answers, timesTaken, completedAts)
	return err
}

func scanResult(row interface{ Scan(...any) error }) (*model.ExamResult, error) {
	res := &model.ExamResult{}
	var answers []byte
	err := row.Scan(&res.ID, &res.ExamID, &res.StudentID, &res.Score, &res.TotalMarks,
		&res.Percentage, &answers, &res.TimeTaken, &res.CompletedAt)
	if err != nil {
		return nil, err
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &res.Answers); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// GetByStudentAndExam retrieves the most recent result for the pair.
func (r *ResultRepository) GetByStudentAndExam(ctx context.Context, studentID, examID uuid.UUID) (*model.ExamResult, error) {
	return scanResult(r.pool.QueryRow(ctx,
		`SELECT `+resultColumns+` FROM exam_results
		 WHERE student_id = $1 AND exam_id = $2
		 ORDER BY completed_at DESC LIMIT 1`, studentID, examID))
}

// ListByStudent retrieves all of a student's results, newest first.
func (r *ResultRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.ExamResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+resultColumns+` FROM exam_results
		 WHERE student_id = $1 ORDER BY completed_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.ExamResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
	}
	return results, rows.Err()
}

// ListBySubject retrieves a student's recent results on one subject, newest
// first, capped at limit. Used for the subject performance history.
func (r *ResultRepository) ListBySubject(ctx context.Context, studentID, subjectID uuid.UUID, limit int) ([]model.SubjectHistoryEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT er.exam_id, e.title, er.percentage, er.completed_at
		 FROM exam_results er
		 JOIN exams e ON e.id = er.exam_id
		 WHERE er.student_id = $1 AND e.subject_id = $2
		 ORDER BY er.completed_at DESC
		 LIMIT $3`, studentID, subjectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.SubjectHistoryEntry
	for rows.Next() {
		var entry model.SubjectHistoryEntry
		if err := rows.Scan(&entry.ExamID, &entry.ExamTitle, &entry.Percentage, &entry.CompletedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
