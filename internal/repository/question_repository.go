package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnedu/learnedu-backend/internal/model"
)

// QuestionRepository handles question-bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, subject_id, chapter_id, topic_id, exam_type_id,
	question_text_bn, question_text_en, options, explanation, difficulty, created_at`

// GetByIDs retrieves the questions for the given ids, preserving the order
// of the ids slice. Missing ids are silently dropped so a stale exam
// definition degrades instead of failing.
func (r *QuestionRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]model.Question, len(ids))
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.SubjectID, &q.ChapterID, &q.TopicID, &q.ExamTypeID,
			&q.QuestionTextBn, &q.QuestionTextEn, &q.Options, &q.Explanation,
			&q.Difficulty, &q.CreatedAt); err != nil {
			return nil, err
		}
		byID[q.ID] = q
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	questions := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			questions = append(questions, q)
		}
	}
	return questions, nil
}
