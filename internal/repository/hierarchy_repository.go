package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnedu/learnedu-backend/internal/model"
)

// HierarchyRepository reads the classes → groups → subjects → chapters →
// topics tree. All queries are flat level listings; the client composes
// the tree by walking down one level at a time.
type HierarchyRepository struct {
	pool *pgxpool.Pool
}

// NewHierarchyRepository creates a new HierarchyRepository.
func NewHierarchyRepository(pool *pgxpool.Pool) *HierarchyRepository {
	return &HierarchyRepository{pool: pool}
}

func (r *HierarchyRepository) ListClasses(ctx context.Context) ([]model.Class, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM classes ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []model.Class
	for rows.Next() {
		var c model.Class
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

func (r *HierarchyRepository) ListGroups(ctx context.Context, classID uuid.UUID) ([]model.Group, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, class_id, name FROM groups WHERE class_id = $1 ORDER BY name ASC`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []model.Group
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(&g.ID, &g.ClassID, &g.Name); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *HierarchyRepository) ListSubjects(ctx context.Context, groupID uuid.UUID) ([]model.Subject, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, group_id, name FROM subjects WHERE group_id = $1 ORDER BY name ASC`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []model.Subject
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.GroupID, &s.Name); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

func (r *HierarchyRepository) ListChapters(ctx context.Context, subjectID uuid.UUID) ([]model.Chapter, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, subject_id, name FROM chapters WHERE subject_id = $1 ORDER BY name ASC`, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chapters []model.Chapter
	for rows.Next() {
		var c model.Chapter
		if err := rows.Scan(&c.ID, &c.SubjectID, &c.Name); err != nil {
			return nil, err
		}
		chapters = append(chapters, c)
	}
	return chapters, rows.Err()
}

func (r *HierarchyRepository) ListTopics(ctx context.Context, chapterID uuid.UUID) ([]model.Topic, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, chapter_id, name FROM topics WHERE chapter_id = $1 ORDER BY name ASC`, chapterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []model.Topic
	for rows.Next() {
		var t model.Topic
		if err := rows.Scan(&t.ID, &t.ChapterID, &t.Name); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}
