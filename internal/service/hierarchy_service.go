package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/learnedu/learnedu-backend/internal/model"
	"github.com/learnedu/learnedu-backend/internal/repository"
)

// HierarchyService exposes the read-only question hierarchy.
type HierarchyService struct {
	repo *repository.HierarchyRepository
}

// NewHierarchyService creates a new HierarchyService.
func NewHierarchyService(repo *repository.HierarchyRepository) *HierarchyService {
	return &HierarchyService{repo: repo}
}

func (s *HierarchyService) Classes(ctx context.Context) ([]model.Class, error) {
	return s.repo.ListClasses(ctx)
}

func (s *HierarchyService) Groups(ctx context.Context, classID uuid.UUID) ([]model.Group, error) {
	return s.repo.ListGroups(ctx, classID)
}

func (s *HierarchyService) Subjects(ctx context.Context, groupID uuid.UUID) ([]model.Subject, error) {
	return s.repo.ListSubjects(ctx, groupID)
}

func (s *HierarchyService) Chapters(ctx context.Context, subjectID uuid.UUID) ([]model.Chapter, error) {
	return s.repo.ListChapters(ctx, subjectID)
}

func (s *HierarchyService) Topics(ctx context.Context, chapterID uuid.UUID) ([]model.Topic, error) {
	return s.repo.ListTopics(ctx, chapterID)
}
