package model

import "github.com/google/uuid"

// The question hierarchy: classes → groups → subjects → chapters → topics.
// These are read-only collaborators from the attempt core's perspective.

type Class struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type Group struct {
	ID      uuid.UUID `json:"id"`
	ClassID uuid.UUID `json:"class_id"`
	Name    string    `json:"name"`
}

type Subject struct {
	ID      uuid.UUID `json:"id"`
	GroupID uuid.UUID `json:"group_id"`
	Name    string    `json:"name"`
}

type Chapter struct {
	ID        uuid.UUID `json:"id"`
	SubjectID uuid.UUID `json:"subject_id"`
	Name      string    `json:"name"`
}

type Topic struct {
	ID        uuid.UUID `json:"id"`
	ChapterID uuid.UUID `json:"chapter_id"`
	Name      string    `json:"name"`
}
