package client

import (
	"context"

	"github.com/learnedu/learnedu-backend/internal/model"
)

// Classes lists the top level of the question hierarchy.
func (c *Client) Classes(ctx context.Context) ([]model.Class, error) {
	var out struct {
		Classes []model.Class `json:"classes"`
	}
	if err := c.Get(ctx, "/api/v1/classes", &out); err != nil {
		return nil, err
	}
	return out.Classes, nil
}

// Groups lists the groups under one class.
func (c *Client) Groups(ctx context.Context, classID string) ([]model.Group, error) {
	var out struct {
		Groups []model.Group `json:"groups"`
	}
	if err := c.Get(ctx, "/api/v1/classes/"+classID+"/groups", &out); err != nil {
		return nil, err
	}
	return out.Groups, nil
}

// Subjects lists the subjects under one group.
func (c *Client) Subjects(ctx context.Context, groupID string) ([]model.Subject, error) {
	var out struct {
		Subjects []model.Subject `json:"subjects"`
	}
	if err := c.Get(ctx, "/api/v1/groups/"+groupID+"/subjects", &out); err != nil {
		return nil, err
	}
	return out.Subjects, nil
}

// Chapters lists the chapters under one subject.
func (c *Client) Chapters(ctx context.Context, subjectID string) ([]model.Chapter, error) {
	var out struct {
		Chapters []model.Chapter `json:"chapters"`
	}
	if err := c.Get(ctx, "/api/v1/subjects/"+subjectID+"/chapters", &out); err != nil {
		return nil, err
	}
	return out.Chapters, nil
}

// Topics lists the topics under one chapter.
func (c *Client) Topics(ctx context.Context, chapterID string) ([]model.Topic, error) {
	var out struct {
		Topics []model.Topic `json:"topics"`
	}
	if err := c.Get(ctx, "/api/v1/chapters/"+chapterID+"/topics", &out); err != nil {
		return nil, err
	}
	return out.Topics, nil
}
