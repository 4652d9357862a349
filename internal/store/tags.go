package store

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tgienger/kanban/internal/models"
)

// MaxTagNameLength is the longest accepted tag name, in characters.
const MaxTagNameLength = 50

// NewTag holds the fields for AddTag.
type NewTag struct {
	Name  string
	Color string
}

// TagUpdate is a partial tag update; nil fields are left alone.
type TagUpdate struct {
	Name  *string
	Color *string
}

// AddTag creates a tag. It returns a copy, or nil on failure.
func (s *Store) AddTag(ctx context.Context, in NewTag) *models.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, msg := validateTagName(in.Name)
	if msg != "" {
		s.invalid(msg)
		return nil
	}

	now := s.now().UTC()
	tag := models.Tag{
		ID:        s.newID(),
		Name:      name,
		Color:     strings.TrimSpace(in.Color),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if s.user != nil {
		tag.UserID = s.user.ID
	}

	s.tags = append(s.tags, tag)
	if !s.commit(ctx, "Failed to add tag") {
		s.tags = s.tags[:len(s.tags)-1]
		return nil
	}
	s.log.Infof("Event ID: TAG_ADDED, Description: %s", tag.ID)
	return &tag
}

// UpdateTag merges the non-nil fields of u into the tag.
func (s *Store) UpdateTag(ctx context.Context, id string, u TagUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.tagIndex(id)
	if idx < 0 {
		return
	}
	tag := s.tags[idx]
	if u.Name != nil {
		name, msg := validateTagName(*u.Name)
		if msg != "" {
			s.invalid(msg)
			return
		}
		tag.Name = name
	}
	if u.Color != nil {
		tag.Color = strings.TrimSpace(*u.Color)
	}
	tag.UpdatedAt = s.now().UTC()

	s.tags[idx] = tag
	s.commit(ctx, "Failed to update tag")
}

// DeleteTag removes the tag and strips it from every task.
func (s *Store) DeleteTag(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.tagIndex(id)
	if idx < 0 {
		return
	}
	s.tags = append(s.tags[:idx], s.tags[idx+1:]...)

	for i := range s.tasks {
		if !s.tasks[i].HasTag(id) {
			continue
		}
		kept := make([]string, 0, len(s.tasks[i].TagIDs)-1)
		for _, tagID := range s.tasks[i].TagIDs {
			if tagID != id {
				kept = append(kept, tagID)
			}
		}
		s.tasks[i].TagIDs = kept
	}

	if s.commit(ctx, "Failed to delete tag") {
		s.log.Infof("Event ID: TAG_DELETED, Description: %s", id)
	}
}

func (s *Store) tagIndex(id string) int {
	for i := range s.tags {
		if s.tags[i].ID == id {
			return i
		}
	}
	return -1
}

func validateTagName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "Tag name is required"
	}
	if utf8.RuneCountInString(name) > MaxTagNameLength {
		return "", fmt.Sprintf("Tag name must be at most %d characters", MaxTagNameLength)
	}
	return name, ""
}
