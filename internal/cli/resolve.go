package cli

import (
	"fmt"
	"strings"

	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/store"
)

// resolveTask finds a task by full id or by a unique id prefix.
func resolveTask(st *store.Store, ref string) (models.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Task{}, fmt.Errorf("task id is required")
	}
	if task, ok := st.GetTaskByID(ref); ok {
		return task, nil
	}

	lower := strings.ToLower(ref)
	var matches []models.Task
	for _, t := range st.Tasks() {
		if strings.HasPrefix(strings.ToLower(t.ID), lower) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return models.Task{}, fmt.Errorf("task not found: %s", ref)
	case 1:
		return matches[0], nil
	default:
		return models.Task{}, fmt.Errorf("task id %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// resolveTag finds a tag by id, case-insensitive name or unique id prefix.
func resolveTag(st *store.Store, ref string) (models.Tag, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Tag{}, fmt.Errorf("tag is required")
	}
	tags := st.Tags()
	for _, t := range tags {
		if t.ID == ref || strings.EqualFold(t.Name, ref) {
			return t, nil
		}
	}

	lower := strings.ToLower(ref)
	var matches []models.Tag
	for _, t := range tags {
		if strings.HasPrefix(strings.ToLower(t.ID), lower) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return models.Tag{}, fmt.Errorf("tag not found: %s", ref)
	case 1:
		return matches[0], nil
	default:
		return models.Tag{}, fmt.Errorf("tag %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// resolveTags maps tag names or ids to ids.
func resolveTags(st *store.Store, refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		tag, err := resolveTag(st, ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, tag.ID)
	}
	return ids, nil
}
