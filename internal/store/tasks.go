package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tgienger/kanban/internal/models"
)

// MaxTitleLength is the longest accepted task title, in characters.
const MaxTitleLength = 500

// NewTask holds the fields for AddTask.
type NewTask struct {
	Title       string
	Description string
	Status      models.Status   // empty means todo
	Priority    models.Priority // empty means medium
	TagIDs      []string
	ParentID    string // empty for a root task
	DueDate     *time.Time
}

// TaskUpdate is a partial update; nil fields are left alone. It cannot
// change a task's parent or order: use MoveTask.
type TaskUpdate struct {
	Title        *string
	Description  *string
	Status       *models.Status
	Priority     *models.Priority
	TagIDs       *[]string
	DueDate      *time.Time
	ClearDueDate bool
}

// AddTask creates a task at the end of its sibling group. It returns a copy
// of the created task, or nil when validation or saving failed.
func (s *Store) AddTask(ctx context.Context, in NewTask) *models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	title, msg := validateTitle(in.Title)
	if msg != "" {
		s.invalid(msg)
		return nil
	}
	status := in.Status
	if status == "" {
		status = models.StatusTodo
	}
	if !status.IsValid() {
		s.invalid(fmt.Sprintf("Invalid status %q", in.Status))
		return nil
	}
	priority := in.Priority
	if priority == "" {
		priority = models.DefaultPriority
	}
	if !priority.IsValid() {
		s.invalid(fmt.Sprintf("Invalid priority %q", in.Priority))
		return nil
	}
	if in.ParentID != "" && s.taskIndex(in.ParentID) < 0 {
		s.invalid(fmt.Sprintf("Parent task %q not found", in.ParentID))
		return nil
	}

	now := s.now().UTC()
	task := models.Task{
		ID:          s.newID(),
		Title:       title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		TagIDs:      s.knownTags(in.TagIDs),
		ParentID:    in.ParentID,
		Order:       len(s.siblings(in.ParentID, "")),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if s.user != nil {
		task.UserID = s.user.ID
	}
	if in.DueDate != nil {
		d := *in.DueDate
		task.DueDate = &d
	}
	if status == models.StatusCompleted {
		task.CompletedAt = &now
	}

	s.tasks = append(s.tasks, task)
	if !s.commit(ctx, "Failed to add task") {
		s.tasks = s.tasks[:len(s.tasks)-1]
		return nil
	}

	s.log.Infof("Event ID: TASK_ADDED, Description: %s", task.ID)
	created := task.Clone()
	return &created
}

// UpdateTask merges the non-nil fields of u into the task. Unknown ids are
// ignored.
func (s *Store) UpdateTask(ctx context.Context, id string, u TaskUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.taskIndex(id)
	if idx < 0 {
		return
	}
	task := s.tasks[idx].Clone()

	if u.Title != nil {
		title, msg := validateTitle(*u.Title)
		if msg != "" {
			s.invalid(msg)
			return
		}
		task.Title = title
	}
	if u.Description != nil {
		task.Description = *u.Description
	}
	if u.Priority != nil {
		if !u.Priority.IsValid() {
			s.invalid(fmt.Sprintf("Invalid priority %q", *u.Priority))
			return
		}
		task.Priority = *u.Priority
	}
	if u.TagIDs != nil {
		task.TagIDs = s.knownTags(*u.TagIDs)
	}
	if u.ClearDueDate {
		task.DueDate = nil
	} else if u.DueDate != nil {
		d := *u.DueDate
		task.DueDate = &d
	}

	now := s.now().UTC()
	if u.Status != nil {
		if !u.Status.IsValid() {
			s.invalid(fmt.Sprintf("Invalid status %q", *u.Status))
			return
		}
		setStatus(&task, *u.Status, now)
	}
	task.UpdatedAt = now

	s.tasks[idx] = task
	s.commit(ctx, "Failed to update task")
}

// DeleteTask removes the task and all of its descendants. The remaining
// siblings of the task are renumbered to close the gap.
func (s *Store) DeleteTask(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.taskIndex(id)
	if idx < 0 {
		return
	}
	parentID := s.tasks[idx].ParentID

	doomed := s.descendantIDs(id)
	doomed[id] = struct{}{}

	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if _, ok := doomed[t.ID]; !ok {
			kept = append(kept, t)
		}
	}
	// Zero the tail so removed tasks don't linger in the backing array.
	for i := len(kept); i < len(s.tasks); i++ {
		s.tasks[i] = models.Task{}
	}
	s.tasks = kept

	for i, j := range s.siblings(parentID, "") {
		s.tasks[j].Order = i
	}

	if s.commit(ctx, "Failed to delete task") {
		s.log.WithField("removed", len(doomed)).Infof("Event ID: TASK_DELETED, Description: %s", id)
	}
}

// MoveTask reparents the task under newParentID ("" for the root group) at
// position newIndex, clamped to the destination group's bounds. Moves that
// would put a task inside its own subtree, and moves of unknown tasks or to
// unknown parents, are ignored.
func (s *Store) MoveTask(ctx context.Context, id, newParentID string, newIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.taskIndex(id)
	if idx < 0 {
		return
	}
	if newParentID != "" {
		if s.taskIndex(newParentID) < 0 {
			return
		}
		if s.isSelfOrDescendant(newParentID, id) {
			s.log.Debugf("Event ID: MOVE_REJECTED, Description: %s into its own subtree", id)
			return
		}
	}

	for i, j := range s.siblings(s.tasks[idx].ParentID, id) {
		s.tasks[j].Order = i
	}

	dest := s.siblings(newParentID, id)
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(dest) {
		newIndex = len(dest)
	}
	for i, j := range dest {
		if i >= newIndex {
			s.tasks[j].Order = i + 1
		} else {
			s.tasks[j].Order = i
		}
	}

	s.tasks[idx].ParentID = newParentID
	s.tasks[idx].Order = newIndex
	s.tasks[idx].UpdatedAt = s.now().UTC()

	s.commit(ctx, "Failed to move task")
}

// ToggleTaskStatus flips a task between completed and todo.
func (s *Store) ToggleTaskStatus(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.taskIndex(id)
	if idx < 0 {
		return
	}
	next := models.StatusCompleted
	if s.tasks[idx].Status == models.StatusCompleted {
		next = models.StatusTodo
	}
	now := s.now().UTC()
	setStatus(&s.tasks[idx], next, now)
	s.tasks[idx].UpdatedAt = now

	s.commit(ctx, "Failed to update task")
}

// SetTaskStatus moves a task to the given status column.
func (s *Store) SetTaskStatus(ctx context.Context, id string, status models.Status) {
	s.UpdateTask(ctx, id, TaskUpdate{Status: &status})
}

// setStatus applies status, stamping CompletedAt on entry to completed and
// clearing it otherwise.
func setStatus(t *models.Task, status models.Status, now time.Time) {
	if status == models.StatusCompleted {
		if t.Status != models.StatusCompleted || t.CompletedAt == nil {
			t.CompletedAt = &now
		}
	} else {
		t.CompletedAt = nil
	}
	t.Status = status
}

func validateTitle(title string) (string, string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", "Title is required"
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", fmt.Sprintf("Title must be at most %d characters", MaxTitleLength)
	}
	return title, ""
}

// taskIndex returns the position of id in s.tasks, or -1.
func (s *Store) taskIndex(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// siblings returns indexes into s.tasks of the tasks under parentID, sorted
// by order, skipping exclude.
func (s *Store) siblings(parentID, exclude string) []int {
	var idx []int
	for i := range s.tasks {
		if s.tasks[i].ParentID == parentID && s.tasks[i].ID != exclude {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return s.tasks[idx[a]].Order < s.tasks[idx[b]].Order
	})
	return idx
}

// isSelfOrDescendant walks up from id and reports whether it reaches
// ancestor. The walk is bounded so corrupt data with a cycle terminates.
func (s *Store) isSelfOrDescendant(id, ancestor string) bool {
	cur := id
	for steps := 0; cur != "" && steps <= len(s.tasks); steps++ {
		if cur == ancestor {
			return true
		}
		i := s.taskIndex(cur)
		if i < 0 {
			return false
		}
		cur = s.tasks[i].ParentID
	}
	return false
}

// descendantIDs returns the transitive children of id, excluding id.
func (s *Store) descendantIDs(id string) map[string]struct{} {
	children := make(map[string][]string)
	for _, t := range s.tasks {
		if t.ParentID != "" {
			children[t.ParentID] = append(children[t.ParentID], t.ID)
		}
	}
	out := make(map[string]struct{})
	queue := append([]string(nil), children[id]...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, seen := out[cur]; seen || cur == id {
			continue
		}
		out[cur] = struct{}{}
		queue = append(queue, children[cur]...)
	}
	return out
}

// knownTags filters ids to existing tags, dropping duplicates.
func (s *Store) knownTags(ids []string) []string {
	out := []string{}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] || s.tagIndex(id) < 0 {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
