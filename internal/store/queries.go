package store

import (
	"github.com/tgienger/kanban/internal/models"
)

// Tasks returns copies of all tasks in storage order.
func (s *Store) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(models.Task) bool { return true })
}

// Tags returns copies of all tags.
func (s *Store) Tags() []models.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Tag{}, s.tags...)
}

// CurrentUser returns the session user, or nil when signed out.
func (s *Store) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// GetTaskByID returns the task with the given id.
func (s *Store) GetTaskByID(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.taskIndex(id)
	if i < 0 {
		return models.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// GetTasksByParentID returns the children of parentID ("" for root tasks)
// sorted by order.
func (s *Store) GetTasksByParentID(parentID string) []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.siblings(parentID, "")
	out := make([]models.Task, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.tasks[i].Clone())
	}
	return out
}

// GetTasksByStatus returns every task, at any depth, with the given status.
func (s *Store) GetTasksByStatus(status models.Status) []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(t models.Task) bool { return t.Status == status })
}

// GetTasksByTag returns every task carrying the tag.
func (s *Store) GetTasksByTag(tagID string) []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(t models.Task) bool { return t.HasTag(tagID) })
}

// GetTagsForTask resolves the task's tag ids, in tag collection order.
func (s *Store) GetTagsForTask(taskID string) []models.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.taskIndex(taskID)
	if i < 0 || len(s.tasks[i].TagIDs) == 0 {
		return []models.Tag{}
	}
	out := []models.Tag{}
	for _, tag := range s.tags {
		if s.tasks[i].HasTag(tag.ID) {
			out = append(out, tag)
		}
	}
	return out
}

// Descendants returns the transitive subtasks of id in pre-order.
func (s *Store) Descendants(id string) []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Task
	s.walk(id, 0, func(n models.TreeNode) { out = append(out, n.Task) })
	return out
}

// Tree returns the subtree under rootID ("" for the whole board) as a
// depth-annotated pre-order walk. Children come in sibling order.
func (s *Store) Tree(rootID string) []models.TreeNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.TreeNode
	s.walk(rootID, 0, func(n models.TreeNode) { out = append(out, n) })
	return out
}

func (s *Store) walk(parentID string, depth int, visit func(models.TreeNode)) {
	if depth > len(s.tasks) {
		return
	}
	for _, i := range s.siblings(parentID, "") {
		t := s.tasks[i]
		children := s.siblings(t.ID, "")
		visit(models.TreeNode{Task: t.Clone(), Depth: depth, HasChildren: len(children) > 0})
		s.walk(t.ID, depth+1, visit)
	}
}

func (s *Store) filter(keep func(models.Task) bool) []models.Task {
	out := []models.Task{}
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}
