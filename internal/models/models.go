package models

import "time"

// Task represents a single task on the board. Subtasks are ordinary tasks
// whose ParentID points at another task.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	UserID      string     `json:"userId"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority,omitempty"`
	TagIDs      []string   `json:"tagIds"`
	ParentID    string     `json:"parentId,omitempty"` // empty for root tasks
	Order       int        `json:"order"`              // position within the sibling group
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// IsRoot reports whether the task has no parent.
func (t Task) IsRoot() bool {
	return t.ParentID == ""
}

// HasTag reports whether the task references the given tag.
func (t Task) HasTag(tagID string) bool {
	for _, id := range t.TagIDs {
		if id == tagID {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices or pointers with t.
func (t Task) Clone() Task {
	c := t
	c.TagIDs = append([]string{}, t.TagIDs...)
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.CompletedAt != nil {
		d := *t.CompletedAt
		c.CompletedAt = &d
	}
	return c
}

// Tag represents a label that can be applied to tasks
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// User is the signed-in account as kept in the session. It never carries a
// password.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// Session is what an identity provider hands back on a successful login or
// registration.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// TreeNode is a task annotated with its position in the hierarchy, used
// when rendering nested views.
type TreeNode struct {
	Task        Task
	Depth       int
	HasChildren bool
}
