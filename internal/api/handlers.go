package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/store"
)

type taskRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      models.Status   `json:"status"`
	Priority    models.Priority `json:"priority"`
	TagIDs      []string        `json:"tagIds"`
	ParentID    string          `json:"parentId"`
	DueDate     *time.Time      `json:"dueDate"`
}

type taskPatch struct {
	Title        *string          `json:"title"`
	Description  *string          `json:"description"`
	Status       *models.Status   `json:"status"`
	Priority     *models.Priority `json:"priority"`
	TagIDs       *[]string        `json:"tagIds"`
	DueDate      *time.Time       `json:"dueDate"`
	ClearDueDate bool             `json:"clearDueDate"`
}

type moveRequest struct {
	ParentID string `json:"parentId"`
	Index    int    `json:"index"`
}

type tagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type tagPatch struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token,omitempty"`
}

// listTasks filters by ?status=, ?tag= or ?parentId= (empty for root
// tasks). Without a filter every task is returned.
func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch {
	case q.Has("status"):
		status, err := models.ParseStatus(q.Get("status"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, s.store.GetTasksByStatus(status))
	case q.Has("tag"):
		writeJSON(w, http.StatusOK, s.store.GetTasksByTag(q.Get("tag")))
	case q.Has("parentId"):
		writeJSON(w, http.StatusOK, s.store.GetTasksByParentID(q.Get("parentId")))
	default:
		writeJSON(w, http.StatusOK, s.store.Tasks())
	}
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if !decode(w, r, &req) {
		return
	}
	var created *models.Task
	msg := s.mutate(func() {
		created = s.store.AddTask(r.Context(), store.NewTask{
			Title:       req.Title,
			Description: req.Description,
			Status:      req.Status,
			Priority:    req.Priority,
			TagIDs:      req.TagIDs,
			ParentID:    req.ParentID,
			DueDate:     req.DueDate,
		})
	})
	if created == nil {
		storeFailure(w, msg)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	task, ok := s.store.GetTaskByID(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req taskPatch
	if !decode(w, r, &req) {
		return
	}
	if _, ok := s.store.GetTaskByID(id); !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	msg := s.mutate(func() {
		s.store.UpdateTask(r.Context(), id, store.TaskUpdate{
			Title:        req.Title,
			Description:  req.Description,
			Status:       req.Status,
			Priority:     req.Priority,
			TagIDs:       req.TagIDs,
			DueDate:      req.DueDate,
			ClearDueDate: req.ClearDueDate,
		})
	})
	if msg != "" {
		storeFailure(w, msg)
		return
	}
	s.getTask(w, r)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if msg := s.mutate(func() { s.store.DeleteTask(r.Context(), id) }); msg != "" {
		storeFailure(w, msg)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) moveTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req moveRequest
	if !decode(w, r, &req) {
		return
	}
	if _, ok := s.store.GetTaskByID(id); !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if msg := s.mutate(func() { s.store.MoveTask(r.Context(), id, req.ParentID, req.Index) }); msg != "" {
		storeFailure(w, msg)
		return
	}
	s.getTask(w, r)
}

func (s *Server) toggleTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := s.store.GetTaskByID(id); !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if msg := s.mutate(func() { s.store.ToggleTaskStatus(r.Context(), id) }); msg != "" {
		storeFailure(w, msg)
		return
	}
	s.getTask(w, r)
}

func (s *Server) subtasks(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := s.store.GetTaskByID(id); !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, s.store.GetTasksByParentID(id))
}

func (s *Server) tagsForTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := s.store.GetTaskByID(id); !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, s.store.GetTagsForTask(id))
}

type treeNode struct {
	models.Task
	Depth       int  `json:"depth"`
	HasChildren bool `json:"hasChildren"`
}

func (s *Server) tree(w http.ResponseWriter, r *http.Request) {
	nodes := s.store.Tree(r.URL.Query().Get("root"))
	out := make([]treeNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, treeNode{Task: n.Task, Depth: n.Depth, HasChildren: n.HasChildren})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Tags())
}

func (s *Server) createTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if !decode(w, r, &req) {
		return
	}
	var created *models.Tag
	msg := s.mutate(func() {
		created = s.store.AddTag(r.Context(), store.NewTag{Name: req.Name, Color: req.Color})
	})
	if created == nil {
		storeFailure(w, msg)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateTag(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req tagPatch
	if !decode(w, r, &req) {
		return
	}
	if !s.hasTag(id) {
		writeError(w, http.StatusNotFound, "tag not found")
		return
	}
	if msg := s.mutate(func() { s.store.UpdateTag(r.Context(), id, store.TagUpdate{Name: req.Name, Color: req.Color}) }); msg != "" {
		storeFailure(w, msg)
		return
	}
	for _, tag := range s.store.Tags() {
		if tag.ID == id {
			writeJSON(w, http.StatusOK, tag)
			return
		}
	}
	writeError(w, http.StatusNotFound, "tag not found")
}

func (s *Server) deleteTag(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if msg := s.mutate(func() { s.store.DeleteTag(r.Context(), id) }); msg != "" {
		storeFailure(w, msg)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) hasTag(id string) bool {
	for _, tag := range s.store.Tags() {
		if tag.ID == id {
			return true
		}
	}
	return false
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(w, r, &req) {
		return
	}
	var ok bool
	msg := s.mutate(func() { ok = s.store.Login(r.Context(), req.Email, req.Password) })
	if !ok {
		writeError(w, http.StatusUnauthorized, msg)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{User: s.store.CurrentUser(), Token: s.store.Token()})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(w, r, &req) {
		return
	}
	var ok bool
	msg := s.mutate(func() { ok = s.store.Register(r.Context(), req.Username, req.Email, req.Password) })
	if !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{User: s.store.CurrentUser(), Token: s.store.Token()})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.mutate(func() { s.store.Logout(r.Context()) })
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	user := s.store.CurrentUser()
	if user == nil {
		writeError(w, http.StatusNotFound, "not signed in")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{User: user})
}
