package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/chetan-code/taskrooms/internal/access"
	"github.com/chetan-code/taskrooms/internal/models"
	"github.com/chetan-code/taskrooms/internal/repository"
	"github.com/go-chi/chi/v5"
)

// parseDueDate validates the optional due_date form field before
// anything touches the store. Empty is fine, garbage is not.
func parseDueDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, errors.New("due_date must be YYYY-MM-DD")
	}
	return &t, nil
}

// RoomHandler renders the task list. Only the owner and members get in;
// anyone else is bounced to the join flow.
func (h *Handler) RoomHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := CurrentUser(r)
	if !ok {
		HomeRedirect(w, r)
		return
	}
	roomID, err := strconv.Atoi(chi.URLParam(r, "roomID"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	room, err := h.rooms.ByID(roomID)
	if errors.Is(err, repository.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "Failed to load room", http.StatusInternalServerError)
		return
	}

	level, err := h.access.Level(room, claims.UserID)
	if err != nil {
		http.Error(w, "Failed to load room", http.StatusInternalServerError)
		return
	}
	if level == access.LevelNone {
		http.Redirect(w, r, "/rooms/"+strconv.Itoa(roomID)+"/join", http.StatusSeeOther)
		return
	}

	tasks, err := h.tasks.ListByRoom(roomID)
	if err != nil {
		slog.Error("task_list_failed", "error", err, "room_id", roomID)
		http.Error(w, "Failed to load tasks", http.StatusInternalServerError)
		return
	}

	tmpl := template.Must(template.ParseFiles("templates/room.html"))
	tmpl.Execute(w, struct {
		Room  models.Room
		Tasks []models.Task
	}{Room: room, Tasks: tasks})
}

func (h *Handler) AddTaskHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := CurrentUser(r)
	if !ok {
		HomeRedirect(w, r)
		return
	}
	roomID, err := strconv.Atoi(chi.URLParam(r, "roomID"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if !h.requireRoomAccess(w, r, roomID, claims.UserID) {
		return
	}

	description := r.FormValue("description")
	if description == "" {
		http.Error(w, "Description is required", http.StatusBadRequest)
		return
	}
	dueDate, err := parseDueDate(r.FormValue("due_date"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	_, err = h.tasks.Create(roomID, description, dueDate)
	if err != nil {
		slog.Error("task_creation_failed", "error", err, "room_id", roomID)
		http.Error(w, "Failed to add task", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/rooms/"+strconv.Itoa(roomID), http.StatusSeeOther)
}

func (h *Handler) CompleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	h.mutateTask(w, r, h.tasks.Complete)
}

func (h *Handler) DeleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	h.mutateTask(w, r, h.tasks.Delete)
}

// mutateTask resolves the task, re-checks access to its parent room and
// then applies the mutation. Operating on a task by id alone would let
// any logged-in user touch any room's tasks.
func (h *Handler) mutateTask(w http.ResponseWriter, r *http.Request, op func(int) error) {
	claims, ok := CurrentUser(r)
	if !ok {
		HomeRedirect(w, r)
		return
	}
	taskID, err := strconv.Atoi(chi.URLParam(r, "taskID"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	task, err := h.tasks.ByID(taskID)
	if errors.Is(err, repository.ErrNotFound) {
		// missing task is a graceful redirect, not a fault
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		http.Error(w, "Failed to load task", http.StatusInternalServerError)
		return
	}

	if !h.requireRoomAccess(w, r, task.RoomID, claims.UserID) {
		return
	}

	err = op(taskID)
	if errors.Is(err, repository.ErrNotFound) {
		// deleted out from under us between lookup and mutation
		http.Redirect(w, r, "/rooms/"+strconv.Itoa(task.RoomID), http.StatusSeeOther)
		return
	}
	if err != nil {
		slog.Error("task_mutation_failed", "error", err, "task_id", taskID)
		http.Error(w, "Failed to update task", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/rooms/"+strconv.Itoa(task.RoomID), http.StatusSeeOther)
}

// requireRoomAccess writes the response itself when access is missing
// and reports whether the caller may proceed.
func (h *Handler) requireRoomAccess(w http.ResponseWriter, r *http.Request, roomID, userID int) bool {
	level, err := h.access.LevelByID(roomID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		http.NotFound(w, r)
		return false
	}
	if err != nil {
		http.Error(w, "Failed to check access", http.StatusInternalServerError)
		return false
	}
	if level == access.LevelNone {
		http.Redirect(w, r, "/rooms/"+strconv.Itoa(roomID)+"/join", http.StatusSeeOther)
		return false
	}
	return true
}
