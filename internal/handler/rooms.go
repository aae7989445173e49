package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/chetan-code/taskrooms/internal/access"
	"github.com/chetan-code/taskrooms/internal/credential"
	"github.com/chetan-code/taskrooms/internal/models"
	"github.com/chetan-code/taskrooms/internal/repository"
	"github.com/go-chi/chi/v5"
)

// UserStore, RoomStore and TaskStore are the repository surfaces the
// handlers consume, narrowed to interfaces so handler tests can run on
// in-memory stores - the same pattern the access controller uses.
type UserStore interface {
	Create(username, email, passwordHash string) (models.User, error)
	ByID(id int) (models.User, error)
	ByEmail(email string) (models.User, error)
	ByUsername(username string) (models.User, error)
	UpsertByEmail(username, email string) (models.User, error)
	UpdateProfile(id int, username, email, passwordHash string) error
}

type RoomStore interface {
	Create(title string, ownerID int, passwordHash *string) (models.Room, error)
	ByID(id int) (models.Room, error)
	ListByOwner(ownerID int) ([]models.Room, error)
	ListJoined(userID int) ([]models.Room, error)
	SearchByTitle(keyword string) ([]models.Room, error)
}

type TaskStore interface {
	Create(roomID int, description string, dueDate *time.Time) (models.Task, error)
	ByID(id int) (models.Task, error)
	Complete(id int) error
	Delete(id int) error
	ListByRoom(roomID int) ([]models.Task, error)
}

type Handler struct {
	users  UserStore
	rooms  RoomStore
	tasks  TaskStore
	access *access.Controller
}

func NewHandler(users UserStore, rooms RoomStore, tasks TaskStore,
	ctrl *access.Controller) *Handler {
	return &Handler{users: users, rooms: rooms, tasks: tasks, access: ctrl}
}

func HomeRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// renderError re-renders a form page with an error message.
func renderError(w http.ResponseWriter, page, msg string) {
	tmpl := template.Must(template.ParseFiles(page))
	tmpl.Execute(w, struct{ Error string }{Error: msg})
}

func (h *Handler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := CurrentUser(r)
	if !ok {
		HomeRedirect(w, r)
		return
	}

	owned, err := h.rooms.ListByOwner(claims.UserID)
	if err != nil {
		slog.Error("room_list_failed", "error", err, "user_id", claims.UserID)
		http.Error(w, "Failed to load rooms", http.StatusInternalServerError)
		return
	}
	joined, err := h.rooms.ListJoined(claims.UserID)
	if err != nil {
		slog.Error("room_list_failed", "error", err, "user_id", claims.UserID)
		http.Error(w, "Failed to load rooms", http.StatusInternalServerError)
		return
	}

	data := struct {
		Email  string
		Owned  []models.Room
		Joined []models.Room
	}{
		Email:  claims.Email,
		Owned:  owned,
		Joined: joined,
	}

	//load and render the template :
	tmpl := template.Must(template.ParseFiles("templates/index.html"))
	tmpl.Execute(w, data)
}

func (h *Handler) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := CurrentUser(r)
	if !ok {
		HomeRedirect(w, r)
		return
	}

	title := r.FormValue("title")
	if title == "" {
		http.Error(w, "Title is required", http.StatusBadRequest)
		return
	}

	// empty password means an open room, not an empty credential
	hash, err := credential.Set(r.FormValue("password"))
	if err != nil {
		http.Error(w, "Failed to create room", http.StatusInternalServerError)
		return
	}

	_, err = h.rooms.Create(title, claims.UserID, hash)
	if err != nil {
		slog.Error("room_creation_failed", "error", err, "user_id", claims.UserID)
		http.Error(w, "Failed to create room", http.StatusInternalServerError)
		return
	}

	//self redirection
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// CollaborateHandler is the join flow. A GET on an open room joins
// immediately; a GET on a guarded room renders the password prompt;
// a POST submits the password for verification.
func (h *Handler) CollaborateHandler(w http.ResponseWriter, r *http.Request) {
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

	// nil password = nothing submitted yet
	var password *string
	if r.Method == http.MethodPost {
		p := r.FormValue("password")
		password = &p
	}

	outcome, err := h.access.Authorize(roomID, claims.UserID, password)
	if err != nil {
		slog.Error("room_authorize_failed", "error", err,
			"room_id", roomID, "user_id", claims.UserID)
		http.Error(w, "Failed to join room", http.StatusInternalServerError)
		return
	}

	switch outcome {
	case access.Granted:
		http.Redirect(w, r, "/rooms/"+strconv.Itoa(roomID), http.StatusSeeOther)
	case access.Challenge:
		h.renderChallenge(w, roomID, "")
	case access.Denied:
		h.renderChallenge(w, roomID, "Invalid Credential")
	case access.NotFound:
		http.NotFound(w, r)
	}
}

func (h *Handler) renderChallenge(w http.ResponseWriter, roomID int, msg string) {
	room, err := h.rooms.ByID(roomID)
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, "Room not found", http.StatusNotFound)
		return
	}
	if err != nil {
		// storage fault, not a missing room
		slog.Error("room_load_failed", "error", err, "room_id", roomID)
		http.Error(w, "Failed to load room", http.StatusInternalServerError)
		return
	}
	tmpl := template.Must(template.ParseFiles("templates/collaborate_login.html"))
	tmpl.Execute(w, struct {
		Room  models.Room
		Error string
	}{Room: room, Error: msg})
}

func (h *Handler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")

	rooms, err := h.rooms.SearchByTitle(keyword)
	if err != nil {
		slog.Error("room_search_failed", "error", err, "keyword", keyword)
		http.Error(w, "Search failed", http.StatusInternalServerError)
		return
	}

	// show who created each room next to the result
	creators := make(map[int]string)
	for _, room := range rooms {
		owner, err := h.users.ByID(room.OwnerID)
		if err != nil {
			continue
		}
		creators[room.ID] = owner.Username
	}

	tmpl := template.Must(template.ParseFiles("templates/search_results.html"))
	tmpl.Execute(w, struct {
		Keyword  string
		Rooms    []models.Room
		Creators map[int]string
	}{Keyword: keyword, Rooms: rooms, Creators: creators})
}
