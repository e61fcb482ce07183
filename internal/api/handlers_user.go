package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/api/respond"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/auth"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/services"
)

type UserHandler struct {
	svc *services.UserService
	log zerolog.Logger
}

func NewUserHandler(svc *services.UserService, log zerolog.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: log}
}

type UpsertUserRequest struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
	Status   string `json:"status"`
}

// UpsertUser handles POST /api/users, called on every sign-in.
// With auth enabled only admins may set status.
func (h *UserHandler) UpsertUser(w http.ResponseWriter, r *http.Request) {
	var req UpsertUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if id := auth.FromContext(r.Context()); id != nil {
		if req.UserID == "" {
			req.UserID = id.UserID
		}
		if err := auth.CheckOwner(id, req.UserID); err != nil {
			respond.WriteError(w, http.StatusForbidden, err.Error())
			return
		}
		if req.Status != "" && !id.IsAdmin() {
			respond.WriteError(w, http.StatusForbidden, "only admins may set status")
			return
		}
	}

	u, err := h.svc.Upsert(r.Context(), model.User{
		UserID:   req.UserID,
		Email:    req.Email,
		Name:     req.Name,
		ImageURL: req.ImageURL,
		Status:   req.Status,
	})
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to save user")
		return
	}
	respond.WriteJSON(w, http.StatusOK, u)
}

// GetUser handles GET /api/users/{userId}.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if err := auth.CheckOwner(auth.FromContext(r.Context()), userID); err != nil {
		respond.WriteError(w, http.StatusForbidden, err.Error())
		return
	}
	u, err := h.svc.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to load user")
		return
	}
	respond.WriteJSON(w, http.StatusOK, u)
}

// ListUsers handles GET /api/admin/users.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset, err := pageParams(q.Get("limit"), q.Get("offset"))
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	users, total, err := h.svc.List(r.Context(), model.ListUsersRequest{Limit: limit, Offset: offset})
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list users")
		return
	}
	if users == nil {
		users = []*model.User{}
	}
	limit, offset = model.ClampPage(limit, offset)
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"users":  users,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}
