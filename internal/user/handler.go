package user

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/thanhhle/salesops-management/internal/auth"
	"github.com/thanhhle/salesops-management/internal/transport"
	"github.com/thanhhle/salesops-management/pkg/logger"
)

type ServiceAPI interface {
	Create(actor *auth.Claims, dto CreateUserDTO) (*User, error)
	Update(actor *auth.Claims, userID string, dto UpdateUserDTO) (*User, error)
	Delete(actor *auth.Claims, userID string) error
	GetByID(actor *auth.Claims, userID string) (*User, error)
	List(actor *auth.Claims) ([]User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CurrentUser(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	var dto CreateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.Create(claims, dto)
	if err != nil {
		h.Logger.Error("create user failed", "actor", claims.UserID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CurrentUser(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	userID := chi.URLParam(r, "id")

	var dto UpdateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.Update(claims, userID, dto)
	if err != nil {
		h.Logger.Error("update user failed", "actor", claims.UserID, "target", userID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CurrentUser(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	userID := chi.URLParam(r, "id")

	if err := h.Service.Delete(claims, userID); err != nil {
		h.Logger.Error("delete user failed", "actor", claims.UserID, "target", userID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CurrentUser(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	userID := chi.URLParam(r, "id")
	if userID == "me" {
		userID = claims.UserID
	}

	u, err := h.Service.GetByID(claims, userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CurrentUser(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	users, err := h.Service.List(claims)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, users)
}
