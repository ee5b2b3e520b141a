package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/thanhhle/salesops-management/internal/transport"
	"github.com/thanhhle/salesops-management/pkg/logger"
)

type ctxKey string

// ContextUserKey holds the authenticated user's claims in the request context.
const ContextUserKey ctxKey = "current_user"

// CurrentUser returns the claims stored by AuthMiddleware, if any.
func CurrentUser(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ContextUserKey).(*Claims)
	return claims, ok
}

type Handler struct {
	*transport.BaseHandler
	Service AuthService
}

func NewHandler(svc AuthService) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.Service.Authenticate(dto)
	if err != nil {
		h.Logger.Error("authentication failed", "username", dto.Username, "error", err)

		if _, ok := err.(ValidationError); ok {
			h.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.Service.RefreshTokens(dto.RefreshToken)
	if err != nil {
		h.Logger.Error("token refresh failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// Logout validates the presented token and returns 204. Tokens are
// stateless, so there is nothing to revoke server-side.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	if _, err := h.Service.ValidateAccessToken(token); err != nil {
		h.WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := CurrentUser(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	var dto ChangePasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.ChangePassword(claims.UserID, dto); err != nil {
		h.Logger.Error("password change failed", "user_id", claims.UserID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AuthMiddleware validates the bearer token and stores its claims in the
// request context for downstream handlers.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.Logger.Warn("token validation failed", "error", err)
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ContextUserKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route subtree to the given roles. It assumes
// AuthMiddleware already ran.
func (h *Handler) RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := CurrentUser(r.Context())
			if !ok {
				h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
				return
			}
			if _, ok := allowed[claims.Role]; !ok {
				h.WriteError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
