package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/madhava-poojari/learnsphere/internal/models"
	"github.com/madhava-poojari/learnsphere/internal/store"
	"github.com/madhava-poojari/learnsphere/internal/utils"
)

type ctxKey string

const ctxUserKey ctxKey = "currentUser"

const (
	ViewerHeader = "X-Viewer-ID"
	ViewerCookie = "viewer_id"
)

// Deny writes a refusal. JSONDeny is used by the API; the web layer renders
// an HTML error page instead.
type Deny func(w http.ResponseWriter, r *http.Request, status int, message string)

func JSONDeny(w http.ResponseWriter, r *http.Request, status int, message string) {
	utils.WriteJSONResponse(w, status, false, message, nil, nil)
}

func GetUserFromCtx(ctx context.Context) *models.User {
	if u, ok := ctx.Value(ctxUserKey).(*models.User); ok {
		return u
	}
	return nil
}

// WithUser returns ctx carrying u as the current viewer.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxUserKey, u)
}

// viewerID picks the header, then the cookie, then the configured default.
func viewerID(r *http.Request, defaultID string) string {
	if id := strings.TrimSpace(r.Header.Get(ViewerHeader)); id != "" {
		return id
	}
	if c, err := r.Cookie(ViewerCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return defaultID
}

// ViewerMiddleware loads the acting user, ensures it is active, and sets it in
// context. There is no login; the viewer is whoever the request names.
func ViewerMiddleware(s store.Repository, defaultID string, deny Deny) func(http.Handler) http.Handler {
	if deny == nil {
		deny = JSONDeny
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := viewerID(r, defaultID)
			if id == "" {
				deny(w, r, http.StatusUnauthorized, "no viewer selected")
				return
			}
			u, err := s.GetUserByID(r.Context(), id)
			if errors.Is(err, store.ErrNotFound) {
				deny(w, r, http.StatusUnauthorized, "unknown viewer")
				return
			}
			if err != nil {
				deny(w, r, http.StatusInternalServerError, "could not load viewer")
				return
			}
			if !u.Active {
				deny(w, r, http.StatusForbidden, "account disabled")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// RoleMiddleware allows multiple allowed roles; usage: RoleMiddleware(deny, models.RoleAdmin)
func RoleMiddleware(deny Deny, allowedRoles ...models.Role) func(http.Handler) http.Handler {
	if deny == nil {
		deny = JSONDeny
	}
	set := map[models.Role]struct{}{}
	for _, r := range allowedRoles {
		set[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := GetUserFromCtx(r.Context())
			if u == nil {
				deny(w, r, http.StatusUnauthorized, "unauthorized")
				return
			}
			if _, ok := set[u.Role]; !ok {
				deny(w, r, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
