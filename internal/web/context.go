package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/datamanager/internal/core"
	"github.com/JonMunkholm/datamanager/internal/session"
)

type workspaceKey struct{}

func contextWithWorkspace(ctx context.Context, ws *session.Workspace) context.Context {
	return context.WithValue(ctx, workspaceKey{}, ws)
}

// workspaceFrom returns the request's workspace set by withSession.
func workspaceFrom(ctx context.Context) *session.Workspace {
	ws, _ := ctx.Value(workspaceKey{}).(*session.Workspace)
	return ws
}

// withSession resolves the session cookie to a workspace, issuing a new
// session id when the cookie is missing or malformed.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := s.cfg.Session.CookieName

		var id string
		if c, err := r.Cookie(name); err == nil && session.ValidID(c.Value) {
			id = c.Value
		} else {
			id = session.NewID()
			http.SetCookie(w, &http.Cookie{
				Name:     name,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.cfg.Session.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := core.ContextWithSessionID(r.Context(), id)
		ws, err := s.sessions.Get(ctx, id)
		if err != nil {
			respondError(w, r, err, statusFor(err))
			return
		}

		next.ServeHTTP(w, r.WithContext(contextWithWorkspace(ctx, ws)))
	})
}
