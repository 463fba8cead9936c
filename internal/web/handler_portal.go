package web

import (
	"encoding/json"
	"net/http"

	"github.com/vbonduro/solienne/internal/portal"
)

const sessionCookie = "solienne_session"

func sessionID(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// session returns the caller's session, creating one and setting the cookie
// when the request carries no live session.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *portal.Session {
	id, sess := s.sessions.Get(sessionID(r))
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

// handlePortal renders the caller's current view. A browser without a session
// sees the unready view; its session starts with the first posted signals.
func (s *Server) handlePortal(w http.ResponseWriter, r *http.Request) {
	view := portal.StateView(portal.StateUnready)
	if sess, ok := s.sessions.Lookup(sessionID(r)); ok {
		view = sess.View()
	}

	if err := s.renderPage(w,
		view,
		"base.html", "pages/portal.html", "partials/portal_body.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

// handleSignals applies the wallet provider's current observables to the
// caller's session.
func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	var sig portal.Signals
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&sig); err != nil {
		http.Error(w, "invalid signals", http.StatusBadRequest)
		return
	}

	sess := s.session(w, r)
	s.writeView(w, r, sess.Apply(r.Context(), sig))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	view := portal.StateView(portal.StateUnauthenticated)
	id := sessionID(r)
	if sess, ok := s.sessions.Lookup(id); ok {
		view = sess.Logout()
		s.sessions.Delete(id)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.writeView(w, r, view)
}

// writeView answers HTMX requests with the page body fragment and everything
// else with JSON.
func (s *Server) writeView(w http.ResponseWriter, r *http.Request, view portal.View) {
	if isHTMX(r) {
		if err := s.renderPartial(w, "partials/portal_body.html", "portal_body", view); err != nil {
			s.logger.Error("render partial failed", "error", err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(view); err != nil {
		s.logger.Error("encode view failed", "error", err)
	}
}
