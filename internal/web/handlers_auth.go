package web

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"f1league-app/internal/auth"
	"f1league-app/internal/model"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if auth.IsAdmin(r.Context()) {
		http.Redirect(w, r, safeNext(r.URL.Query().Get("next")), http.StatusSeeOther)
		return
	}
	view := LoginView{
		BaseView: s.baseView(r, "Admin sign in", "login"),
		Next:     safeNext(r.URL.Query().Get("next")),
	}
	if !s.adminEnabled() {
		view.Error = "Admin access is not configured."
	}
	s.render(w, r, http.StatusOK, "login.html", view)
}

func (s *Server) handleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	next := safeNext(r.FormValue("next"))
	if !s.adminEnabled() || !auth.CheckPassword(s.opts.PasswordHash, r.FormValue("password")) {
		s.logger.Warn("Admin sign in rejected", "remote", r.RemoteAddr)
		view := LoginView{
			BaseView: s.baseView(r, "Admin sign in", "login"),
			Error:    "Wrong password.",
			Next:     next,
		}
		s.render(w, r, http.StatusUnauthorized, "login.html", view)
		return
	}
	if err := s.startSession(w, model.RoleAdmin); err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("Admin signed in", "remote", r.RemoteAddr)
	http.Redirect(w, r, withNotice(next, "logged_in"), http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	redirect(w, r, "/?notice=logged_out")
}

// handleDevLogin signs in without a password. Only routed in dev mode.
func (s *Server) handleDevLogin(w http.ResponseWriter, r *http.Request) {
	if s.opts.Tokens == nil {
		http.Error(w, "session signing is not configured", http.StatusServiceUnavailable)
		return
	}
	if err := s.startSession(w, model.RoleAdmin); err != nil {
		s.fail(w, r, err)
		return
	}
	redirect(w, r, "/?notice=logged_in")
}

func (s *Server) startSession(w http.ResponseWriter, role model.Role) error {
	token, err := s.opts.Tokens.Issue(role, s.opts.SessionTTL)
	if err != nil {
		return err
	}
	setSessionCookie(w, token, s.opts.SessionTTL, s.opts.SecureCookies)
	return nil
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return "/"
	}
	return u.Path
}

func withNotice(target, notice string) string {
	if strings.Contains(target, "?") {
		return target + "&notice=" + notice
	}
	return target + "?notice=" + notice
}

func setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(ttl),
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
