package http

import (
	"errors"
	"net/http"
	"strings"

	"finanze/internal/auth"
	"finanze/internal/log"
)

// authPageData feeds the login and register templates.
type authPageData struct {
	Username string
	Error    string
}

func (s *Server) renderAuthPage(w http.ResponseWriter, r *http.Request, name string, status int, data authPageData) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Auth template execution failed", "error", err, "template", name)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderAuthPage(w, r, "login.html", http.StatusOK, authPageData{})
	case http.MethodPost:
		s.handleLoginSubmit(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderAuthPage(w, r, "login.html", http.StatusBadRequest, authPageData{
			Error: "Formato richiesta non valido",
		})
		return
	}

	username := strings.TrimSpace(r.Form.Get("username"))
	password := r.Form.Get("password")

	token, err := s.auth.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.renderAuthPage(w, r, "login.html", http.StatusUnauthorized, authPageData{
				Username: username,
				Error:    "Credenziali non valide",
			})
			return
		}
		s.logger.ErrorContext(r.Context(), "Login failed",
			log.FieldError, err, log.FieldOwner, username)
		s.renderAuthPage(w, r, "login.html", http.StatusInternalServerError, authPageData{
			Username: username,
			Error:    "Errore interno, riprova tra poco",
		})
		return
	}

	s.logger.InfoContext(r.Context(), "User logged in", log.FieldOwner, username)
	auth.SetSessionCookie(w, token, r.TLS != nil)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderAuthPage(w, r, "register.html", http.StatusOK, authPageData{})
	case http.MethodPost:
		s.handleRegisterSubmit(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderAuthPage(w, r, "register.html", http.StatusBadRequest, authPageData{
			Error: "Formato richiesta non valido",
		})
		return
	}

	username := strings.TrimSpace(r.Form.Get("username"))
	password := r.Form.Get("password")

	if _, err := s.auth.Register(r.Context(), username, password); err != nil {
		var msg string
		status := http.StatusUnprocessableEntity
		switch {
		case errors.Is(err, auth.ErrBadUsername):
			msg = "Il nome utente deve avere 3-64 caratteri: minuscole, cifre, trattino basso"
		case errors.Is(err, auth.ErrBadPassword):
			msg = "La password deve avere tra 8 e 72 caratteri"
		case errors.Is(err, auth.ErrUsernameTaken):
			msg = "Nome utente già in uso"
			status = http.StatusConflict
		default:
			s.logger.ErrorContext(r.Context(), "Registration failed",
				log.FieldError, err, log.FieldOwner, username)
			msg = "Errore interno, riprova tra poco"
			status = http.StatusInternalServerError
		}
		s.renderAuthPage(w, r, "register.html", status, authPageData{
			Username: username,
			Error:    msg,
		})
		return
	}

	// Fresh accounts go straight to the dashboard.
	token, err := s.auth.Login(r.Context(), username, password)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Post-registration login failed",
			log.FieldError, err, log.FieldOwner, username)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	s.logger.InfoContext(r.Context(), "User registered", log.FieldOwner, username)
	auth.SetSessionCookie(w, token, r.TLS != nil)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	auth.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
