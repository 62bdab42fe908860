package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/sweetshop/internal/session"
)

type credentialsPage struct {
	PageData
	Name  string
	Email string
}

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	if GetProvider(r.Context()).Snapshot().State() == session.Authenticated {
		http.Redirect(w, r, session.DashboardPath, http.StatusSeeOther)
		return
	}
	s.Templates.Render(w, "login.html", &credentialsPage{PageData: newPageData("Login", nil)})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	page := &credentialsPage{PageData: newPageData("Login", nil), Email: email}

	if email == "" || password == "" {
		page.Error = "Email and password are required"
		s.Templates.Render(w, "login.html", page)
		return
	}

	err := GetProvider(r.Context()).Login(r.Context(), email, password)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		slog.Warn("login failed", "email", email, "remote", r.RemoteAddr, "error", err)
		page.Error = credentialMessage(err, "Login failed")
		s.Templates.Render(w, "login.html", page)
		return
	}

	http.Redirect(w, r, session.DashboardPath, http.StatusSeeOther)
}

// RegisterPage handles GET /register.
func (s *Server) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if GetProvider(r.Context()).Snapshot().State() == session.Authenticated {
		http.Redirect(w, r, session.DashboardPath, http.StatusSeeOther)
		return
	}
	s.Templates.Render(w, "register.html", &credentialsPage{PageData: newPageData("Create Account", nil)})
}

// RegisterSubmit handles POST /register. New accounts always get the user
// role.
func (s *Server) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	page := &credentialsPage{PageData: newPageData("Create Account", nil), Name: name, Email: email}

	if name == "" || email == "" || password == "" {
		page.Error = "All fields are required"
		s.Templates.Render(w, "register.html", page)
		return
	}
	if password != confirm {
		page.Error = "Passwords do not match"
		s.Templates.Render(w, "register.html", page)
		return
	}

	err := GetProvider(r.Context()).Register(r.Context(), name, email, password, "")
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		slog.Warn("registration failed", "email", email, "remote", r.RemoteAddr, "error", err)
		page.Error = credentialMessage(err, "Registration failed")
		s.Templates.Render(w, "register.html", page)
		return
	}

	http.Redirect(w, r, session.DashboardPath, http.StatusSeeOther)
}

// Logout handles POST /logout.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	GetProvider(r.Context()).Logout()
	http.Redirect(w, r, session.LoginPath, http.StatusSeeOther)
}

func credentialMessage(err error, fallback string) string {
	var cerr *session.CredentialError
	if errors.As(err, &cerr) && cerr.Message != "" {
		return cerr.Message
	}
	return fallback
}
