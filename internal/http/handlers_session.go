package http

import (
	"net/http"

	"financeflow/internal/core"
	applog "financeflow/internal/log"
)

type sessionJSON struct {
	Authenticated bool   `json:"authenticated"`
	User          string `json:"user,omitempty"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if resp := ParseBodyOrFail(p); resp != nil {
		resp.Write(w)
		return
	}

	user, err := s.ledger.Login(r.Context(), p.Get("email"))
	if err != nil {
		s.writeMutationError(w, r, "Failed to log in", err)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "User logged in", applog.FieldUserEmail, user)

	NewJSONResponse().
		Data(sessionJSON{Authenticated: true, User: user}).
		NotifySuccess("Welcome back").
		Write(w)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if resp := ParseBodyOrFail(p); resp != nil {
		resp.Write(w)
		return
	}

	user, err := s.ledger.Signup(r.Context(), core.User{
		Email:    p.Get("email"),
		Name:     p.Get("name"),
		Password: p.Raw("password"),
	})
	if err != nil {
		s.writeMutationError(w, r, "Failed to sign up", err)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "User signed up", applog.FieldUserEmail, user)

	NewJSONResponse().
		Status(http.StatusCreated).
		Data(sessionJSON{Authenticated: true, User: user}).
		NotifySuccess("Account created").
		Write(w)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	user, _, _ := s.ledger.CurrentUser(r.Context())
	if err := s.ledger.Logout(r.Context()); err != nil {
		s.writeMutationError(w, r, "Failed to log out", err)
		return
	}
	s.dropDraft(user)

	NewJSONResponse().
		Data(sessionJSON{Authenticated: false}).
		NotifySuccess("Signed out").
		Write(w)
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok, err := s.ledger.CurrentUser(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to read current user", applog.FieldError, err)
		InternalServerError("Unable to read session").Write(w)
		return
	}
	NewJSONResponse().Data(sessionJSON{Authenticated: ok, User: user}).Write(w)
}

// writeMutationError answers 422 for rejected input and 500 otherwise.
func (s *Server) writeMutationError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if isValidationError(err) {
		UnprocessableEntityError(validationMessage(err)).Write(w)
		return
	}
	applog.FromContext(r.Context()).ErrorContext(r.Context(), msg,
		applog.FieldError, err,
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	InternalServerError(msg).Write(w)
}
