// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Broadside Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/broadside-game/broadside/internal/account"
	"github.com/broadside-game/broadside/pkg/errutil"
)

// userPayload is the wire representation of a user. The password hash is
// already cleared by the account layer and is never serialized.
type userPayload struct {
	ID         int64   `json:"id"`
	Username   string  `json:"username"`
	Email      string  `json:"email"`
	Rank       int32   `json:"rank"`
	AvatarLink *string `json:"avatarLink,omitempty"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	user, err := s.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		s.recordSignin("failure")
		s.writeError(w, r, err)
		return
	}
	s.recordSignin("success")

	// A fresh id on every sign-in; an id presented by the client before
	// authenticating never names the new session.
	contextID := account.NewContextID()
	if err := s.sessions.Open(r.Context(), contextID, user); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.setSessionCookie(w, contextID)
	s.writeUser(w, r, http.StatusOK, user)
}

func (s *Server) handleSignout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Close(r.Context(), s.sessionContextID(r)); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.clearSessionCookie(w)
	s.recordRequest(r, http.StatusNoContent)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.sessions.CurrentUser(r.Context(), s.sessionContextID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeUser(w, r, http.StatusOK, user)
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.sessions.CurrentUser(r.Context(), s.sessionContextID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req updateRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	updated, err := s.users.UpdateProfile(r.Context(), user.ID, account.ProfilePatch{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeUser(w, r, http.StatusOK, updated)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	user, err := s.users.Register(r.Context(), account.NewUser{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.metrics != nil {
		s.metrics.SignupsTotal.Inc()
	}

	// Registration opens a session immediately, like a first sign-in,
	// under a freshly minted id.
	contextID := account.NewContextID()
	if err := s.sessions.Open(r.Context(), contextID, user); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.setSessionCookie(w, contextID)
	s.writeUser(w, r, http.StatusCreated, user)
}

func (s *Server) handleScoreboard(w http.ResponseWriter, r *http.Request) {
	ascending, _ := strconv.ParseBool(r.URL.Query().Get("asc"))

	users, err := s.users.GetByRating(r.Context(), ascending)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	payload := make([]userPayload, len(users))
	for i, u := range users {
		payload[i] = toPayload(u)
	}
	s.writeJSON(w, http.StatusOK, payload)
}

// sessionContextID returns the context id from the session cookie, or a
// fresh (necessarily unbound) id when the client has none yet. Handlers
// that open sessions mint their own ids instead of calling this.
func (s *Server) sessionContextID(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return account.NewContextID()
}

func (s *Server) setSessionCookie(w http.ResponseWriter, contextID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    contextID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		s.recordRequest(r, http.StatusBadRequest)
		s.writeJSON(w, http.StatusBadRequest, errorPayload{
			Code:    "invalid_json",
			Message: "request body is not valid JSON",
		})
		return false
	}
	return true
}

// statusFor maps a domain failure kind to an HTTP status.
func statusFor(kind account.Kind) int {
	switch kind {
	case account.KindNotFound:
		return http.StatusNotFound
	case account.KindInvalidCredentials:
		return http.StatusUnauthorized
	case account.KindConflict:
		return http.StatusUnprocessableEntity
	case account.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := account.KindOf(err)
	status := statusFor(kind)

	if kind == account.KindForbidden && s.metrics != nil {
		s.metrics.SessionRejections.Inc()
	}
	if status == http.StatusInternalServerError {
		errutil.LogError(s.logger, "request failed", err)
	}

	msg := kind.String()
	if status != http.StatusInternalServerError {
		// Domain failures carry a safe, human-readable message.
		msg = rootMessage(err)
	}

	s.recordRequest(r, status)
	s.writeJSON(w, status, errorPayload{Code: kind.String(), Message: msg})
}

// rootMessage returns the innermost error message. Domain failures
// bottom out at a sentinel, so only its safe text reaches the client.
func rootMessage(err error) string {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err.Error()
		}
		err = unwrapped
	}
}

func (s *Server) writeUser(w http.ResponseWriter, r *http.Request, status int, u *account.User) {
	s.recordRequest(r, status)
	s.writeJSON(w, status, toPayload(u))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		errutil.LogError(s.logger, "response encode failed", err)
	}
}

func (s *Server) recordSignin(outcome string) {
	if s.metrics != nil {
		s.metrics.SigninsTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *Server) recordRequest(r *http.Request, status int) {
	if s.metrics != nil {
		s.metrics.RequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(status)).Inc()
	}
}

func toPayload(u *account.User) userPayload {
	return userPayload{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Rank:       u.Rank,
		AvatarLink: u.AvatarLink,
	}
}
