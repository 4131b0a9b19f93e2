package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/lifedesk/internal/server/auth"
	"github.com/dmitrijs2005/lifedesk/internal/server/models"
	"github.com/dmitrijs2005/lifedesk/internal/server/services"
)

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

type authResponse struct {
	User         userResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

func toAuthResponse(res *services.AuthResult) authResponse {
	return authResponse{
		User:         toUserResponse(res.User),
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /auth/signup.
func (s *Server) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, w, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	name, err := requireText("name", req.Name, maxNameLength)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	password, err := newPassword(req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.auth.Signup(r.Context(), name, email, password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, toAuthResponse(res))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, w, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	password, err := requirePassword(req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.auth.Login(r.Context(), email, password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toAuthResponse(res))
}

// Logout handles POST /auth/logout.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), principal(r).UserID); err != nil {
		s.writeError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "logged out")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Refresh handles POST /auth/refresh.
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, w, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.RefreshToken == "" {
		s.writeError(w, r, invalid("refreshToken is required"))
		return
	}

	token, exp, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, refreshResponse{AccessToken: token, ExpiresAt: exp})
}

// Me handles GET /auth/me.
func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	u, err := s.auth.Me(r.Context(), principal(r).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toUserResponse(u))
}

type passwordRequest struct {
	Password string `json:"password"`
}

// DeleteAccount handles DELETE /auth/me.
func (s *Server) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeJSON(r, w, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	password, err := requirePassword(req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.auth.DeleteAccount(r.Context(), principal(r).UserID, password); err != nil {
		s.writeError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "account deleted")
}

type sessionResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          *userResponse `json:"user,omitempty"`
}

// Session handles GET /auth/session. It never fails on bad credentials; it
// just reports the caller as anonymous.
func (s *Server) Session(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		respondData(w, http.StatusOK, sessionResponse{})
		return
	}

	u, err := s.auth.Me(r.Context(), p.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ur := toUserResponse(u)
	respondData(w, http.StatusOK, sessionResponse{Authenticated: true, User: &ur})
}
