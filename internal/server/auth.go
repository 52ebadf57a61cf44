package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"kisansarathi/internal/auth"
	"kisansarathi/pkg/types"
)

type confirmRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type meResponse struct {
	UserID  string   `json:"user_id"`
	Email   string   `json:"email,omitempty"`
	Groups  []string `json:"groups"`
	IsAdmin bool     `json:"is_admin"`
}

func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := s.deps.Authenticator.Register(r.Context(), &in)
	if err != nil {
		if s.writeFieldError(w, err) {
			return
		}
		s.logger.WithError(err).Error("failed to signup user")
		s.writeError(w, http.StatusBadGateway, "Unable to create account. Please try again.")
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Check your email for a confirmation code",
		"email":   in.Email,
	})
}

func (s *Service) handleRegisterConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := s.deps.Authenticator.Confirm(r.Context(), req.Email, req.Code)
	if err != nil {
		if s.writeFieldError(w, err) {
			return
		}
		s.logger.WithError(err).Error("failed to confirm user signup")
		s.writeError(w, http.StatusBadGateway, "Unable to confirm account. Please try again.")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Account confirmed"})
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := s.deps.Authenticator.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.WithError(err).Info("login rejected")
			s.writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		s.logger.WithError(err).Error("failed to login user")
		s.writeError(w, http.StatusBadGateway, "Login failed")
		return
	}

	verify, token := s.deps.Verifier.VerifyIDToken, session.IDToken
	if token == "" {
		verify, token = s.deps.Verifier.Verify, session.AccessToken
	}

	identity, err := verify(ctx, token)
	if err != nil {
		s.logger.WithError(err).Error("failed to verify token issued at login")
		s.writeError(w, http.StatusBadGateway, "Login failed")
		return
	}

	userType := types.UserTypeFarmer
	if identity.InGroup(s.config.CognitoAdminGroup) {
		userType = types.UserTypeAdmin
	}

	err = s.deps.Users.UpsertIdentity(ctx, identity.UserID, userType, identity.Email, "", "")
	if err != nil {
		s.logger.WithError(err).WithField("user_id", identity.UserID).Error("failed to record user identity")
		s.internalServerError(w)
		return
	}

	encryptedToken, err := s.cookie.Encode(s.config.CookieName, session.AccessToken)
	if err != nil {
		s.logger.WithError(err).Error("failed to encrypt access token")
		s.internalServerError(w)
		return
	}

	maxAge := session.ExpiresIn
	if maxAge <= 0 {
		maxAge = s.config.SessionMaxAgeSec
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    encryptedToken,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
		Path:     "/",
	})

	s.writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: session.AccessToken,
		TokenType:   "bearer",
		ExpiresIn:   session.ExpiresIn,
	})
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})

	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, err := s.identityFromContext(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("ctx doesn't contain identity")
		s.internalServerError(w)
		return
	}

	groups := identity.Groups
	if groups == nil {
		groups = []string{}
	}

	s.writeJSON(w, http.StatusOK, meResponse{
		UserID:  identity.UserID,
		Email:   identity.Email,
		Groups:  groups,
		IsAdmin: identity.InGroup(s.config.CognitoAdminGroup),
	})
}

// writeFieldError answers with 422 when err carries field problems.
func (s *Service) writeFieldError(w http.ResponseWriter, err error) bool {
	var fieldErr *auth.FieldError
	if !errors.As(err, &fieldErr) {
		return false
	}

	s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Detail: fieldErr.Message,
		Errors: fieldErr.Fields,
	})
	return true
}
