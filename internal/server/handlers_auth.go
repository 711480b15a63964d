package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bobmcallan/investtrack/internal/common"
	"github.com/bobmcallan/investtrack/internal/interfaces"
	"github.com/bobmcallan/investtrack/internal/models"
)

const tokenIssuer = "investtrack-server"

// signJWT creates a signed HMAC-SHA256 JWT for the given user.
func signJWT(user *models.InternalUser, config *common.AuthConfig) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"jti":  uuid.New().String(),
		"sub":  user.UserID,
		"role": user.Role,
		"iss":  tokenIssuer,
		"iat":  now.Unix(),
		"exp":  now.Add(config.GetTokenExpiry()).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.JWTSecret))
}

// validateJWT parses and validates a JWT token string using the given secret.
func validateJWT(tokenString string, secret []byte) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// passwordBytes truncates to the 72 bytes bcrypt reads.
func passwordBytes(password string) []byte {
	b := []byte(password)
	if len(b) > 72 {
		b = b[:72]
	}
	return b
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func userResponse(user *models.InternalUser) map[string]interface{} {
	return map[string]interface{}{
		"username":  user.UserID,
		"role":      user.Role,
		"createdAt": user.CreatedAt,
	}
}

// handleAuthRegister handles POST /api/auth/register.
func (s *Server) handleAuthRegister(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req credentials
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		WriteError(w, http.StatusBadRequest, "username is required")
		return
	}
	if req.Password == "" {
		WriteError(w, http.StatusBadRequest, "password is required")
		return
	}

	ctx := r.Context()
	store := s.app.Storage.InternalStore()

	hash, err := bcrypt.GenerateFromPassword(passwordBytes(req.Password), 10)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		WriteError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	now := time.Now().UTC()
	user := &models.InternalUser{
		UserID:       req.Username,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		CreatedAt:    now,
		ModifiedAt:   now,
	}
	if err := store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, interfaces.ErrAlreadyExists) {
			WriteError(w, http.StatusConflict, fmt.Sprintf("user '%s' already exists", req.Username))
			return
		}
		s.logger.Error().Err(err).Str("username", req.Username).Msg("Failed to save user")
		WriteError(w, http.StatusInternalServerError, "failed to save user")
		return
	}

	s.logger.Info().Str("username", user.UserID).Msg("User registered")
	WriteData(w, http.StatusCreated, userResponse(user))
}

// handleAuthLogin handles POST /api/auth/login.
func (s *Server) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if !s.loginLimiter.Allow(clientKey(r)) {
		w.Header().Set("Retry-After", "1")
		WriteErrorWithCode(w, http.StatusTooManyRequests, "too many login attempts", "rate_limited")
		return
	}

	var req credentials
	if !DecodeJSON(w, r, &req) {
		return
	}

	user, err := s.app.Storage.InternalStore().GetUser(r.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), passwordBytes(req.Password)); err != nil {
		WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := signJWT(user, &s.app.Config.Auth)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign JWT for login")
		WriteError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}

	WriteData(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  userResponse(user),
	})
}

// handleAuthValidate handles GET /api/auth/validate.
func (s *Server) handleAuthValidate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	user, err := s.app.Storage.InternalStore().GetUser(r.Context(), userID)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}
	WriteData(w, http.StatusOK, map[string]interface{}{"user": userResponse(user)})
}

// handleAuthAccount handles DELETE /api/auth/account. It removes the
// caller's ledger, stored settings and user record.
func (s *Server) handleAuthAccount(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	store := s.app.Storage.InternalStore()

	removed, err := s.app.LedgerService.DeleteAll(ctx, userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	kvs, err := store.ListUserKV(ctx, userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	for _, kv := range kvs {
		if err := store.DeleteUserKV(ctx, userID, kv.Key); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
	}

	if err := store.DeleteUser(ctx, userID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.logger.Info().Str("username", userID).Int("investments", removed).Msg("Account deleted")
	w.WriteHeader(http.StatusNoContent)
}
