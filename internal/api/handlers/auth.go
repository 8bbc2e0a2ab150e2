package handlers

import (
	"net/http"

	"github.com/pratik-mahalle/dashlist/internal/api/dto"
	"github.com/pratik-mahalle/dashlist/internal/api/middleware"
	"github.com/pratik-mahalle/dashlist/internal/auth"
	"github.com/pratik-mahalle/dashlist/internal/config"
	"github.com/pratik-mahalle/dashlist/internal/domain/user"
	"github.com/pratik-mahalle/dashlist/internal/pkg/errors"
	"github.com/pratik-mahalle/dashlist/internal/pkg/logger"
	"github.com/pratik-mahalle/dashlist/internal/pkg/utils"
	"github.com/pratik-mahalle/dashlist/internal/pkg/validator"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	userService user.Service
	roles       middleware.PermissionResolver
	config      *config.Config
	logger      *logger.Logger
	validator   *validator.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	userService user.Service,
	roles middleware.PermissionResolver,
	cfg *config.Config,
	log *logger.Logger,
	val *validator.Validator,
) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		roles:       roles,
		config:      cfg,
		logger:      log,
		validator:   val,
	}
}

// Login handles user login
// @Summary User login
// @Description Authenticate user with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse "Successfully authenticated"
// @Failure 400 {object} utils.ErrorResponse "Invalid request"
// @Failure 401 {object} utils.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}
	if appErr := h.validator.Check(req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	authenticated, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.WithFields(map[string]interface{}{
			"email": req.Email,
		}).Warn("Authentication failed")
		respondError(w, h.logger, err, "Authentication failed")
		return
	}

	h.issueTokens(w, r, authenticated, http.StatusOK)

	h.logger.WithFields(map[string]interface{}{
		"user_id": authenticated.ID,
	}).Info("User logged in successfully")
}

// Register handles user registration
// @Summary User registration
// @Description Register a new user account with the default role
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.AuthResponse "User successfully registered"
// @Failure 400 {object} utils.ErrorResponse "Invalid request or validation error"
// @Failure 409 {object} utils.ErrorResponse "Email already registered"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}
	if appErr := h.validator.Check(req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	created, err := h.userService.Register(r.Context(), user.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		respondError(w, h.logger, err, "Failed to create user")
		return
	}

	h.issueTokens(w, r, created, http.StatusCreated)
}

// Logout handles user logout
// @Summary User logout
// @Description Clear the auth cookies
// @Tags Auth
// @Success 200 {object} utils.MessageResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setCookie(w, "accessToken", "", -1)
	h.setCookie(w, "refreshToken", "", -1)
	utils.WriteMessage(w, http.StatusOK, "Logged out successfully")
}

// RefreshToken handles token refresh
// @Summary Refresh access token
// @Description Exchange a refresh token for a new token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.AuthResponse "New tokens generated"
// @Failure 400 {object} utils.ErrorResponse "Invalid request"
// @Failure 401 {object} utils.ErrorResponse "Invalid refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}
	if appErr := h.validator.Check(req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	claims, err := auth.ParseClaims(req.RefreshToken, h.config.Auth.JWTSecret, auth.KindRefresh)
	if err != nil {
		utils.WriteError(w, errors.Unauthorized("Invalid refresh token"))
		return
	}

	u, err := h.userService.GetByID(r.Context(), claims.UserID)
	if err != nil || !u.Active {
		utils.WriteError(w, errors.Unauthorized("Invalid refresh token"))
		return
	}

	h.issueTokens(w, r, u, http.StatusOK)
}

// Me returns the current user's information
// @Summary Get current user
// @Description Get authenticated user's information
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.UserDTO "User information"
// @Failure 401 {object} utils.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /me/ [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	u, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.IsNotFound(err) {
			utils.WriteError(w, errors.Unauthorized("User not authenticated"))
			return
		}
		respondError(w, h.logger, err, "Failed to get user")
		return
	}

	result, err := userDTO(r.Context(), h.roles, u)
	if err != nil {
		respondError(w, h.logger, err, "Failed to get user")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"result": result})
}

func (h *AuthHandler) issueTokens(w http.ResponseWriter, r *http.Request, u *user.User, status int) {
	result, err := userDTO(r.Context(), h.roles, u)
	if err != nil {
		respondError(w, h.logger, err, "Failed to get user")
		return
	}

	tokens, err := auth.MintTokens(
		auth.Subject{UserID: u.ID, Email: u.Email, Role: u.Role},
		h.config.Auth.JWTSecret,
		h.config.Auth.AccessTokenExpiry,
		h.config.Auth.RefreshTokenExpiry,
	)
	if err != nil {
		h.logger.ErrorWithErr(err, "Failed to generate tokens")
		utils.WriteError(w, errors.Internal("Failed to generate tokens", err))
		return
	}

	h.setCookie(w, "accessToken", tokens.AccessToken, int(h.config.Auth.AccessTokenExpiry.Seconds()))
	h.setCookie(w, "refreshToken", tokens.RefreshToken, int(h.config.Auth.RefreshTokenExpiry.Seconds()))

	utils.WriteJSON(w, status, dto.AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         result,
	})
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		HttpOnly: true,
		Secure:   h.config.Server.Environment == "production",
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   maxAge,
	})
}
