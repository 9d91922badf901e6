package handlers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/vasooli-labs/vasooli/app/dto"
	"github.com/vasooli-labs/vasooli/app/services"
	businessflow "github.com/vasooli-labs/vasooli/business_flow"
	"github.com/vasooli-labs/vasooli/config"
)

// AuthCookieName is the session cookie holding the access token
const AuthCookieName = "token"

// AuthHandler handles account registration and authentication endpoints
type AuthHandler struct {
	authFlow     businessflow.AuthFlow
	tokenService services.TokenService
	security     config.SecurityConfig
	validator    *validator.Validate
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authFlow businessflow.AuthFlow, tokenService services.TokenService, security config.SecurityConfig) *AuthHandler {
	return &AuthHandler{
		authFlow:     authFlow,
		tokenService: tokenService,
		security:     security,
		validator:    validator.New(),
	}
}

// Signup registers a new account and sets the session cookie
// @Summary Register account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignupRequest true "Signup payload"
// @Success 201 {object} dto.APIResponse{data=dto.SignupResponse}
// @Router /api/v1/auth/signup [post]
func (h *AuthHandler) Signup(c fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request format", "INVALID_REQUEST", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	ctx := createRequestContext(c, "signup")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.authFlow.Signup(ctx, &req, metadata)
	if err != nil {
		if businessflow.IsEmailAlreadyExists(err) {
			return ErrorResponse(c, fiber.StatusConflict, "An account with this email already exists", dto.ErrorEmailExists, nil)
		}
		return ErrorResponse(c, fiber.StatusInternalServerError, "Signup failed", "SIGNUP_FAILED", nil)
	}

	h.setSessionCookie(c, result.Session.AccessToken)

	return SuccessResponse(c, fiber.StatusCreated, "Account created successfully", result)
}

// Login authenticates an account and sets the session cookie
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login payload"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse}
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request format", "INVALID_REQUEST", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	ctx := createRequestContext(c, "login")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.authFlow.Login(ctx, &req, metadata)
	if err != nil {
		switch {
		case businessflow.IsCustomerNotFound(err), businessflow.IsIncorrectPassword(err):
			return ErrorResponse(c, fiber.StatusUnauthorized, "Invalid email or password", dto.ErrorIncorrectPassword, nil)
		case businessflow.IsAccountInactive(err):
			return ErrorResponse(c, fiber.StatusForbidden, "Account is inactive", dto.ErrorAccountInactive, nil)
		default:
			return ErrorResponse(c, fiber.StatusInternalServerError, "Login failed", "LOGIN_FAILED", nil)
		}
	}

	h.setSessionCookie(c, result.Session.AccessToken)

	return SuccessResponse(c, fiber.StatusOK, "Login successful", result)
}

// Me returns the authenticated account
// @Summary Current account
// @Tags auth
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.MeResponse}
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c fiber.Ctx) error {
	customerID, ok := customerIDFromContext(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	ctx := createRequestContext(c, "me")

	result, err := h.authFlow.Me(ctx, customerID)
	if err != nil {
		if businessflow.IsCustomerNotFound(err) {
			return ErrorResponse(c, fiber.StatusNotFound, "Account not found", dto.ErrorUserNotFound, nil)
		}
		return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load account", "ME_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, "Account retrieved successfully", result)
}

// Logout revokes the current token and clears the session cookie
// @Summary Logout
// @Tags auth
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	if token := bearerOrCookieToken(c); token != "" {
		_ = h.tokenService.RevokeToken(token)
	}

	c.Cookie(&fiber.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: h.security.CookieHTTPOnly,
		Secure:   h.security.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})

	return SuccessResponse(c, fiber.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) setSessionCookie(c fiber.Ctx, accessToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     AuthCookieName,
		Value:    accessToken,
		Expires:  time.Now().Add(h.tokenService.AccessTokenTTL()),
		HTTPOnly: h.security.CookieHTTPOnly,
		Secure:   h.security.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

// bearerOrCookieToken extracts the access token from the Authorization
// header or the session cookie
func bearerOrCookieToken(c fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	return c.Cookies(AuthCookieName)
}
