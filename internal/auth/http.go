// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/elib/internal/platform/middleware"
	requestutil "github.com/taibuivan/elib/internal/platform/request"
	"github.com/taibuivan/elib/internal/platform/respond"
	"github.com/taibuivan/elib/internal/platform/validate"
)

// Handler implements the sign-in HTTP endpoints.
type Handler struct {
	authService *Service

	// throttle guards the credential and passcode endpoints. Optional.
	throttle func(http.Handler) http.Handler
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, throttle func(http.Handler) http.Handler) *Handler {
	return &Handler{authService: service, throttle: throttle}
}

// Routes returns a [chi.Router] configured with the sign-in routes.
//
// # Endpoints
//   - POST /login  : Password step, sends a passcode (204).
//   - POST /verify : Passcode step, returns tokens (201).
//   - GET  /me     : Principal of the presented bearer token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(public chi.Router) {
		if handler.throttle != nil {
			public.Use(handler.throttle)
		}
		public.Post("/login", handler.login)
		public.Post("/verify", handler.verify)
	})

	router.With(middleware.RequireAuth).Get("/me", handler.me)

	return router
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// login handles POST /api/v1/authenticate/login.
//
// # Returns
//   - HTTP 204 No Content once the passcode has been issued.
//   - HTTP 400 Bad Request on malformed input.
//   - HTTP 401 INVALID_CREDENTIALS without saying which half was wrong.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {

	// ── 1. Payload Extraction ─────────────────────────────────────────────
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Boundary Validation ────────────────────────────────────────────
	var validator validate.Validator
	validator.
		Required(FieldUsername, input.Username).
		MaxLen(FieldUsername, input.Username, MaxUsernameLength).
		Required(FieldPassword, input.Password).
		MaxLen(FieldPassword, input.Password, MaxPasswordLength)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Application Execution ──────────────────────────────────────────
	err := handler.authService.Login(request.Context(), LoginInput{
		Username: input.Username,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

type verifyRequest struct {
	Username   string `json:"username"`
	OtpCode    string `json:"otpCode"`
	RememberMe bool   `json:"rememberMe"`
}

// verify handles POST /api/v1/authenticate/verify.
//
// # Returns
//   - HTTP 201 Created with {accessToken, refreshToken?}.
//   - HTTP 400 Bad Request on malformed input.
//   - HTTP 401 INVALID_OTP or USER_NOT_FOUND.
func (handler *Handler) verify(writer http.ResponseWriter, request *http.Request) {

	// ── 1. Payload Extraction ─────────────────────────────────────────────
	var input verifyRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Boundary Validation ────────────────────────────────────────────

	// An over-long code is simply wrong, so it is left to the passcode check.
	var validator validate.Validator
	validator.
		Required(FieldUsername, input.Username).
		MaxLen(FieldUsername, input.Username, MaxUsernameLength).
		Required(FieldOtpCode, input.OtpCode)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Application Execution ──────────────────────────────────────────
	pair, err := handler.authService.Verify(request.Context(), VerifyInput{
		Username:   input.Username,
		OtpCode:    input.OtpCode,
		RememberMe: input.RememberMe,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 4. Presentation Output ────────────────────────────────────────────
	respond.Tokens(writer, pair)
}

// me handles GET /api/v1/authenticate/me.
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, principal)
}
