// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package respond writes every HTTP response body of the Elib API.
//
// # Shapes
//
//   - Resources: {"data": ...}, lists add {"meta": ...}.
//   - Sign-in tokens: bare {"accessToken", "refreshToken"?}.
//   - Errors: {"error", "code", "details"?}. 401s also carry a Bearer
//     WWW-Authenticate challenge.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/taibuivan/elib/internal/platform/apperr"
	"github.com/taibuivan/elib/internal/platform/ctxutil"
	"github.com/taibuivan/elib/internal/platform/sec"
	"github.com/taibuivan/elib/pkg/pagination"
)

// SuccessEnvelope wraps single resources.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// PaginatedEnvelope wraps a page of a list.
type PaginatedEnvelope struct {
	Data any             `json:"data"`
	Meta pagination.Meta `json:"meta"`
}

// ErrorEnvelope is the body of every non-2xx response.
type ErrorEnvelope struct {
	Error   string              `json:"error"`
	Code    string              `json:"code"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// # Success

// JSON writes payload as-is with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// Data writes data in the success envelope with the given status code.
func Data(writer http.ResponseWriter, statusCode int, data any) {
	JSON(writer, statusCode, SuccessEnvelope{Data: data})
}

// OK writes 200 with data in the success envelope.
func OK(writer http.ResponseWriter, data any) {
	Data(writer, http.StatusOK, data)
}

// Created writes 201 with data in the success envelope.
func Created(writer http.ResponseWriter, data any) {
	Data(writer, http.StatusCreated, data)
}

// Paginated writes 200 with a page of data and its metadata.
func Paginated(writer http.ResponseWriter, data any, metadata pagination.Meta) {
	JSON(writer, http.StatusOK, PaginatedEnvelope{Data: data, Meta: metadata})
}

// Tokens writes 201 with the token pair of a completed sign-in. The pair is
// not enveloped and must never be cached.
func Tokens(writer http.ResponseWriter, pair *sec.TokenPair) {
	writer.Header().Set("Cache-Control", "no-store")
	JSON(writer, http.StatusCreated, pair)
}

// NoContent writes 204.
func NoContent(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNoContent)
}

// # Errors

// Error renders err as an [ErrorEnvelope].
//
// Errors that are not an [*apperr.AppError] become INTERNAL_ERROR; their text
// is logged, never sent. Every 5xx is logged with its cause.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	ctx := request.Context()
	logger := ctxutil.GetLogger(ctx)

	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		logger.ErrorContext(ctx, "unhandled_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.GetRequestID(ctx)),
		)
		appError = apperr.Internal(err)
	}

	if appError.HTTPStatus >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", ctxutil.GetRequestID(ctx)),
			slog.Any("cause", appError.Cause),
		)
	}

	if appError.HTTPStatus == http.StatusUnauthorized {
		writer.Header().Set("WWW-Authenticate", bearerChallenge(appError.Code))
	}

	JSON(writer, appError.HTTPStatus, ErrorEnvelope{
		Error:   appError.Message,
		Code:    appError.Code,
		Details: appError.Details,
	})
}

// bearerChallenge builds the RFC 6750 challenge for a 401 code.
func bearerChallenge(code string) string {
	switch code {
	case apperr.CodeInvalidToken, apperr.CodeExpiredToken:
		return `Bearer realm="elib", error="invalid_token"`
	default:
		return `Bearer realm="elib"`
	}
}
