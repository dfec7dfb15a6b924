package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"brandwatch/internal/db"
	"brandwatch/internal/integrations"
	"brandwatch/internal/validation"
)

// PageSize is the number of results per list page.
const PageSize = 20

// errorCodes maps HTTP statuses onto envelope codes.
var errorCodes = map[int]string{
	fiber.StatusBadRequest:          "BAD_REQUEST",
	fiber.StatusUnauthorized:        "UNAUTHORIZED",
	fiber.StatusForbidden:           "FORBIDDEN",
	fiber.StatusNotFound:            "NOT_FOUND",
	fiber.StatusMethodNotAllowed:    "METHOD_NOT_ALLOWED",
	fiber.StatusConflict:            "CONFLICT",
	fiber.StatusTooManyRequests:     "RATE_LIMIT_EXCEEDED",
	fiber.StatusInternalServerError: "INTERNAL_ERROR",
	fiber.StatusBadGateway:          "UPSTREAM_ERROR",
}

// ErrorCode returns the envelope code for an HTTP status.
func ErrorCode(status int) string {
	if code, ok := errorCodes[status]; ok {
		return code
	}
	return "ERROR"
}

type errorBody struct {
	Error   bool              `json:"error"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

// listBody is the data of a paginated list response.
type listBody[T any] struct {
	Count   int `json:"count"`
	Page    int `json:"page"`
	Results []T `json:"results"`
}

// jsonSuccess returns a 200 response with data wrapped in the standard envelope.
func jsonSuccess(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"data":   data,
	})
}

// jsonCreated returns a 201 response with data wrapped in the standard envelope.
func jsonCreated(c fiber.Ctx, data any) error {
	c.Status(fiber.StatusCreated)
	return jsonSuccess(c, data)
}

// jsonList returns one page of results with the total count.
func jsonList[T any](c fiber.Ctx, count, page int, results []T) error {
	return jsonSuccess(c, listBody[T]{Count: count, Page: page, Results: results})
}

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return jsonErrorDetails(c, status, message, nil)
}

func jsonErrorDetails(c fiber.Ctx, status int, message string, details map[string]string) error {
	if details == nil {
		details = map[string]string{}
	}
	return c.Status(status).JSON(errorBody{
		Error:   true,
		Code:    ErrorCode(status),
		Message: message,
		Details: details,
	})
}

// jsonValidationError returns a 400 listing each invalid field.
func jsonValidationError(c fiber.Ctx, err error) error {
	return jsonErrorDetails(c, fiber.StatusBadRequest, "validation failed", validation.Details(err))
}

// storeError maps a storage error onto a response. what names the
// operation for logs and 500 messages.
func storeError(c fiber.Ctx, err error, what string) error {
	switch {
	case errors.Is(err, db.ErrBrandNotFound),
		errors.Is(err, db.ErrRankingNotFound),
		errors.Is(err, db.ErrCitationNotFound),
		errors.Is(err, db.ErrReviewNotFound):
		return jsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, db.ErrDuplicateRecord):
		return jsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, db.ErrInvalidBrandReference):
		return jsonErrorDetails(c, fiber.StatusBadRequest, "validation failed", map[string]string{"brand": err.Error()})
	}

	slog.Error("store operation failed", "op", what, "path", c.Path(), "error", err)
	return jsonError(c, fiber.StatusInternalServerError, "failed to "+what)
}

// upstreamError maps an external API failure onto a response.
func upstreamError(c fiber.Ctx, err error, service string) error {
	if errors.Is(err, integrations.ErrNotConfigured) {
		return jsonError(c, fiber.StatusServiceUnavailable, service+" is not configured")
	}
	slog.Warn("upstream call failed", "service", service, "error", err)
	return jsonErrorDetails(c, fiber.StatusBadGateway, service+" request failed", map[string]string{"error": err.Error()})
}

// ErrorHandler renders errors that escape handlers in the envelope format.
func ErrorHandler(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal server error"

	var e *fiber.Error
	if errors.As(err, &e) {
		status = e.Code
		message = e.Message
	} else {
		slog.Error("unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
	}

	return jsonError(c, status, message)
}
