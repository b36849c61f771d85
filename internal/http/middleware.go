// FILE: internal/http/middleware.go
package http

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"chesscore/internal/core"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

const rateLimitRate = 10 // req/sec

// clientKey identifies the caller, preferring the first X-Forwarded-For hop
func clientKey(c *fiber.Ctx) string {
	if xff := c.Get(fiber.HeaderXForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	return c.IP()
}

// rateLimiter caps requests per client per second
func rateLimiter(maxReq int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:          maxReq,
		Expiration:   time.Second,
		KeyGenerator: clientKey,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	})
}

// requireJSON rejects request bodies that declare a non-JSON content type.
// A missing Content-Type is accepted so empty POSTs work.
func requireJSON(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Next()
	}
	ct := c.Get(fiber.HeaderContentType)
	if ct == "" || strings.HasPrefix(ct, fiber.MIMEApplicationJSON) {
		return c.Next()
	}
	return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
		Error:   "unsupported media type",
		Code:    core.ErrInvalidContent,
		Details: "Content-Type must be application/json",
	})
}

// codeForStatus maps framework errors to API error codes
var codeForStatus = map[int]string{
	fiber.StatusBadRequest:       core.ErrInvalidRequest,
	fiber.StatusNotFound:         core.ErrGameNotFound,
	fiber.StatusUpgradeRequired:  core.ErrInvalidRequest,
	fiber.StatusTooManyRequests:  core.ErrRateLimitExceeded,
	fiber.StatusMethodNotAllowed: core.ErrInvalidRequest,
}

// errorHandler renders every error escaping a handler as an ErrorResponse
func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	resp := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
		resp.Error = fe.Message
		if code, ok := codeForStatus[status]; ok {
			resp.Code = code
		}
	}

	return c.Status(status).JSON(resp)
}

// statusForCode maps API error codes to HTTP statuses; unlisted codes are 400
var statusForCode = map[string]int{
	core.ErrGameNotFound:  fiber.StatusNotFound,
	core.ErrGameOver:      fiber.StatusConflict,
	core.ErrInternalError: fiber.StatusInternalServerError,
}

func statusFor(code string) int {
	if status, ok := statusForCode[code]; ok {
		return status
	}
	return fiber.StatusBadRequest
}
