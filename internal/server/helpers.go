package server

import (
	"errors"
	"strings"
	"unicode"

	"fakex/internal/middleware"
	"fakex/internal/models"
	"fakex/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const viewerLocal = "viewer"

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "postId" -> "post ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// mapServiceError returns the HTTP status for an error from the service layer.
func mapServiceError(err error) int {
	return models.StatusForCode(models.ErrorCode(err))
}

// respondWithServiceError writes err with its mapped status. Server-side
// failures are logged with their cause, which never reaches the client.
func (s *Server) respondWithServiceError(c *fiber.Ctx, err error) error {
	status := mapServiceError(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			"error", err, "method", c.Method(), "path", c.Path())
	}
	return models.RespondWithError(c, status, err)
}

// parseBody decodes the JSON body into dst, writing a 400 on malformed input.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// ResolveViewer turns verified claims into a service.Viewer. Requests without
// claims, or whose subject has no user yet, continue as Anonymous.
func (s *Server) ResolveViewer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := middleware.ClaimsFrom(c)
		if !ok {
			c.Locals(viewerLocal, service.Viewer(service.Anonymous{}))
			return c.Next()
		}

		ctx := c.UserContext()
		user, err := s.identity.Resolve(ctx, claims.Subject)
		switch {
		case err == nil:
			c.Locals(viewerLocal, service.Viewer(service.Authenticated{User: user}))
			c.Locals("userID", user.ID)
			c.SetUserContext(middleware.WithUserID(ctx, user.ID))
		case models.IsNotFound(err):
			c.Locals(viewerLocal, service.Viewer(service.Anonymous{}))
		default:
			return s.respondWithServiceError(c, err)
		}
		return c.Next()
	}
}

// viewerFrom returns the viewer stored by ResolveViewer, defaulting to Anonymous.
func viewerFrom(c *fiber.Ctx) service.Viewer {
	if v, ok := c.Locals(viewerLocal).(service.Viewer); ok && v != nil {
		return v
	}
	return service.Anonymous{}
}
