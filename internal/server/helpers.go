package server

import (
	"errors"
	"net/url"
	"strings"
	"unicode"

	"navega/internal/middleware"
	"navega/internal/models"
	"navega/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const maxPaginationLimit = 100

// statusFor maps the AppError code of err onto an HTTP status.
func statusFor(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondAppError writes err with the status its code maps to. Server errors
// are logged; their cause never reaches production clients.
func respondAppError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			"method", c.Method(), "path", c.Path(), "error", err.Error())
	}
	return models.RespondWithError(c, status, err)
}

// badBody answers a request whose JSON body could not be decoded.
func badBody(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusBadRequest,
		models.NewValidationError("Cuerpo de la solicitud inválido."))
}

// parseOptionalBody decodes the request body into out when one was sent.
// A non-empty body that does not decode gets a 400 and errResponseWritten.
func parseOptionalBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		_ = badBody(c)
		return errResponseWritten
	}
	return nil
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Identificador inválido: "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "postId" -> "post ID", "commentId" -> "comment ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if prefix, ok := strings.CutSuffix(param, "Id"); ok && prefix != "" {
		return strings.ToLower(strings.Join(splitCamel(prefix), " ")) + " ID"
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
	return append(words, s[start:])
}

// parsePageRequest reads page/limit for the paged admin listings.
func parsePageRequest(c *fiber.Ctx) service.PageRequest {
	return service.PageRequest{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", service.DefaultPageLimit),
	}.Normalize()
}

// Pagination holds parsed limit/offset query parameters. A zero Limit means
// no limit was requested.
type Pagination struct {
	Limit  int
	Offset int
}

// parsePagination extracts optional limit and offset query parameters.
func parsePagination(c *fiber.Ctx) Pagination {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		limit = 0
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return Pagination{Limit: limit, Offset: offset}
}

// deviceHint returns the anonymous device id of the request: the JSON body
// field when given, then ?deviceId=, then a bare query string such as
// "/identify?abc123" sent by older clients.
func deviceHint(c *fiber.Ctx, fromBody string) string {
	if v := strings.TrimSpace(fromBody); v != "" {
		return v
	}
	if v := strings.TrimSpace(c.Query("deviceId")); v != "" {
		return v
	}
	raw := string(c.Request().URI().QueryString())
	if raw == "" || strings.ContainsAny(raw, "=&") {
		return ""
	}
	if v, err := url.QueryUnescape(raw); err == nil {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(raw)
}

// identityOf resolves the acting identity of the request.
func identityOf(c *fiber.Ctx, bodyDeviceID string) (models.Identity, error) {
	return service.ResolveIdentity(middleware.PrincipalFrom(c), deviceHint(c, bodyDeviceID))
}
