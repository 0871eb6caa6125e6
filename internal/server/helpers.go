package server

import (
	"errors"
	"strings"

	"postboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten tells a handler the helper already sent the response.
// Handlers return nil on it so the ErrorHandler does not overwrite the body.
var errResponseWritten = errors.New("response already written")

const maxPageSize = 100

// Pagination is a parsed limit/offset pair.
type Pagination struct {
	Limit  int
	Offset int
}

// parsePagination reads limit and offset, falling back to defaultLimit for a
// missing or non-positive limit and capping it at maxPageSize.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	p := Pagination{
		Limit:  c.QueryInt("limit", defaultLimit),
		Offset: max(c.QueryInt("offset", 0), 0),
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	p.Limit = min(p.Limit, maxPageSize)
	return p
}

func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithAppError(c, err)
}

// rejectInput sends a 400 and returns errResponseWritten.
func rejectInput(c *fiber.Ctx, reason string) error {
	_ = respondError(c, models.NewValidationError(reason))
	return errResponseWritten
}

func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return rejectInput(c, "Invalid request body")
	}
	return nil
}

// parseID reads a positive integer route parameter.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, rejectInput(c, "Invalid "+fieldLabel(param))
	}
	return uint(id), nil
}

// positiveQueryID reads a required positive integer query parameter.
func positiveQueryID(c *fiber.Ctx, name string) (uint, error) {
	id := c.QueryInt(name, 0)
	if id <= 0 {
		return 0, rejectInput(c, "Invalid "+fieldLabel(name))
	}
	return uint(id), nil
}

// fieldLabel renders an identifier parameter for error messages:
// "id" becomes "ID" and "post_id" becomes "post ID".
func fieldLabel(name string) string {
	if name == "id" {
		return "ID"
	}
	if base, ok := strings.CutSuffix(name, "_id"); ok {
		return strings.ReplaceAll(base, "_", " ") + " ID"
	}
	return strings.ReplaceAll(name, "_", " ")
}
