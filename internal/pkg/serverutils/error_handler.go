package serverutils

import (
	"errors"

	"notesheet/internal/entity"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON
// envelope with a status that matches the domain error.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := StatusFor(err)
		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}

func StatusFor(err error) int {
	var fiberErr *fiber.Error
	var validationErr *ValidationError

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest
	case errors.Is(err, entity.ErrInvalidCover):
		return fiber.StatusBadRequest
	case errors.Is(err, entity.ErrLastSheet):
		return fiber.StatusConflict
	case errors.Is(err, entity.ErrNotebookNotFound), errors.Is(err, entity.ErrSheetNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, entity.ErrNoNotebookSelected):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
