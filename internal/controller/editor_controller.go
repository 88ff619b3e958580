package controller

import (
	"notesheet/internal/dto"
	"notesheet/internal/pkg/serverutils"
	"notesheet/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IEditorController interface {
	RegisterRoutes(r fiber.Router, guard fiber.Handler)
	PushDraft(ctx *fiber.Ctx) error
	Save(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
}

type editorController struct {
	editor service.IEditorService
}

func NewEditorController(editor service.IEditorService) IEditorController {
	return &editorController{editor: editor}
}

func (c *editorController) RegisterRoutes(r fiber.Router, guard fiber.Handler) {
	h := r.Group("/editor/v1")
	h.Use(guard)
	h.Put("draft", c.PushDraft)
	h.Post("save", c.Save)
	h.Get("status", c.Status)
}

func (c *editorController) PushDraft(ctx *fiber.Ctx) error {
	var req dto.DraftRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res := c.editor.PushDraft(ctx.UserContext(), req.Content)
	return ctx.JSON(serverutils.SuccessResponse("Draft received", res))
}

func (c *editorController) Save(ctx *fiber.Ctx) error {
	var req dto.SaveRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}

	res, err := c.editor.Save(ctx.UserContext(), req.Content)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Saved", res))
}

func (c *editorController) Status(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get editor status", c.editor.Status()))
}
