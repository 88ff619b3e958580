package controller

import (
	"strings"

	"notesheet/internal/dto"
	"notesheet/internal/pkg/serverutils"
	"notesheet/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISheetController interface {
	RegisterRoutes(r fiber.Router, guard fiber.Handler)
	Add(ctx *fiber.Ctx) error
	Select(ctx *fiber.Ctx) error
	Rename(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type sheetController struct {
	service service.INotebookService
	editor  service.IEditorService
}

func NewSheetController(service service.INotebookService, editor service.IEditorService) ISheetController {
	return &sheetController{service: service, editor: editor}
}

func (c *sheetController) RegisterRoutes(r fiber.Router, guard fiber.Handler) {
	h := r.Group("/sheet/v1")
	h.Use(guard)
	h.Post("", c.Add)
	h.Put(":id/select", c.Select)
	h.Put(":id", c.Rename)
	h.Delete(":id", c.Delete)
}

func (c *sheetController) Add(ctx *fiber.Ctx) error {
	var req dto.AddSheetRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.editor.AddSheet(ctx.UserContext(), req.Title)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success add sheet", res))
}

func (c *sheetController) Select(ctx *fiber.Ctx) error {
	req, err := parseSelect(ctx)
	if err != nil {
		return err
	}

	res, ok := c.editor.SelectSheet(ctx.UserContext(), ctx.Params("id"), req.Content)
	if !ok {
		return ctx.JSON(serverutils.SuccessResponse("Sheet not found, selection unchanged", res))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success select sheet", res))
}

func (c *sheetController) Rename(ctx *fiber.Ctx) error {
	var req dto.UpdateSheetRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	req.Id = ctx.Params("id")
	req.Title = strings.TrimSpace(req.Title)

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.RenameSheet(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success rename sheet", res))
}

func (c *sheetController) Delete(ctx *fiber.Ctx) error {
	res, err := c.editor.DeleteSheet(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete sheet", res))
}
