package controller

import (
	"strings"

	"notesheet/internal/dto"
	"notesheet/internal/pkg/serverutils"
	"notesheet/internal/service"

	"github.com/gofiber/fiber/v2"
)

type INotebookController interface {
	RegisterRoutes(r fiber.Router, guard fiber.Handler)
	GetState(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Select(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	Export(ctx *fiber.Ctx) error
	Import(ctx *fiber.Ctx) error
}

type notebookController struct {
	service service.INotebookService
	editor  service.IEditorService
}

func NewNotebookController(service service.INotebookService, editor service.IEditorService) INotebookController {
	return &notebookController{service: service, editor: editor}
}

func (c *notebookController) RegisterRoutes(r fiber.Router, guard fiber.Handler) {
	h := r.Group("/notebook/v1")
	h.Use(guard)
	h.Get("", c.GetState)
	h.Post("", c.Create)
	h.Get("search", c.Search)
	h.Get("stats", c.Stats)
	h.Get("export", c.Export)
	h.Post("import", c.Import)
	h.Put(":id/select", c.Select)
	h.Put(":id", c.Update)
}

func (c *notebookController) GetState(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get notebooks", c.service.State()))
}

func (c *notebookController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateNotebookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	req.Name = strings.TrimSpace(req.Name)

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.editor.CreateNotebook(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create notebook", res))
}

func (c *notebookController) Select(ctx *fiber.Ctx) error {
	req, err := parseSelect(ctx)
	if err != nil {
		return err
	}

	res, ok := c.editor.SelectNotebook(ctx.UserContext(), ctx.Params("id"), req.Content)
	if !ok {
		return ctx.JSON(serverutils.SuccessResponse("Notebook not found, selection unchanged", res))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success select notebook", res))
}

func (c *notebookController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateNotebookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	req.Id = ctx.Params("id")

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.UpdateNotebook(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update notebook", res))
}

func (c *notebookController) Search(ctx *fiber.Ctx) error {
	hits := c.service.Search(ctx.Query("q"))
	return ctx.JSON(serverutils.SuccessResponse("Success search", hits))
}

func (c *notebookController) Stats(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get stats", c.service.Stats()))
}

func (c *notebookController) Export(ctx *fiber.Ctx) error {
	raw, err := c.service.Export()
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="notebooks.json"`)
	return ctx.Send(raw)
}

func (c *notebookController) Import(ctx *fiber.Ctx) error {
	raw := append([]byte(nil), ctx.Body()...)
	if len(raw) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "snapshot body is required")
	}

	res, err := c.editor.Import(ctx.UserContext(), raw)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return ctx.JSON(serverutils.SuccessResponse("Success import notebooks", res))
}

// parseSelect reads the optional live-content body of a select call.
func parseSelect(ctx *fiber.Ctx) (dto.SelectRequest, error) {
	var req dto.SelectRequest
	if len(ctx.Body()) == 0 {
		return req, nil
	}
	if err := ctx.BodyParser(&req); err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return req, nil
}
