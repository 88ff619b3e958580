package controller

import (
	"notesheet/internal/dto"
	"notesheet/internal/offline"
	"notesheet/internal/pkg/logger"
	"notesheet/internal/pkg/serverutils"
	"notesheet/internal/service"
	"notesheet/pkg/events"

	"github.com/gofiber/fiber/v2"
)

type IOfflineController interface {
	RegisterRoutes(r fiber.Router, guard fiber.Handler)
	Deploy(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	Sync(ctx *fiber.Ctx) error
	Push(ctx *fiber.Ctx) error
}

type offlineController struct {
	lifecycle *offline.Lifecycle
	publisher service.IPublisherService
	logger    logger.ILogger
}

func NewOfflineController(lifecycle *offline.Lifecycle, publisher service.IPublisherService, log logger.ILogger) IOfflineController {
	return &offlineController{lifecycle: lifecycle, publisher: publisher, logger: log}
}

func (c *offlineController) RegisterRoutes(r fiber.Router, guard fiber.Handler) {
	h := r.Group("/offline/v1")
	h.Use(guard)
	h.Post("deploy", c.Deploy)
	h.Get("status", c.Status)
	h.Post("sync", c.Sync)
	h.Post("push", c.Push)
}

func (c *offlineController) Deploy(ctx *fiber.Ctx) error {
	var req dto.DeployCacheRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if _, err := c.lifecycle.Deploy(ctx.UserContext(), req.Version); err != nil {
		// The previous version keeps serving; report the failure with the current status.
		return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.BaseResponse[*dto.OfflineStatusResponse]{
			Success: false,
			Code:    fiber.StatusBadGateway,
			Message: err.Error(),
			Data:    c.status(),
		})
	}

	c.publish(ctx, events.New(events.OfflineDeployed, map[string]interface{}{"version": req.Version}))
	return ctx.JSON(serverutils.SuccessResponse("Success deploy cache version", c.status()))
}

func (c *offlineController) Status(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get offline status", c.status()))
}

func (c *offlineController) Sync(ctx *fiber.Ctx) error {
	var req dto.SyncRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.lifecycle.Sync(ctx.UserContext(), req.Tag); err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse[any]("Sync accepted", nil))
}

func (c *offlineController) Push(ctx *fiber.Ctx) error {
	var req dto.PushRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}

	notification := offline.Push(req.Payload)
	c.publish(ctx, events.New(events.OfflinePush, map[string]interface{}{
		"title": notification.Title,
		"body":  notification.Body,
		"icon":  notification.Icon,
	}))

	return ctx.JSON(serverutils.SuccessResponse("Notification sent", notification))
}

func (c *offlineController) status() *dto.OfflineStatusResponse {
	st := c.lifecycle.Status()
	return &dto.OfflineStatusResponse{
		ActiveVersion: st.ActiveVersion,
		State:         string(st.State),
		Caches:        st.Caches,
		CachedEntries: st.CachedEntries,
	}
}

func (c *offlineController) publish(ctx *fiber.Ctx, event events.Event) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(ctx.UserContext(), event); err != nil {
		c.logger.Warn("OfflineController", "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
