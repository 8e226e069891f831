package sync

import (
	"errors"

	"douban2feishu/core/feishu"
	"douban2feishu/core/logger"
	"douban2feishu/feature/sync/catalog"
	"douban2feishu/feature/sync/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const defaultUserID = "default"

// Handler handles HTTP requests for sync runs.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Get("/status", h.HandleStatus)
	group.Post("/preview", h.HandlePreview)
	group.Delete("/mapping-cache", h.HandleClearMappingCache)
	group.Post("/:contentType", h.HandleSync)
}

// targetRequest is the wire form of a target table reference.
type targetRequest struct {
	AppID     string `json:"appId"`
	AppSecret string `json:"appSecret"`
	AppToken  string `json:"appToken"`
	TableID   string `json:"tableId"`
}

func (t targetRequest) toConfig(contentType catalog.ContentType) models.TargetConfig {
	return models.TargetConfig{
		Creds:       feishu.Credentials{AppID: t.AppID, AppSecret: t.AppSecret},
		AppToken:    t.AppToken,
		TableID:     t.TableID,
		ContentType: contentType,
	}
}

type syncRequest struct {
	UserID  string                `json:"userId"`
	Target  targetRequest         `json:"target"`
	Records []models.DomainRecord `json:"records"`
	Options models.Options        `json:"options"`
}

type previewRequest struct {
	ContentType string        `json:"contentType"`
	Target      targetRequest `json:"target"`
}

// HandleSync runs one synchronization of the posted snapshot into the
// target table and returns the run summary.
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	contentType, err := catalog.Parse(c.Params("contentType"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var req syncRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	userID := req.UserID
	if userID == "" {
		userID = defaultUserID
	}

	l.Info("Starting sync run",
		zap.String("contentType", string(contentType)),
		zap.String("userId", userID),
		zap.Int("records", len(req.Records)),
	)

	summary, err := h.service.Sync(c.Context(), userID, req.Target.toConfig(contentType), req.Records, req.Options)
	if err != nil {
		switch {
		case errors.Is(err, ErrSyncInProgress):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			l.Error("Sync run failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(summary)
}

// HandleStatus returns the coarse progress of the active run for a
// target, or 404 when none is active.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	appToken := c.Query("appToken")
	tableID := c.Query("tableId")
	if appToken == "" || tableID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "appToken and tableId are required"})
	}
	userID := c.Query("userId", defaultUserID)

	st := h.service.GetRunState(c.Context(), userID, models.TargetConfig{AppToken: appToken, TableID: tableID})
	if st == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no active sync run"})
	}
	return c.JSON(st)
}

// HandlePreview dry-runs mapping resolution and reports which columns
// would match and which would be created.
func (h *Handler) HandlePreview(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req previewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	contentType, err := catalog.Parse(req.ContentType)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	preview, err := h.service.PreviewMapping(c.Context(), req.Target.toConfig(contentType))
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		l.Error("Mapping preview failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(preview)
}

// HandleClearMappingCache drops the cached mapping for a target. The
// persisted mapping is untouched.
func (h *Handler) HandleClearMappingCache(c *fiber.Ctx) error {
	appToken := c.Query("appToken")
	tableID := c.Query("tableId")
	if appToken == "" || tableID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "appToken and tableId are required"})
	}

	target := models.TargetConfig{AppToken: appToken, TableID: tableID}
	if err := h.service.ClearMappingCache(c.Context(), target); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"cleared": true})
}
