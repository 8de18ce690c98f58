package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/avhamm/vivalab-api/internal/dto"
	"github.com/avhamm/vivalab-api/internal/service"
	"github.com/avhamm/vivalab-api/internal/utils"
)

// PassbackHandler exposes the grade-book delivery audit trail.
type PassbackHandler struct {
	passback service.PassbackService
	logger   zerolog.Logger
}

// NewPassbackHandler builds a passback handler instance.
func NewPassbackHandler(passbackService service.PassbackService, logger zerolog.Logger) *PassbackHandler {
	return &PassbackHandler{
		passback: passbackService,
		logger:   logger.With().Str("component", "passback_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *PassbackHandler) Register(router fiber.Router) {
	router.Get("/attempts/:id/passback-log", h.history)
	router.Post("/attempts/:id/passback-result", h.recordResult)
}

func (h *PassbackHandler) history(c *fiber.Ctx) error {
	attemptID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil || limit < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	entries, err := h.passback.History(c.Context(), attemptID, limit)
	if err != nil {
		return h.handleError(c, err)
	}

	meta := map[string]interface{}{"count": len(entries)}
	return utils.OK(c, entries, "passback log retrieved", meta)
}

func (h *PassbackHandler) recordResult(c *fiber.Ctx) error {
	attemptID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SyncResultRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	entry, err := h.passback.RecordResult(c.Context(), attemptID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	requestLogger(h.logger, c).Info().
		Uint("attempt_id", attemptID).
		Str("status", entry.CanvasStatus).
		Msg("passback result recorded")

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "passback result recorded", entry)
}

func (h *PassbackHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAttemptNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "attempt not found")
	case errors.Is(err, service.ErrUnknownSyncStatus):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "unknown passback status")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
