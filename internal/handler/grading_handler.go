package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/avhamm/vivalab-api/internal/dto"
	"github.com/avhamm/vivalab-api/internal/grading"
	"github.com/avhamm/vivalab-api/internal/service"
	"github.com/avhamm/vivalab-api/internal/utils"
)

// GradingHandler manages grading and manual-override endpoints.
type GradingHandler struct {
	grading   service.GradingService
	overrides service.OverrideService
	logger    zerolog.Logger
}

// NewGradingHandler builds a grading handler instance.
func NewGradingHandler(gradingService service.GradingService, overrideService service.OverrideService, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		grading:   gradingService,
		overrides: overrideService,
		logger:    logger.With().Str("component", "grading_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *GradingHandler) Register(router fiber.Router) {
	router.Post("/attempts/:id/grade", h.grade)
	router.Post("/attempts/:id/recalculate", h.recalculate)
	router.Post("/responses/:id/override", h.override)
}

func (h *GradingHandler) grade(c *fiber.Ctx) error {
	attemptID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.grading.GradeAttempt(c.Context(), attemptID)
	if err != nil {
		return h.handleError(c, err)
	}

	requestLogger(h.logger, c).Info().
		Uint("attempt_id", attemptID).
		Float64("total_score", result.TotalScore).
		Msg("attempt graded")

	return utils.SendSuccess(c, "attempt graded", result)
}

func (h *GradingHandler) override(c *fiber.Ctx) error {
	responseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.OverrideRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	actor := gradeActorFromContext(c)
	result, err := h.overrides.OverrideResponseGrade(c.Context(), responseID, payload, actor)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "response grade overridden", result)
}

func (h *GradingHandler) recalculate(c *fiber.Ctx) error {
	attemptID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.overrides.RecalculateAttemptScore(c.Context(), attemptID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attempt score recalculated", result)
}

func (h *GradingHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAttemptNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "attempt not found")
	case errors.Is(err, service.ErrResponseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "response not found")
	case errors.Is(err, service.ErrAttemptAlreadyGraded):
		return utils.SendError(c, fiber.StatusConflict, "attempt already graded")
	case errors.Is(err, service.ErrInvalidOverride):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "override points outside allowed range")
	case errors.Is(err, grading.ErrInvalidRubric):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "lab rubric is invalid")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
