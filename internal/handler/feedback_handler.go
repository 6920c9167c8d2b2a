package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/iago-labs/iago-go-api/internal/dto"
	"github.com/iago-labs/iago-go-api/internal/service"
	"github.com/iago-labs/iago-go-api/internal/utils"
)

// FeedbackHandler manages questionnaire submission and read endpoints.
type FeedbackHandler struct {
	service service.FeedbackService
	logger  zerolog.Logger
}

// NewFeedbackHandler builds a feedback handler instance.
func NewFeedbackHandler(service service.FeedbackService, logger zerolog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		logger:  logger.With().Str("component", "feedback_handler").Logger(),
	}
}

// Register attaches the collaborator routes to the provided router group.
func (h *FeedbackHandler) Register(router fiber.Router) {
	router.Post("/collaborator", h.submitSelf)
	router.Put("/collaborator", h.updateSelf)
	router.Get("/collaborator/auto", h.getSelf)
	router.Get("/collaborator/leader", h.getLeader)
}

// RegisterLeader attaches the leader-only submission route.
func (h *FeedbackHandler) RegisterLeader(router fiber.Router) {
	router.Post("/leader", h.submitForUser)
}

func (h *FeedbackHandler) submitSelf(c *fiber.Ctx) error {
	var payload dto.FeedbackSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	feedback, err := h.service.SubmitSelf(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "feedback submitted", feedback)
}

func (h *FeedbackHandler) submitForUser(c *fiber.Ctx) error {
	evalueeID, err := parseQueryUint(c, "user_id")
	if err != nil {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return utils.SendError(c, fiberErr.Code, fiberErr.Message)
		}
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user_id")
	}

	var payload dto.FeedbackSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	feedback, err := h.service.SubmitForUser(c.Context(), userIDFromContext(c), evalueeID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "feedback submitted", feedback)
}

func (h *FeedbackHandler) updateSelf(c *fiber.Ctx) error {
	var payload dto.FeedbackUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	feedback, err := h.service.UpdateSelf(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "feedback updated", feedback)
}

func (h *FeedbackHandler) getSelf(c *fiber.Ctx) error {
	return h.get(c, true)
}

func (h *FeedbackHandler) getLeader(c *fiber.Ctx) error {
	return h.get(c, false)
}

func (h *FeedbackHandler) get(c *fiber.Ctx, selfAssessment bool) error {
	feedback, err := h.service.Get(c.Context(), userIDFromContext(c), selfAssessment)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "feedback retrieved", feedback)
}

func (h *FeedbackHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrFeedbackNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "feedback not found")
	case errors.Is(err, service.ErrAnswerNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrFeedbackExists):
		return utils.SendError(c, fiber.StatusConflict, "feedback already exists")
	case errors.Is(err, service.ErrDuplicateQuestion):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotLeader):
		return utils.SendError(c, fiber.StatusForbidden, "only leaders can submit feedback for other users")
	case errors.Is(err, service.ErrLeaderNotAllowed):
		return utils.SendError(c, fiber.StatusForbidden, "leaders have no self-assessment")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
