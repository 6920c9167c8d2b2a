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

// NarrativeHandler manages the assistant endpoints.
type NarrativeHandler struct {
	narratives service.NarrativeService
	review     service.ReviewService
	logger     zerolog.Logger
}

// NewNarrativeHandler builds a narrative handler instance.
func NewNarrativeHandler(narratives service.NarrativeService, review service.ReviewService, logger zerolog.Logger) *NarrativeHandler {
	return &NarrativeHandler{
		narratives: narratives,
		review:     review,
		logger:     logger.With().Str("component", "narrative_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. The generate
// route additionally sits behind a rate limiter configured by the router.
func (h *NarrativeHandler) Register(router fiber.Router, generateMiddleware ...fiber.Handler) {
	handlers := append(generateMiddleware, h.generate)
	router.Post("", handlers...)
	router.Get("/message", h.getMessage)
	router.Get("/scores", h.getScores)
	router.Delete("", h.deleteMessage)
	router.Put("/score", h.rate)
}

func (h *NarrativeHandler) generate(c *fiber.Ctx) error {
	message, err := h.narratives.Generate(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "narrative generated", message)
}

func (h *NarrativeHandler) getMessage(c *fiber.Ctx) error {
	message, err := h.narratives.GetMessage(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "narrative retrieved", message)
}

func (h *NarrativeHandler) getScores(c *fiber.Ctx) error {
	scores, err := h.review.Scores(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "scores retrieved", scores)
}

func (h *NarrativeHandler) deleteMessage(c *fiber.Ctx) error {
	if err := h.narratives.DeleteMessage(c.Context(), userIDFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "narrative deleted", nil)
}

func (h *NarrativeHandler) rate(c *fiber.Ctx) error {
	var payload dto.MessageRateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if payload.Score == nil {
		return utils.SendError(c, fiber.StatusBadRequest, "score is required")
	}

	message, err := h.narratives.Rate(c.Context(), userIDFromContext(c), *payload.Score)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "narrative rated", message)
}

func (h *NarrativeHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrFeedbackNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "feedback not found")
	case errors.Is(err, service.ErrMessageNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "message not found")
	case errors.Is(err, service.ErrMessageExists):
		return utils.SendError(c, fiber.StatusConflict, "narrative already exists")
	case errors.Is(err, service.ErrAnswerCountMismatch),
		errors.Is(err, service.ErrUnpairedQuestions):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrLeaderNotAllowed):
		return utils.SendError(c, fiber.StatusForbidden, "leaders have no assistant narrative")
	case errors.Is(err, service.ErrAssistant):
		h.logger.Error().Err(err).Msg("assistant call failed")
		return utils.SendError(c, fiber.StatusBadGateway, "assistant request failed")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
