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

// UserHandler manages registration and profile endpoints.
type UserHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewUserHandler builds a user handler instance.
func NewUserHandler(service service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger.With().Str("component", "user_handler").Logger(),
	}
}

// RegisterPublic attaches the unauthenticated registration routes.
func (h *UserHandler) RegisterPublic(users, leaders fiber.Router) {
	users.Post("", h.registerCollaborator)
	leaders.Post("", h.registerLeader)
}

// RegisterProtected attaches the routes that need an authenticated identity.
func (h *UserHandler) RegisterProtected(users fiber.Router) {
	users.Get("/me", h.me)
	users.Get("", h.listCollaborators)
}

func (h *UserHandler) registerCollaborator(c *fiber.Ctx) error {
	return h.register(c, false)
}

func (h *UserHandler) registerLeader(c *fiber.Ctx) error {
	return h.register(c, true)
}

func (h *UserHandler) register(c *fiber.Ctx, isLeader bool) error {
	var payload dto.UserRegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.service.Register(c.Context(), payload, isLeader)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "user registered", user)
}

func (h *UserHandler) me(c *fiber.Ctx) error {
	user, err := h.service.Profile(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "profile retrieved", user)
}

func (h *UserHandler) listCollaborators(c *fiber.Ctx) error {
	limit := parseQueryInt(c, "limit", 10)
	offset := parseQueryInt(c, "offset", 0)

	users, err := h.service.ListCollaborators(c.Context(), userIDFromContext(c), limit, offset)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "collaborators retrieved", users)
}

func (h *UserHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrEmailExists):
		return utils.SendError(c, fiber.StatusConflict, "email already exists")
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrNotLeader):
		return utils.SendError(c, fiber.StatusForbidden, "user is not a leader")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
