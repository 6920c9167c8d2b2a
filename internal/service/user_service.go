package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/iago-labs/iago-go-api/internal/dto"
	"github.com/iago-labs/iago-go-api/internal/models"
	"github.com/iago-labs/iago-go-api/internal/repository"
)

// ErrEmailExists indicates registration with an already-used email address.
var ErrEmailExists = errors.New("email already exists")

// UserService manages account registration and profile reads.
type UserService interface {
	Register(ctx context.Context, payload dto.UserRegisterRequest, isLeader bool) (dto.UserResponse, error)
	Profile(ctx context.Context, userID uint) (dto.UserResponse, error)
	ListCollaborators(ctx context.Context, actorID uint, limit, offset int) (dto.UserListResponse, error)
}

type userService struct {
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(userRepo repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		users:     userRepo,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) Register(ctx context.Context, payload dto.UserRegisterRequest, isLeader bool) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return dto.UserResponse{}, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		Name:         strings.TrimSpace(payload.Name),
		Email:        email,
		PasswordHash: string(hash),
		IsLeader:     isLeader,
	}

	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.UserResponse{}, ErrEmailExists
		}
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Bool("is_leader", isLeader).Msg("user registered")

	return dto.NewUserResponse(user), nil
}

func (s *userService) Profile(ctx context.Context, userID uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func (s *userService) ListCollaborators(ctx context.Context, actorID uint, limit, offset int) (dto.UserListResponse, error) {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserListResponse{}, ErrUserNotFound
		}
		return dto.UserListResponse{}, err
	}

	if !actor.IsLeader {
		return dto.UserListResponse{}, ErrNotLeader
	}

	if limit <= 0 {
		limit = 10
	}

	users, err := s.users.ListCollaborators(ctx, limit, offset)
	if err != nil {
		return dto.UserListResponse{}, err
	}

	return dto.UserListResponse{Users: dto.NewUserResponseSlice(users)}, nil
}
