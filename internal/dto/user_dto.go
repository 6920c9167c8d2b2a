package dto

import (
	"time"

	"github.com/iago-labs/iago-go-api/internal/models"
)

// UserRegisterRequest carries the payload to create a collaborator or leader.
type UserRegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UserResponse is the public projection of a user account.
type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsLeader  bool      `json:"is_leader"`
	CreatedAt time.Time `json:"created_at"`
}

// UserListResponse wraps a page of collaborators.
type UserListResponse struct {
	Users []UserResponse `json:"users"`
}

// NewUserResponse converts a user model into its public projection.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		IsLeader:  user.IsLeader,
		CreatedAt: user.CreatedAt,
	}
}

// NewUserResponseSlice converts a slice of user models.
func NewUserResponseSlice(users []models.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, NewUserResponse(user))
	}
	return responses
}
