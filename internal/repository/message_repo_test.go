package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/iago-labs/iago-go-api/internal/models"
)

func TestMessageRepositoryLifecycle(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "message-lifecycle@example.com", false)

	repo := NewMessageRepository(db)
	ctx := context.Background()

	_, err := repo.GetByUser(ctx, user.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	message := models.AssistantMessage{
		UserID:  user.ID,
		Message: "Feedback gerado",
		Scores:  datatypes.JSON([]byte(`[{"question_number":1,"composite":4.55}]`)),
	}
	require.NoError(t, repo.Create(ctx, &message))
	require.NotZero(t, message.ID)

	stored, err := repo.GetByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "Feedback gerado", stored.Message)
	require.False(t, stored.Score)
	require.JSONEq(t, `[{"question_number":1,"composite":4.55}]`, string(stored.Scores))

	stored.Score = true
	require.NoError(t, repo.Update(ctx, &stored))

	rated, err := repo.GetByUser(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, rated.Score)

	deleted, err := repo.DeleteByUser(ctx, user.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	deleted, err = repo.DeleteByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Zero(t, deleted)
}
