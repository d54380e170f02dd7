package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndRedeemResetToken(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresPasswordResetRepository(db)
	alice := seedUser(t, db, "alice")

	token, err := repo.IssueToken(alice.ID, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.Nil(t, token.UsedAt)

	loaded, err := repo.GetToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, loaded.UserID)
	assert.True(t, loaded.ExpiresAt.After(time.Now()))

	require.NoError(t, repo.MarkUsed(token.Token))
	loaded, err = repo.GetToken(token.Token)
	require.NoError(t, err)
	assert.NotNil(t, loaded.UsedAt)
}

func TestGetUnknownTokenFails(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresPasswordResetRepository(db)

	_, err := repo.GetToken("no-such-token")
	assert.Error(t, err)
}
