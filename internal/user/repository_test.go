package user_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/user-location-api/internal/user"
)

func TestRepository_GenerateID_SortsByCreation(t *testing.T) {
	repo := user.NewPostgresRepository(nil) // id generation never touches the DB

	first, err := repo.GenerateID()
	require.NoError(t, err)
	second, err := repo.GenerateID()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	// UUIDv7 ids are time-ordered, so later records sort after earlier ones
	assert.Less(t, first, second)
}
