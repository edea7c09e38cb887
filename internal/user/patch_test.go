package user_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/user-location-api/internal/user"
)

func TestOptionalString_UnmarshalJSON(t *testing.T) {
	t.Run("omitted key stays unset", func(t *testing.T) {
		var req user.UpdateUserRequest
		require.NoError(t, json.Unmarshal([]byte(`{"name":"Ann"}`), &req))

		assert.False(t, req.ZipCode.Set)
		assert.Nil(t, req.ZipCode.Value)
	})

	t.Run("explicit null is set with nil value", func(t *testing.T) {
		var req user.UpdateUserRequest
		require.NoError(t, json.Unmarshal([]byte(`{"zipCode":null}`), &req))

		assert.True(t, req.ZipCode.Set)
		assert.Nil(t, req.ZipCode.Value)
	})

	t.Run("string value is set", func(t *testing.T) {
		var req user.UpdateUserRequest
		require.NoError(t, json.Unmarshal([]byte(`{"zipCode":"10001"}`), &req))

		assert.True(t, req.ZipCode.Set)
		require.NotNil(t, req.ZipCode.Value)
		assert.Equal(t, "10001", *req.ZipCode.Value)
	})

	t.Run("non-string value is rejected", func(t *testing.T) {
		var req user.UpdateUserRequest
		assert.Error(t, json.Unmarshal([]byte(`{"zipCode":12345}`), &req))
	})
}
