//go:build unit

package queries_test

import (
	"encoding/base64"
	"testing"
	"time"

	"giftcode-market/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	id := uuid.New()
	at := time.Date(2025, 6, 1, 12, 30, 45, 123456000, time.UTC)

	encoded := queries.EncodeAfterCursor(at, id)
	gotAt, gotID, err := queries.DecodeAfterCursor(encoded)
	require.NoError(t, err)

	assert.Equal(t, id, gotID)
	assert.True(t, at.Equal(gotAt), "microsecond precision survives the round trip")
}

func TestDecodeAfterCursor(t *testing.T) {
	t.Run("empty cursor", func(t *testing.T) {
		_, _, err := queries.DecodeAfterCursor("")
		assert.Error(t, err)
	})

	t.Run("not base64", func(t *testing.T) {
		_, _, err := queries.DecodeAfterCursor("%%%")
		assert.Error(t, err)
	})

	t.Run("unsupported version", func(t *testing.T) {
		raw := base64.URLEncoding.EncodeToString([]byte("v2:123-" + uuid.NewString()))
		_, _, err := queries.DecodeAfterCursor(raw)
		assert.Error(t, err)
	})

	t.Run("garbage payload", func(t *testing.T) {
		raw := base64.URLEncoding.EncodeToString([]byte("v1:not-a-cursor"))
		_, _, err := queries.DecodeAfterCursor(raw)
		assert.Error(t, err)
	})

	t.Run("bad uuid", func(t *testing.T) {
		raw := base64.URLEncoding.EncodeToString([]byte("v1:123-not-a-uuid"))
		_, _, err := queries.DecodeAfterCursor(raw)
		assert.Error(t, err)
	})
}
