package cache

import (
	"os"
	"testing"

	"github.com/fastask/fastask/internal/proto"
	"github.com/stretchr/testify/require"
)

func TestConversations(t *testing.T) {
	t.Run("read non-existent", func(t *testing.T) {
		cache, err := NewConversations(t.TempDir())
		require.NoError(t, err)
		err = cache.Read("super-fake", &[]proto.Message{})
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("write and read back", func(t *testing.T) {
		cache, err := NewConversations(t.TempDir())
		require.NoError(t, err)
		messages := []proto.Message{
			{
				Role:    proto.RoleUser,
				Content: "first 4 natural numbers",
			},
			{
				Role:    proto.RoleAssistant,
				Content: "1, 2, 3, 4",
			},
		}
		require.NoError(t, cache.Write("fake", &messages))

		var result []proto.Message
		require.NoError(t, cache.Read("fake", &result))
		require.ElementsMatch(t, messages, result)
	})

	t.Run("write keeps attachments", func(t *testing.T) {
		cache, err := NewConversations(t.TempDir())
		require.NoError(t, err)
		messages := []proto.Message{
			{
				Role:    proto.RoleUser,
				Content: "what is this?",
				Images: []proto.ImageContent{
					{Data: []byte{1, 2, 3}, MimeType: "image/png", Filename: "shot.png"},
				},
			},
		}
		require.NoError(t, cache.Write("with-image", &messages))

		var result []proto.Message
		require.NoError(t, cache.Read("with-image", &result))
		require.Len(t, result, 1)
		require.Len(t, result[0].Images, 1)
		require.Equal(t, "shot.png", result[0].Images[0].Filename)
	})

	t.Run("delete", func(t *testing.T) {
		cache, err := NewConversations(t.TempDir())
		require.NoError(t, err)
		require.NoError(t, cache.Write("fake", &[]proto.Message{}))
		require.NoError(t, cache.Delete("fake"))
		require.ErrorIs(t, cache.Read("fake", nil), os.ErrNotExist)
	})

	t.Run("invalid id", func(t *testing.T) {
		cache, err := NewConversations(t.TempDir())
		require.NoError(t, err)
		require.ErrorIs(t, cache.Write("", nil), errInvalidID)
		require.ErrorIs(t, cache.Read("", nil), errInvalidID)
		require.ErrorIs(t, cache.Delete(""), errInvalidID)
	})
}
