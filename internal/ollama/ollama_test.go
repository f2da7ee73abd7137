package ollama

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fastask/fastask/internal/proto"
	"github.com/stretchr/testify/require"
)

func TestStream(t *testing.T) {
	request := proto.Request{
		Model: "llama3.2",
		Messages: []proto.Message{
			{Role: proto.RoleUser, Content: "first 4 numbers"},
		},
	}

	t.Run("accumulates chunks", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/x-ndjson")
			_, _ = w.Write([]byte(`{"model":"llama3.2","message":{"role":"assistant","content":"1, 2"},"done":false}` + "\n"))
			_, _ = w.Write([]byte(`{"model":"llama3.2","message":{"role":"assistant","content":", 3, 4"},"done":true}` + "\n"))
		}))
		t.Cleanup(srv.Close)

		client, err := New(Config{BaseURL: srv.URL, HTTPClient: srv.Client()})
		require.NoError(t, err)

		s := client.Request(context.Background(), request)
		require.True(t, s.Next())
		chunk, err := s.Current()
		require.NoError(t, err)
		require.Equal(t, "1, 2", chunk.Content)
		require.True(t, s.Next())
		require.False(t, s.Next())
		require.NoError(t, s.Err())

		messages := s.Messages()
		require.Len(t, messages, 2)
		require.Equal(t, proto.RoleAssistant, messages[1].Role)
		require.Equal(t, "1, 2, 3, 4", messages[1].Content)
		require.NoError(t, s.Close())
	})

	t.Run("surfaces the server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error":"model not loaded"}`, http.StatusInternalServerError)
		}))
		t.Cleanup(srv.Close)

		client, err := New(Config{BaseURL: srv.URL, HTTPClient: srv.Client()})
		require.NoError(t, err)

		s := client.Request(context.Background(), request)
		require.False(t, s.Next())
		require.Error(t, s.Err())
		require.NoError(t, s.Close())
	})
}
