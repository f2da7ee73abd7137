// Package ollama implements [stream.Stream] for Ollama.
package ollama

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/fastask/fastask/internal/proto"
	"github.com/fastask/fastask/internal/stream"
	"github.com/ollama/ollama/api"
)

var _ stream.Client = &Client{}

// Config represents the configuration for the Ollama API client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
}

// DefaultConfig returns the default configuration for the Ollama API client.
func DefaultConfig() Config {
	return Config{
		BaseURL:    "http://localhost:11434/",
		HTTPClient: &http.Client{},
	}
}

// Client ollama client.
type Client struct {
	*api.Client
}

// New creates a new [Client] with the given [Config].
func New(config Config) (*Client, error) {
	u, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	client := api.NewClient(u, config.HTTPClient)
	return &Client{
		Client: client,
	}, nil
}

// Request implements stream.Client.
func (c *Client) Request(ctx context.Context, request proto.Request) stream.Stream {
	streaming := request.Stream == nil || *request.Stream
	body := api.ChatRequest{
		Model:    request.Model,
		Messages: fromProtoMessages(request.Messages),
		Stream:   &streaming,
		Options:  map[string]any{},
	}

	if len(request.Stop) > 0 {
		body.Options["stop"] = request.Stop[0]
	}
	if request.MaxTokens != nil {
		body.Options["num_ctx"] = *request.MaxTokens
	}
	if request.Temperature != nil {
		body.Options["temperature"] = *request.Temperature
	}
	if request.TopP != nil {
		body.Options["top_p"] = *request.TopP
	}

	s := &Stream{
		ctx:      ctx,
		request:  body,
		messages: request.Messages,
		respCh:   make(chan api.ChatResponse),
		doneCh:   make(chan struct{}),
	}
	go func() {
		defer close(s.doneCh)
		if err := c.Chat(ctx, &s.request, s.fn); err != nil {
			s.setErr(err)
		}
	}()
	return s
}

// Stream ollama stream.
type Stream struct {
	ctx      context.Context
	request  api.ChatRequest
	closed   bool
	respCh   chan api.ChatResponse
	doneCh   chan struct{}
	current  api.ChatResponse
	message  api.Message
	messages []proto.Message

	// err is written by the goroutine driving [api.Client.Chat] and read by
	// the consumer, so it needs the lock.
	mu  sync.Mutex
	err error
}

func (s *Stream) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *Stream) fn(resp api.ChatResponse) error {
	select {
	case s.respCh <- resp:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err() //nolint:wrapcheck
	}
}

// Close implements stream.Stream.
func (s *Stream) Close() error {
	if !s.closed {
		s.closed = true
	}
	return nil
}

// Current implements stream.Stream.
func (s *Stream) Current() (proto.Chunk, error) {
	content := s.current.Message.Content
	if content == "" {
		return proto.Chunk{}, stream.ErrNoContent
	}
	return proto.Chunk{Content: content}, nil
}

// Err implements stream.Stream.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Messages implements stream.Stream.
func (s *Stream) Messages() []proto.Message { return s.messages }

// Next implements stream.Stream.
func (s *Stream) Next() bool {
	if s.Err() != nil || s.closed {
		return false
	}
	select {
	case resp := <-s.respCh:
		s.current = resp
		s.message.Role = proto.RoleAssistant
		s.message.Content += resp.Message.Content
		if resp.Done {
			s.closed = true
			s.messages = append(s.messages, toProtoMessage(s.message))
		}
		return true
	case <-s.doneCh:
		return false
	}
}
