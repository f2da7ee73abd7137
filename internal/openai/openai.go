// Package openai implements [stream.Stream] for OpenAI-compatible APIs.
package openai

import (
	"context"
	"net/http"

	"github.com/fastask/fastask/internal/proto"
	"github.com/fastask/fastask/internal/stream"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
)

var _ stream.Client = &Client{}

// Client is the openai client.
type Client struct {
	*openai.Client
}

// Config represents the configuration for the OpenAI API client.
type Config struct {
	AuthToken  string
	BaseURL    string
	HTTPClient interface {
		Do(*http.Request) (*http.Response, error)
	}
	// ExtraHeaders is attached to every request. OpenRouter wants
	// HTTP-Referer and X-Title to identify the calling app.
	ExtraHeaders map[string]string
}

// DefaultConfig returns the default configuration for the OpenAI API client.
func DefaultConfig(authToken string) Config {
	return Config{
		AuthToken: authToken,
	}
}

// New creates a new [Client] with the given [Config].
func New(config Config) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(config.AuthToken),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	if config.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(config.HTTPClient))
	}
	for k, v := range config.ExtraHeaders {
		opts = append(opts, option.WithHeader(k, v))
	}
	client := openai.NewClient(opts...)
	return &Client{
		Client: &client,
	}
}

// Request makes a new request and returns a stream.
func (c *Client) Request(ctx context.Context, request proto.Request) stream.Stream {
	body := openai.ChatCompletionNewParams{
		Model:    request.Model,
		Messages: fromProtoMessages(request.Messages),
	}

	if request.User != "" {
		body.User = openai.String(request.User)
	}
	if request.Temperature != nil {
		body.Temperature = openai.Float(*request.Temperature)
	}
	if request.TopP != nil {
		body.TopP = openai.Float(*request.TopP)
	}
	if len(request.Stop) > 0 {
		body.Stop = openai.ChatCompletionNewParamsStopUnion{
			OfStringArray: request.Stop,
		}
	}
	if request.MaxTokens != nil {
		body.MaxTokens = openai.Int(*request.MaxTokens)
	}

	if request.Stream != nil && !*request.Stream {
		resp, err := c.Chat.Completions.New(ctx, body)
		return &singleResponse{
			response: resp,
			err:      err,
			messages: request.Messages,
		}
	}

	s := &Stream{
		stream:   c.Chat.Completions.NewStreaming(ctx, body),
		request:  body,
		messages: request.Messages,
	}
	s.factory = func() *ssestream.Stream[openai.ChatCompletionChunk] {
		return c.Chat.Completions.NewStreaming(ctx, s.request)
	}
	return s
}

// Stream openai stream.
type Stream struct {
	done     bool
	request  openai.ChatCompletionNewParams
	stream   *ssestream.Stream[openai.ChatCompletionChunk]
	factory  func() *ssestream.Stream[openai.ChatCompletionChunk]
	message  openai.ChatCompletionAccumulator
	messages []proto.Message
}

// Close implements stream.Stream.
func (s *Stream) Close() error { return s.stream.Close() } //nolint:wrapcheck

// Current implements stream.Stream.
func (s *Stream) Current() (proto.Chunk, error) {
	event := s.stream.Current()
	s.message.AddChunk(event)
	if len(event.Choices) > 0 {
		return proto.Chunk{
			Content: event.Choices[0].Delta.Content,
		}, nil
	}
	return proto.Chunk{}, stream.ErrNoContent
}

// Err implements stream.Stream.
func (s *Stream) Err() error { return s.stream.Err() } //nolint:wrapcheck

// Messages implements stream.Stream.
func (s *Stream) Messages() []proto.Message { return s.messages }

// Next implements stream.Stream.
func (s *Stream) Next() bool {
	if s.done {
		s.done = false
		s.stream = s.factory()
		s.message = openai.ChatCompletionAccumulator{}
	}

	if s.stream.Next() {
		return true
	}

	s.done = true
	if len(s.message.Choices) > 0 {
		msg := s.message.Choices[0].Message.ToParam()
		s.request.Messages = append(s.request.Messages, msg)
		s.messages = append(s.messages, toProtoMessage(msg))
	}

	return false
}

// singleResponse wraps a non-streaming chat completion to implement
// stream.Stream.
type singleResponse struct {
	response *openai.ChatCompletion
	err      error
	messages []proto.Message
	consumed bool
}

// Next implements stream.Stream.
func (w *singleResponse) Next() bool {
	if w.consumed {
		return false
	}
	w.consumed = true
	return w.err == nil && w.response != nil
}

// Current implements stream.Stream.
func (w *singleResponse) Current() (proto.Chunk, error) {
	if w.err != nil {
		return proto.Chunk{}, w.err //nolint:wrapcheck
	}
	if w.response == nil || len(w.response.Choices) == 0 {
		return proto.Chunk{}, stream.ErrNoContent
	}
	msg := w.response.Choices[0].Message
	w.messages = append(w.messages, proto.Message{
		Role:    proto.RoleAssistant,
		Content: msg.Content,
	})
	return proto.Chunk{Content: msg.Content}, nil
}

// Close implements stream.Stream.
func (w *singleResponse) Close() error { return nil }

// Err implements stream.Stream.
func (w *singleResponse) Err() error { return w.err } //nolint:wrapcheck

// Messages implements stream.Stream.
func (w *singleResponse) Messages() []proto.Message { return w.messages }
