// Package stream provides interfaces for streaming conversations.
package stream

import (
	"context"
	"errors"

	"github.com/fastask/fastask/internal/proto"
)

// ErrNoContent happens when the client is returning no content.
var ErrNoContent = errors.New("no content")

// Client is a streaming client.
type Client interface {
	Request(context.Context, proto.Request) Stream
}

// Stream is an ongoing stream.
type Stream interface {
	// Next returns false when there are no more chunks. Canceling the
	// request context stops the stream mid-generation.
	Next() bool

	// Current returns the current chunk. Implementations accumulate
	// chunks into a message and keep their internal conversation state.
	Current() (proto.Chunk, error)

	// Close closes the underlying stream.
	Close() error

	// Err returns the streaming error, if any.
	Err() error

	// Messages returns the whole conversation.
	Messages() []proto.Message
}
