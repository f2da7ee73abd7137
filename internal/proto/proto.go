// Package proto holds the provider-neutral conversation types.
package proto

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Chunk is a streaming chunk of text.
type Chunk struct {
	Content string
}

// ImageContent is an image attached to a message.
type ImageContent struct {
	Data     []byte
	MimeType string
	Filename string
}

// DataURI encodes the image as a base64 data URI suitable for
// OpenAI-compatible vision APIs.
func (i ImageContent) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", i.MimeType, base64.StdEncoding.EncodeToString(i.Data))
}

// Message is a message in the conversation.
type Message struct {
	Role    string
	Content string
	Images  []ImageContent
}

// Request is a chat request.
type Request struct {
	Messages    []Message
	API         string
	Model       string
	User        string
	Temperature *float64
	TopP        *float64
	Stop        []string
	MaxTokens   *int64
	Stream      *bool
}

// Conversation is a conversation.
type Conversation []Message

func (cc Conversation) String() string {
	var sb strings.Builder
	for _, msg := range cc {
		if msg.Content == "" && len(msg.Images) == 0 {
			continue
		}
		switch msg.Role {
		case RoleSystem:
			sb.WriteString("**System**: ")
		case RoleUser:
			sb.WriteString("**User**: ")
		case RoleAssistant:
			sb.WriteString("**Assistant**: ")
		}
		sb.WriteString(msg.Content)
		for _, img := range msg.Images {
			sb.WriteString(fmt.Sprintf("\n*(attachment: %s)*", img.Filename))
		}
		sb.WriteString("\n\n")
	}
	return sb.String()
}
