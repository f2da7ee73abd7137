package proto

import (
	"testing"

	"github.com/charmbracelet/x/exp/golden"
)

func TestStringer(t *testing.T) {
	messages := []Message{
		{
			Role:    RoleSystem,
			Content: "answer briefly and to the point",
		},
		{
			Role:    RoleUser,
			Content: "first 4 natural numbers",
		},
		{
			Role:    RoleAssistant,
			Content: "1, 2, 3, 4",
		},
		{
			Role:    RoleUser,
			Content: "what is on this screenshot?",
			Images: []ImageContent{
				{
					Data:     []byte("not really a png"),
					MimeType: "image/png",
					Filename: "screenshot_20250101_120000.png",
				},
			},
		},
		{
			Role:    RoleAssistant,
			Content: "a list of numbers",
		},
	}

	golden.RequireEqual(t, []byte(Conversation(messages).String()))
}

func TestDataURI(t *testing.T) {
	img := ImageContent{
		Data:     []byte("abc"),
		MimeType: "image/png",
		Filename: "x.png",
	}
	const want = "data:image/png;base64,YWJj"
	if got := img.DataURI(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
