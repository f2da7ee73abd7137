package anthropic

import (
	"encoding/base64"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fastask/fastask/internal/proto"
)

// fromProtoMessages splits the conversation into the system blocks and the
// message list: Anthropic takes system instructions outside of the messages.
func fromProtoMessages(input []proto.Message) (system []anthropic.TextBlockParam, messages []anthropic.MessageParam) {
	for _, msg := range input {
		switch msg.Role {
		case proto.RoleSystem:
			system = append(system, *anthropic.NewTextBlock(msg.Content).OfText)
		case proto.RoleUser:
			blocks := []anthropic.ContentBlockParamUnion{
				anthropic.NewTextBlock(msg.Content),
			}
			for _, img := range msg.Images {
				blocks = append(blocks, anthropic.NewImageBlockBase64(
					img.MimeType,
					base64.StdEncoding.EncodeToString(img.Data),
				))
			}
			messages = append(messages, anthropic.NewUserMessage(blocks...))
		case proto.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return system, messages
}

func toProtoMessages(system []anthropic.TextBlockParam, input []anthropic.MessageParam) []proto.Message {
	var messages []proto.Message
	for _, blk := range system {
		messages = append(messages, proto.Message{
			Role:    proto.RoleSystem,
			Content: blk.Text,
		})
	}
	for _, in := range input {
		msg := proto.Message{
			Role: string(in.Role),
		}
		for _, c := range in.Content {
			if block := c.OfText; block != nil {
				msg.Content += block.Text
			}
		}
		messages = append(messages, msg)
	}
	return messages
}
