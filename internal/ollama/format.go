package ollama

import (
	"github.com/fastask/fastask/internal/proto"
	"github.com/ollama/ollama/api"
)

func fromProtoMessages(input []proto.Message) []api.Message {
	messages := make([]api.Message, 0, len(input))
	for _, msg := range input {
		m := api.Message{
			Role:    msg.Role,
			Content: msg.Content,
		}
		for _, img := range msg.Images {
			m.Images = append(m.Images, api.ImageData(img.Data))
		}
		messages = append(messages, m)
	}
	return messages
}

func toProtoMessage(in api.Message) proto.Message {
	return proto.Message{
		Role:    in.Role,
		Content: in.Content,
	}
}
