package coursedex

import (
	"context"
	"net/http"
)

// AssistantService proxies admin chat to the configured provider.
type AssistantService struct {
	client *Client
}

// Assistant returns the chat service.
func (c *Client) Assistant() *AssistantService {
	return &AssistantService{client: c}
}

// Chat sends the conversation and returns the assistant's reply.
func (s *AssistantService) Chat(ctx context.Context, messages []ChatMessage) (ChatReply, error) {
	req := struct {
		Messages []ChatMessage `json:"messages"`
	}{Messages: messages}

	var out ChatReply
	err := s.client.doJSON(ctx, "assistant_chat", http.MethodPost, "/assistant/chat", req, &out)
	return out, err
}
