// Package assistant proxies admin chat requests to an OpenAI-compatible
// completion provider.
package assistant

import (
	"context"
	"fmt"

	"github.com/campus-cloud/coursedex/internal/domain"
)

// MaxMessages caps conversation length per request.
const MaxMessages = 50

// Service validates chat requests and forwards them to the provider.
type Service struct {
	provider Provider
}

// New creates an assistant service.
func New(provider Provider) *Service {
	return &Service{provider: provider}
}

// Chat validates the conversation and returns the provider's reply.
func (s *Service) Chat(ctx context.Context, messages []Message) (Reply, error) {
	if len(messages) == 0 {
		return Reply{}, fmt.Errorf("%w: at least one message is required", domain.ErrInvalidQuery)
	}
	if len(messages) > MaxMessages {
		return Reply{}, fmt.Errorf("%w: too many messages (max %d)", domain.ErrInvalidQuery, MaxMessages)
	}
	for i, m := range messages {
		switch m.Role {
		case RoleSystem, RoleUser, RoleAssistant:
			// ok
		default:
			return Reply{}, fmt.Errorf("%w: message %d has unknown role %q", domain.ErrInvalidQuery, i, m.Role)
		}
		if m.Content == "" {
			return Reply{}, fmt.Errorf("%w: message %d is empty", domain.ErrInvalidQuery, i)
		}
	}

	reply, err := s.provider.Chat(ctx, messages)
	if err != nil {
		return Reply{}, fmt.Errorf("chat completion: %w", err)
	}
	return reply, nil
}
