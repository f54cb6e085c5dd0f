package chat

import (
	"context"
	"fmt"

	"github.com/ternarybob/carto/internal/interfaces"
)

// DisabledService is the ChatService used when no LLM credentials are
// configured. Direct map lookups keep working; chat requests get a clear
// configuration error instead of a crash at startup.
type DisabledService struct {
	reason string
}

// NewDisabledService creates a chat service that rejects all requests.
func NewDisabledService(reason string) *DisabledService {
	return &DisabledService{reason: reason}
}

func (s *DisabledService) Chat(context.Context, *interfaces.ChatRequest) (*interfaces.ChatResponse, error) {
	return nil, fmt.Errorf("chat is disabled: %s", s.reason)
}

func (s *DisabledService) HealthCheck(context.Context) error {
	return fmt.Errorf("chat is disabled: %s", s.reason)
}

var _ interfaces.ChatService = (*DisabledService)(nil)
