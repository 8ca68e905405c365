package service

import (
	"context"

	"github.com/tieubaoca/medguide-be/types"
)

// AIService is the hosted-model boundary. Each call carries the typed agent
// configuration so a backend knows which model, temperature and system
// prompt to apply.
type AIService interface {
	Chat(ctx context.Context, agent types.AgentConfig, messages []types.Message) (string, error)
}
