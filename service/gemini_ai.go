package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/tieubaoca/medguide-be/types"
	"google.golang.org/api/option"
)

// GeminiService is the alternate AIService backend. It rotates across the
// configured API keys when a request fails.
type GeminiService struct {
	apiKeys       []string
	currentKey    int
	client        *genai.Client
	functionsCall map[string]types.FunctionHandler
	tools         []*genai.Tool
	mu            sync.Mutex
}

func NewGeminiService(apiKeys []string) (*GeminiService, error) {
	if len(apiKeys) == 0 {
		return nil, errors.New("no API keys provided")
	}

	service := &GeminiService{
		apiKeys:       apiKeys,
		currentKey:    0,
		functionsCall: make(map[string]types.FunctionHandler),
	}
	if err := service.initClient(); err != nil {
		return nil, err
	}
	return service, nil
}

func (s *GeminiService) initClient() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(s.apiKeys[s.currentKey]))
	if err != nil {
		return err
	}
	s.client = client
	return nil
}

func (s *GeminiService) rotateAPIKey() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	if err := s.client.Close(); err != nil {
		return err
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(s.apiKeys[s.currentKey]))
	if err != nil {
		return err
	}
	s.client = client
	return nil
}

func (s *GeminiService) Chat(ctx context.Context, agent types.AgentConfig, messages []types.Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("no messages provided")
	}

	model := s.buildModel(agent)

	// All but the last message become chat history; gemini names the
	// assistant role "model".
	history := make([]*genai.Content, 0, len(messages)-1)
	for _, msg := range messages[:len(messages)-1] {
		role := "user"
		if msg.Role == types.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Parts: []genai.Part{genai.Text(msg.Content)},
			Role:  role,
		})
	}
	prompt := messages[len(messages)-1].Content

	chat := model.StartChat()
	chat.History = history

	resp, err := chat.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		if err := s.rotateAPIKey(); err != nil {
			return "", err
		}
		model = s.buildModel(agent)
		chat = model.StartChat()
		chat.History = history
		resp, err = chat.SendMessage(ctx, genai.Text(prompt))
		if err != nil {
			return "", err
		}
	}

	if len(resp.Candidates) == 0 {
		return "", errors.New("no response generated")
	}

	candidate := resp.Candidates[0]
	if funcs := candidate.FunctionCalls(); len(funcs) > 0 {
		resp, err = s.handleFunctionCall(ctx, chat, funcs)
		if err != nil {
			return "", err
		}
	}

	content := ""
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					content += string(text)
				}
			}
		}
	}
	return content, nil
}

func (s *GeminiService) buildModel(agent types.AgentConfig) *genai.GenerativeModel {
	name := agent.Model
	if name == "" {
		name = "gemini-1.5-flash"
	}
	model := s.client.GenerativeModel(name)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(agent.SystemPrompt())},
	}
	if agent.Temperature > 0 {
		model.SetTemperature(agent.Temperature)
	}
	model.Tools = s.tools
	return model
}

func (s *GeminiService) handleFunctionCall(ctx context.Context, chat *genai.ChatSession, functions []genai.FunctionCall) (*genai.GenerateContentResponse, error) {
	funcResults := []genai.Part{}
	for _, function := range functions {
		handler, exists := s.functionsCall[function.Name]
		if !exists {
			return nil, fmt.Errorf("unknown function: %s", function.Name)
		}
		argsBytes, err := json.Marshal(function.Args)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal function args: %v", err)
		}
		result, err := handler(ctx, argsBytes)
		if err != nil {
			return nil, fmt.Errorf("function execution failed: %v", err)
		}
		funcResults = append(funcResults, genai.FunctionResponse{
			Name:     function.Name,
			Response: map[string]any{"result": result},
		})
	}
	resp, err := chat.SendMessage(ctx, funcResults...)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 {
		return nil, errors.New("no response generated")
	}
	candidate := resp.Candidates[0]
	if funcs := candidate.FunctionCalls(); len(funcs) > 0 {
		return s.handleFunctionCall(ctx, chat, funcs)
	}
	return resp, nil
}

// RegisterFunction adds a new function to the model's capabilities
func (s *GeminiService) RegisterFunction(name, description string, parameters map[string]*genai.Schema, handler types.FunctionHandler) {
	functionDeclaration := &genai.FunctionDeclaration{
		Name:        name,
		Description: description,
		Parameters: &genai.Schema{
			Type:       genai.TypeObject,
			Properties: parameters,
			Required:   make([]string, 0, len(parameters)),
		},
	}
	for paramName := range parameters {
		functionDeclaration.Parameters.Required = append(
			functionDeclaration.Parameters.Required,
			paramName,
		)
	}
	s.tools = append(s.tools, &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{functionDeclaration},
	})
	s.functionsCall[name] = handler
}
