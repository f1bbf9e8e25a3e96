// Package ai wraps the external text-generation service behind an eino
// prompt/model chain. It is stateless: conversation grounding arrives with
// every call.
package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/partdesk/backend/internal/config"
	"github.com/partdesk/backend/internal/model/chat"
)

// historyLimit caps the turns forwarded to the model to stay inside token
// limits.
const historyLimit = 10

// Service generates assistant replies from a system prompt, bounded history,
// and grounding context.
type Service struct {
	chatModel model.ChatModel
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService compiles the generation chain for the configured chat model.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile generation chain: %w", err)
	}

	return &Service{chatModel: chatModel, cfg: cfg, chain: runnable}, nil
}

// StreamingEnabled indicates whether delta streaming is configured.
func (s *Service) StreamingEnabled() bool {
	return s.cfg.StreamResponse
}

// Generate produces a complete reply. groundingContext, when non-empty, is
// folded into the system message so the model answers from catalog facts
// rather than conversational memory alone.
func (s *Service) Generate(ctx context.Context, systemPrompt string, history []chat.Turn, query, groundingContext string) (string, error) {
	input := buildChainInput(systemPrompt, history, query, groundingContext)

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run generation chain: %w", err)
	}

	log.Printf("[ai] generated reply, history=%d, length=%d", len(history), len(response.Content))
	return response.Content, nil
}

// Stream produces a reply while forwarding each content delta to onDelta,
// returning the concatenated reply.
func (s *Service) Stream(ctx context.Context, systemPrompt string, history []chat.Turn, query, groundingContext string, onDelta func(string)) (string, error) {
	input := buildChainInput(systemPrompt, history, query, groundingContext)

	stream, err := s.chain.Stream(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to stream generation chain: %w", err)
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", recvErr
		}
		if chunk == nil {
			continue
		}

		chunks = append(chunks, chunk)
		if chunk.Content != "" && onDelta != nil {
			onDelta(chunk.Content)
		}
	}

	response, err := schema.ConcatMessages(chunks)
	if err != nil {
		return "", err
	}
	return response.Content, nil
}

func buildChainInput(systemPrompt string, history []chat.Turn, query, groundingContext string) map[string]any {
	system := systemPrompt
	if groundingContext != "" {
		system += "\n\nAdditional context from database lookup:" + groundingContext
	}

	return map[string]any{
		"system":  system,
		"history": buildHistoryMessages(history),
		"query":   query,
	}
}

// buildHistoryMessages converts the most recent turns into model messages,
// preferring processed content for user turns.
func buildHistoryMessages(turns []chat.Turn) []*schema.Message {
	if len(turns) == 0 {
		return nil
	}

	startIdx := 0
	if len(turns) > historyLimit {
		startIdx = len(turns) - historyLimit
	}

	history := make([]*schema.Message, 0, len(turns)-startIdx)
	for _, turn := range turns[startIdx:] {
		switch turn.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(turn.EffectiveContent()))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(turn.Content, nil))
		}
	}
	return history
}
