package chat

import (
	"time"

	"github.com/partdesk/backend/internal/model/part"
)

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a session's ordered history. Turns are immutable
// once appended; user turns carry the scope decision and the processed
// (possibly rewritten) content, assistant turns carry the part binding the
// follow-up resolver reads back later.
type Turn struct {
	ID               string       `json:"id"`
	Role             Role         `json:"role"`
	Content          string       `json:"content"`
	ProcessedContent string       `json:"processedContent,omitempty"`
	InScope          *bool        `json:"inScope,omitempty"`
	ScopeReason      string       `json:"scopeReason,omitempty"`
	Binding          *part.Record `json:"binding,omitempty"`
	CreatedAt        time.Time    `json:"createdAt"`
}

// EffectiveContent returns the processed content for user turns when one was
// recorded, so downstream generation sees the rewritten message.
func (t Turn) EffectiveContent() string {
	if t.Role == RoleUser && t.ProcessedContent != "" {
		return t.ProcessedContent
	}
	return t.Content
}

// UserTurn builds a user turn with its scope decision attached.
func UserTurn(content, processed string, inScope bool, reason string) Turn {
	return Turn{
		Role:             RoleUser,
		Content:          content,
		ProcessedContent: processed,
		InScope:          &inScope,
		ScopeReason:      reason,
		CreatedAt:        time.Now().UTC(),
	}
}

// AssistantTurn builds an assistant turn, optionally bound to the part the
// reply was grounded on.
func AssistantTurn(content string, binding *part.Record) Turn {
	return Turn{
		Role:      RoleAssistant,
		Content:   content,
		Binding:   binding,
		CreatedAt: time.Now().UTC(),
	}
}
