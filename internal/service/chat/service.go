// Package chat implements the conversation context-resolution engine: scope
// classification, follow-up resolution, grounding assembly, generation
// delegation, and atomic history commits.
package chat

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/partdesk/backend/internal/analysis/extract"
	"github.com/partdesk/backend/internal/analysis/followup"
	"github.com/partdesk/backend/internal/analysis/scope"
	"github.com/partdesk/backend/internal/model/chat"
	"github.com/partdesk/backend/internal/model/part"
	"github.com/partdesk/backend/internal/service/session"
)

// ErrEmptyMessage rejects requests without message text before any state
// mutation.
var ErrEmptyMessage = errors.New("message text is required")

// Knowledge is the read-only catalog surface the engine grounds replies on.
// Implementations degrade failures to empty results.
type Knowledge interface {
	FetchPart(ctx context.Context, id string) *part.Record
	RelatedRepairs(ctx context.Context, partID string) []part.Repair
	SearchRepairs(ctx context.Context, symptom, product string, limit int) []part.Repair
	SearchBlogs(ctx context.Context, query string, limit int) []part.Blog
}

// Generator is the stateless text-generation collaborator.
type Generator interface {
	Generate(ctx context.Context, systemPrompt string, history []chat.Turn, query, groundingContext string) (string, error)
	Stream(ctx context.Context, systemPrompt string, history []chat.Turn, query, groundingContext string, onDelta func(string)) (string, error)
	StreamingEnabled() bool
}

// Service is the single entry point the transport layer talks to.
type Service struct {
	sessions  *session.Store
	catalog   Knowledge
	generator Generator
}

// NewService wires the engine to its collaborators.
func NewService(sessions *session.Store, catalog Knowledge, generator Generator) *Service {
	return &Service{sessions: sessions, catalog: catalog, generator: generator}
}

// Result is the outcome of one handled message.
type Result struct {
	Reply string
	Part  *part.Record
}

// Sessions exposes the underlying store for reset and transcript access.
func (s *Service) Sessions() *session.Store {
	return s.sessions
}

// HandleMessage runs the full pipeline for one inbound message and commits
// the resulting turn pair.
func (s *Service) HandleMessage(ctx context.Context, sessionID, text string) (Result, error) {
	return s.handle(ctx, sessionID, text, nil)
}

// HandleMessageStream behaves like HandleMessage but forwards generation
// deltas to onDelta when streaming is enabled.
func (s *Service) HandleMessageStream(ctx context.Context, sessionID, text string, onDelta func(string)) (Result, error) {
	return s.handle(ctx, sessionID, text, onDelta)
}

func (s *Service) handle(ctx context.Context, sessionID, text string, onDelta func(string)) (res Result, err error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyMessage
	}

	// Internal failures must never escape the engine: the user-facing
	// contract is always a reply or a clear decline.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[chat] unexpected failure handling message for session=%s: %v", sessionID, r)
			res = Result{Reply: apologyReply}
			err = nil
		}
	}()

	// The per-session lock is held for the whole request: same-session
	// requests serialize, cross-session requests run fully parallel, and
	// "most recent turn" reads stay consistent with the final append.
	sess := s.sessions.GetOrCreate(sessionID)
	sess.Lock()
	defer sess.Unlock()

	history := sess.Turns()

	if extract.IsModelNumberOnly(text) {
		model := strings.TrimSpace(text)
		reply := modelNumberReply(model, extract.ApplianceTypeFromModel(model))
		sess.Append(
			chat.UserTurn(text, "", true, string(scope.ReasonModelPattern)),
			chat.AssistantTurn(reply, nil),
		)
		return Result{Reply: reply}, nil
	}

	binding := resolveFollowUp(text, history)

	var decision scope.Decision
	if binding != nil {
		// A resolved binding is authoritative: scope is inherited without
		// re-classification.
		decision = scope.Decision{InScope: true, Reason: scope.ReasonFollowUp}
		log.Printf("[chat] follow-up resolved to part %s for session=%s", binding.PartID, sessionID)
	} else {
		decision = scope.Classify(text, history)
	}

	if !decision.InScope {
		sess.Append(
			chat.UserTurn(text, "", false, string(decision.Reason)),
			chat.AssistantTurn(declineReply, nil),
		)
		return Result{Reply: declineReply}, nil
	}

	assembled := s.assemble(ctx, text, binding)

	reply, genErr := s.generate(ctx, history, assembled, onDelta)
	if genErr != nil {
		// An abandoned request commits nothing; a failed one still gets
		// its fallback pair so the session never loses a turn.
		if ctx.Err() != nil {
			return Result{}, genErr
		}
		log.Printf("[chat] generation failed for session=%s: %v", sessionID, genErr)
		reply = apologyReply
	}

	processed := ""
	if assembled.Rewritten != text {
		processed = assembled.Rewritten
	}
	sess.Append(
		chat.UserTurn(text, processed, true, string(decision.Reason)),
		chat.AssistantTurn(reply, assembled.Primary),
	)

	return Result{Reply: reply, Part: assembled.Primary}, nil
}

func (s *Service) generate(ctx context.Context, history []chat.Turn, a assembled, onDelta func(string)) (string, error) {
	if s.generator == nil {
		return "", errors.New("generation service unavailable")
	}
	if onDelta != nil && s.generator.StreamingEnabled() {
		return s.generator.Stream(ctx, systemPrompt, history, a.Rewritten, a.Grounding, onDelta)
	}
	return s.generator.Generate(ctx, systemPrompt, history, a.Rewritten, a.Grounding)
}

// resolveFollowUp binds a short ambiguous message to the most recent
// assistant turn that carries a part binding. The pronoun/topical predicate
// is shared with the scope classifier's inheritance step.
func resolveFollowUp(text string, history []chat.Turn) *part.Record {
	if len(history) == 0 || !followup.Likely(text) {
		return nil
	}
	for i := len(history) - 1; i >= 0; i-- {
		turn := history[i]
		if turn.Role == chat.RoleAssistant && turn.Binding != nil {
			return turn.Binding
		}
	}
	return nil
}
