package chat_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	chatmodel "github.com/partdesk/backend/internal/model/chat"
	"github.com/partdesk/backend/internal/model/part"
	"github.com/partdesk/backend/internal/service/chat"
	"github.com/partdesk/backend/internal/service/session"
)

var iceMaker = part.Record{
	PartID: "PS11752778", MPNID: "W10882923", Name: "Ice Maker Assembly",
	Price: 149.99, InstallDifficulty: "Moderate", InstallTime: "45-60 min",
	Brand:      "Whirlpool",
	ProductURL: "https://www.partselect.com/PS11752778-Whirlpool-W10882923-Ice-Maker-Assembly.htm",
}

type fakeCatalog struct {
	parts   map[string]part.Record
	related map[string][]part.Repair
	repairs []part.Repair
	blogs   []part.Blog
}

func (c *fakeCatalog) FetchPart(_ context.Context, id string) *part.Record {
	if record, ok := c.parts[id]; ok {
		return &record
	}
	return nil
}

func (c *fakeCatalog) RelatedRepairs(_ context.Context, partID string) []part.Repair {
	return c.related[partID]
}

func (c *fakeCatalog) SearchRepairs(_ context.Context, _, _ string, limit int) []part.Repair {
	if len(c.repairs) > limit {
		return c.repairs[:limit]
	}
	return c.repairs
}

func (c *fakeCatalog) SearchBlogs(_ context.Context, _ string, limit int) []part.Blog {
	if len(c.blogs) > limit {
		return c.blogs[:limit]
	}
	return c.blogs
}

type fakeGenerator struct {
	reply     string
	err       error
	streaming bool

	calls         int
	lastQuery     string
	lastGrounding string
	lastHistory   []chatmodel.Turn
}

func (g *fakeGenerator) Generate(ctx context.Context, _ string, history []chatmodel.Turn, query, grounding string) (string, error) {
	g.calls++
	g.lastHistory = history
	g.lastQuery = query
	g.lastGrounding = grounding
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return g.reply, g.err
}

func (g *fakeGenerator) Stream(ctx context.Context, sys string, history []chatmodel.Turn, query, grounding string, onDelta func(string)) (string, error) {
	reply, err := g.Generate(ctx, sys, history, query, grounding)
	if err != nil {
		return "", err
	}
	for _, word := range strings.SplitAfter(reply, " ") {
		onDelta(word)
	}
	return reply, nil
}

func (g *fakeGenerator) StreamingEnabled() bool { return g.streaming }

func newTestService(generator chat.Generator) (*chat.Service, *fakeCatalog) {
	catalog := &fakeCatalog{parts: map[string]part.Record{iceMaker.PartID: iceMaker}}
	return chat.NewService(session.NewStore(), catalog, generator), catalog
}

func turnsOf(t *testing.T, svc *chat.Service, sessionID string) []chatmodel.Turn {
	t.Helper()
	return svc.Sessions().GetOrCreate(sessionID).Turns()
}

func TestHandleMessageGroundsExplicitPartID(t *testing.T) {
	gen := &fakeGenerator{reply: "That part is easy to install."}
	svc, _ := newTestService(gen)

	res, err := svc.HandleMessage(context.Background(), "s1", "How do I install part number PS11752778?")
	if err != nil {
		t.Fatalf("HandleMessage err: %v", err)
	}
	if res.Reply != gen.reply {
		t.Fatalf("unexpected reply: %q", res.Reply)
	}
	if res.Part == nil || res.Part.PartID != "PS11752778" {
		t.Fatalf("expected the resolved part on the result, got %+v", res.Part)
	}

	if !strings.Contains(gen.lastGrounding, "Part information:") {
		t.Errorf("grounding missing part block:\n%s", gen.lastGrounding)
	}
	if !strings.Contains(gen.lastGrounding, "Installation difficulty: Moderate") {
		t.Errorf("grounding missing installation block:\n%s", gen.lastGrounding)
	}
	if !strings.Contains(gen.lastGrounding, "IMPORTANT: This message is about Ice Maker Assembly (PS11752778)") {
		t.Errorf("grounding missing summary block:\n%s", gen.lastGrounding)
	}
	if !strings.Contains(gen.lastGrounding, iceMaker.ProductURL+"#compatibility") {
		t.Errorf("grounding missing compatibility link:\n%s", gen.lastGrounding)
	}

	turns := turnsOf(t, svc, "s1")
	if len(turns) != 2 {
		t.Fatalf("expected a committed turn pair, got %d turns", len(turns))
	}
	user, assistant := turns[0], turns[1]
	if user.Role != chatmodel.RoleUser || user.InScope == nil || !*user.InScope {
		t.Fatalf("unexpected user turn: %+v", user)
	}
	if assistant.Role != chatmodel.RoleAssistant || assistant.Binding == nil || assistant.Binding.PartID != "PS11752778" {
		t.Fatalf("expected assistant turn bound to the part, got %+v", assistant)
	}
}

func TestHandleMessageBarePartID(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	svc, _ := newTestService(gen)

	res, err := svc.HandleMessage(context.Background(), "s1", "PS11752778")
	if err != nil {
		t.Fatalf("HandleMessage err: %v", err)
	}
	if res.Part == nil || res.Part.PartID != "PS11752778" {
		t.Fatalf("expected the part resolved from the bare id, got %+v", res.Part)
	}
	if gen.calls != 1 {
		t.Fatalf("expected one generation call, got %d", gen.calls)
	}
}

func TestHandleMessageResolvesFollowUp(t *testing.T) {
	gen := &fakeGenerator{reply: "It costs $149.99."}
	svc, _ := newTestService(gen)
	ctx := context.Background()

	if _, err := svc.HandleMessage(ctx, "s1", "Tell me about part number PS11752778"); err != nil {
		t.Fatalf("seed message err: %v", err)
	}

	res, err := svc.HandleMessage(ctx, "s1", "how much does it cost?")
	if err != nil {
		t.Fatalf("follow-up err: %v", err)
	}
	if res.Part == nil || res.Part.PartID != "PS11752778" {
		t.Fatalf("expected the inherited part, got %+v", res.Part)
	}

	wantPrefix := "Regarding part PS11752778 (Ice Maker Assembly): how much does it cost?"
	if gen.lastQuery != wantPrefix {
		t.Fatalf("expected rewritten query %q, got %q", wantPrefix, gen.lastQuery)
	}
	if !strings.Contains(gen.lastGrounding, "Price: $149.99") {
		t.Errorf("grounding missing price block:\n%s", gen.lastGrounding)
	}

	turns := turnsOf(t, svc, "s1")
	if len(turns) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(turns))
	}
	followUp := turns[2]
	if followUp.ScopeReason != "followUpInherited" {
		t.Fatalf("unexpected scope reason: %q", followUp.ScopeReason)
	}
	if followUp.ProcessedContent != wantPrefix {
		t.Fatalf("expected rewritten form recorded, got %q", followUp.ProcessedContent)
	}
	if followUp.Content != "how much does it cost?" {
		t.Fatalf("expected verbatim content preserved, got %q", followUp.Content)
	}
	if followUp.EffectiveContent() != wantPrefix {
		t.Fatalf("expected effective content to prefer the rewritten form")
	}
}

func TestHandleMessageFollowUpSurvivesCatalogMiss(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	svc, catalog := newTestService(gen)
	ctx := context.Background()

	if _, err := svc.HandleMessage(ctx, "s1", "Tell me about part number PS11752778"); err != nil {
		t.Fatalf("seed message err: %v", err)
	}

	// The bound record stays usable even when the catalog can no longer
	// resolve the id.
	delete(catalog.parts, "PS11752778")

	res, err := svc.HandleMessage(ctx, "s1", "is it hard to install?")
	if err != nil {
		t.Fatalf("follow-up err: %v", err)
	}
	if res.Part == nil || res.Part.Name != "Ice Maker Assembly" {
		t.Fatalf("expected the carried binding, got %+v", res.Part)
	}
}

func TestHandleMessageDeclinesOutOfScope(t *testing.T) {
	gen := &fakeGenerator{reply: "should not be used"}
	svc, _ := newTestService(gen)

	res, err := svc.HandleMessage(context.Background(), "s1", "Tell me a good joke about cats")
	if err != nil {
		t.Fatalf("HandleMessage err: %v", err)
	}
	if !strings.Contains(res.Reply, "refrigerator and dishwasher parts") {
		t.Fatalf("expected the decline reply, got %q", res.Reply)
	}
	if gen.calls != 0 {
		t.Fatalf("expected no generation call, got %d", gen.calls)
	}

	turns := turnsOf(t, svc, "s1")
	if len(turns) != 2 {
		t.Fatalf("expected the declined pair committed, got %d turns", len(turns))
	}
	if turns[0].InScope == nil || *turns[0].InScope {
		t.Fatalf("expected user turn recorded out of scope: %+v", turns[0])
	}
	if turns[0].ScopeReason != "none" {
		t.Fatalf("unexpected scope reason: %q", turns[0].ScopeReason)
	}
}

func TestHandleMessageGenerationFailureFallsBack(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("upstream unavailable")}
	svc, _ := newTestService(gen)

	res, err := svc.HandleMessage(context.Background(), "s1", "my dishwasher is leaking")
	if err != nil {
		t.Fatalf("HandleMessage err: %v", err)
	}
	if !strings.Contains(res.Reply, "having trouble connecting") {
		t.Fatalf("expected the fallback reply, got %q", res.Reply)
	}

	turns := turnsOf(t, svc, "s1")
	if len(turns) != 2 {
		t.Fatalf("expected the pair committed despite the failure, got %d turns", len(turns))
	}
	if turns[1].Content != res.Reply {
		t.Fatalf("expected fallback recorded as the assistant turn, got %q", turns[1].Content)
	}
}

func TestHandleMessageNilGeneratorFallsBack(t *testing.T) {
	catalog := &fakeCatalog{parts: map[string]part.Record{}}
	svc := chat.NewService(session.NewStore(), catalog, nil)

	res, err := svc.HandleMessage(context.Background(), "s1", "my fridge is not cooling")
	if err != nil {
		t.Fatalf("HandleMessage err: %v", err)
	}
	if !strings.Contains(res.Reply, "having trouble connecting") {
		t.Fatalf("expected the fallback reply, got %q", res.Reply)
	}
}

func TestHandleMessageRejectsEmptyText(t *testing.T) {
	svc, _ := newTestService(&fakeGenerator{reply: "ok"})

	if _, err := svc.HandleMessage(context.Background(), "s1", "   "); !errors.Is(err, chat.ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if turns := turnsOf(t, svc, "s1"); len(turns) != 0 {
		t.Fatalf("expected no commit, got %d turns", len(turns))
	}
}

func TestHandleMessageModelNumberOnlyShortCircuits(t *testing.T) {
	gen := &fakeGenerator{reply: "should not be used"}
	svc, _ := newTestService(gen)

	res, err := svc.HandleMessage(context.Background(), "s1", "WDT780SAEM1")
	if err != nil {
		t.Fatalf("HandleMessage err: %v", err)
	}
	if !strings.Contains(res.Reply, "WDT780SAEM1") || !strings.Contains(res.Reply, "dishwasher") {
		t.Fatalf("unexpected canned reply: %q", res.Reply)
	}
	if gen.calls != 0 {
		t.Fatalf("expected no generation call, got %d", gen.calls)
	}
	if turns := turnsOf(t, svc, "s1"); len(turns) != 2 {
		t.Fatalf("expected the canned pair committed, got %d turns", len(turns))
	}
}

func TestHandleMessageCanceledContextCommitsNothing(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	svc, _ := newTestService(gen)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.HandleMessage(ctx, "s1", "my dishwasher is leaking"); err == nil {
		t.Fatal("expected an error from the canceled context")
	}
	if turns := turnsOf(t, svc, "s1"); len(turns) != 0 {
		t.Fatalf("expected no commit on abandonment, got %d turns", len(turns))
	}
}

func TestHandleMessageStreamForwardsDeltas(t *testing.T) {
	gen := &fakeGenerator{reply: "streamed reply text", streaming: true}
	svc, _ := newTestService(gen)

	var deltas []string
	res, err := svc.HandleMessageStream(context.Background(), "s1", "my dishwasher is leaking", func(chunk string) {
		deltas = append(deltas, chunk)
	})
	if err != nil {
		t.Fatalf("HandleMessageStream err: %v", err)
	}
	if strings.Join(deltas, "") != gen.reply {
		t.Fatalf("deltas do not reassemble the reply: %q", strings.Join(deltas, ""))
	}
	if res.Reply != gen.reply {
		t.Fatalf("unexpected reply: %q", res.Reply)
	}
}

func TestHandleMessageSymptomGrounding(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	svc, catalog := newTestService(gen)
	catalog.repairs = []part.Repair{
		{Product: "Dishwasher", Symptom: "Leaking", Description: "Replace the door seal", Percentage: 48, Parts: "PS11752778"},
	}

	if _, err := svc.HandleMessage(context.Background(), "s1", "my dishwasher is leaking"); err != nil {
		t.Fatalf("HandleMessage err: %v", err)
	}
	if !strings.Contains(gen.lastGrounding, "Related repair information:") {
		t.Errorf("grounding missing repair block:\n%s", gen.lastGrounding)
	}
	if !strings.Contains(gen.lastGrounding, "Recommended parts for this issue:") {
		t.Errorf("grounding missing recommended parts block:\n%s", gen.lastGrounding)
	}
}
