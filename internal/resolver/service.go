// Package resolver decides what kind of answer to give to an inbound user
// message before falling back to the generative backend: a fixed-order
// pipeline of cheap resolvers on top of a per-user conversation state
// machine that survives interruptions (name collection, language-switch
// negotiation) without losing the message the user was trying to send.
package resolver

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"studio-assistant/internal/domain"
	"studio-assistant/internal/tenant"
)

const (
	historyLimit          = 5
	maxDepth              = 1
	skipIntroTTL          = 24 * time.Hour
	switchPromptTTL       = time.Hour
	shortInputTokens      = 5
	approxStationTokens   = 4
	stationMatchCutoff    = 0.85
	faqOverlapCutoff      = 0.7
	faqMatchCutoff        = 0.6
	typoCutoff            = 0.8
	nameInjectProbability = 0.3
)

// SessionStore is the per-user keyed session state. Values read as "" when
// absent or expired. Consume is read-then-delete and is not atomic: a
// concurrent request for the same user can observe the same value twice.
// That race is accepted, not worked around.
type SessionStore interface {
	Get(ctx context.Context, userID, field string) (string, error)
	Set(ctx context.Context, userID, field, value string) error
	SetTTL(ctx context.Context, userID, field, value string, ttl time.Duration) error
	Delete(ctx context.Context, userID, field string) error
	Consume(ctx context.Context, userID, field string) (string, error)
	AppendHistory(ctx context.Context, userID, message string, limit int) error
	History(ctx context.Context, userID string, limit int) ([]string, error)
}

// BusinessSource loads the tenant's read-only business profile.
type BusinessSource interface {
	Profile(ctx context.Context, language string) (domain.BusinessProfile, error)
}

// PartnerSource fetches the partner business data.
type PartnerSource interface {
	Fetch(ctx context.Context) (domain.PartnerProfile, error)
}

// ChatBackend generates free text. Callers substitute a localized fallback
// on error.
type ChatBackend interface {
	Chat(ctx context.Context, req domain.ChatRequest) (string, error)
}

// Detector guesses the language of free text; ok is false when there is no
// reliable signal.
type Detector interface {
	Detect(text string) (string, bool)
}

// Outcome is the tagged result of one pipeline stage: a terminal reply or
// fall-through to the next stage. Re-entry (language switch, deferred
// resume) is a depth-bounded recursive call, not a third tag.
type Outcome struct {
	Reply string
	Done  bool
}

// Service is the dialogue resolver for one tenant.
type Service struct {
	store    SessionStore
	business BusinessSource
	partner  PartnerSource
	llm      ChatBackend
	detector Detector
	tenant   *tenant.Profile

	// Injectable randomness for tests.
	randFloat func() float64
	randIntN  func(n int) int
}

type Input struct {
	UserID   string
	Message  string
	Language string
}

type Output struct {
	Reply string
}

// New wires a resolver Service. All dependencies are required.
func New(store SessionStore, business BusinessSource, partner PartnerSource, backend ChatBackend, detector Detector, profile *tenant.Profile) (*Service, error) {
	if store == nil {
		return nil, newError(ErrorInternal, "nil_session_store", nil)
	}
	if business == nil {
		return nil, newError(ErrorInternal, "nil_business_source", nil)
	}
	if partner == nil {
		return nil, newError(ErrorInternal, "nil_partner_source", nil)
	}
	if backend == nil {
		return nil, newError(ErrorInternal, "nil_chat_backend", nil)
	}
	if detector == nil {
		return nil, newError(ErrorInternal, "nil_detector", nil)
	}
	if profile == nil {
		return nil, newError(ErrorInternal, "nil_tenant_profile", nil)
	}
	return &Service{
		store:     store,
		business:  business,
		partner:   partner,
		llm:       backend,
		detector:  detector,
		tenant:    profile,
		randFloat: rand.Float64,
		randIntN:  rand.Intn,
	}, nil
}

// Resolve handles one inbound message and returns the reply.
func (s *Service) Resolve(ctx context.Context, in Input) (Output, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return Output{}, newError(ErrorInvalidInput, "empty_user_id", nil)
	}
	reply, err := s.resolve(ctx, userID, in.Message, strings.TrimSpace(in.Language), reentry{})
	if err != nil {
		return Output{}, err
	}
	return Output{Reply: reply}, nil
}

// reentry carries the recursion state of a pipeline re-invocation. Depth is
// capped at maxDepth; at or beyond the cap the switch, mismatch, and
// pending-replay steps are disabled, which makes termination structural.
type reentry struct {
	depth    int
	language string
}

func (s *Service) resolve(ctx context.Context, userID, message, declared string, re reentry) (string, error) {
	language, err := s.sessionLanguage(ctx, userID, declared, re)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(message) == "" {
		return s.pick(s.tenant.List(s.tenant.FallbackGreetings, language)), nil
	}

	t := &turn{svc: s, userID: userID, input: message, language: language, depth: re.depth}

	reply, done, err := t.collectName(ctx)
	if err != nil {
		return "", err
	}
	if done {
		return reply, nil
	}

	t.loadBusinessData(ctx)

	stages := []func(context.Context) (Outcome, error){
		t.transportStage,
		t.faqStage,
		t.suggestStage,
		t.nonServiceStage,
		t.offerStage,
		t.mismatchStage,
		t.switchStage,
		t.rememberStage,
		t.pendingStage,
	}
	for _, stage := range stages {
		out, err := stage(ctx)
		if err != nil {
			return "", err
		}
		if out.Done {
			return t.intro + out.Reply, nil
		}
	}
	return t.fallbackStage(ctx)
}

// sessionLanguage resolves the active language: forced re-entry language,
// then the stored preference, then the declared request language, then the
// tenant default.
func (s *Service) sessionLanguage(ctx context.Context, userID, declared string, re reentry) (string, error) {
	if re.language != "" {
		return re.language, nil
	}
	stored, err := s.store.Get(ctx, userID, domain.FieldLanguage)
	if err != nil {
		return "", storeErr(err)
	}
	for _, candidate := range []string{stored, declared} {
		if candidate != "" {
			return candidate, nil
		}
	}
	return s.tenant.DefaultLanguage, nil
}

func (s *Service) pick(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[s.randIntN(len(list))]
}

// turn is the per-request state threaded through the pipeline stages.
type turn struct {
	svc      *Service
	userID   string
	input    string
	language string
	name     string
	intro    string
	depth    int
	profile  domain.BusinessProfile
	partner  domain.PartnerProfile
}

// loadBusinessData fetches business and partner data, degrading to empty
// values on failure so the pipeline falls through instead of erroring.
func (t *turn) loadBusinessData(ctx context.Context) {
	profile, err := t.svc.business.Profile(ctx, t.language)
	if err != nil {
		slog.Error("business profile fetch failed", "user_id", t.userID, "err", err)
	}
	t.profile = profile

	partner, err := t.svc.partner.Fetch(ctx)
	if err != nil {
		slog.Warn("partner data fetch failed", "err", err)
	}
	t.partner = partner
}

// fallbackStage is pipeline stage 8: the generative backend plus the
// response post-processor.
func (t *turn) fallbackStage(ctx context.Context) (string, error) {
	s := t.svc

	skipIntro, err := s.store.Get(ctx, t.userID, domain.FieldSkipIntro)
	if err != nil {
		return "", storeErr(err)
	}
	if skipIntro != "" {
		if err := s.store.SetTTL(ctx, t.userID, domain.FieldSkipIntro, "1", skipIntroTTL); err != nil {
			return "", storeErr(err)
		}
	}

	history, err := s.store.History(ctx, t.userID, historyLimit)
	if err != nil {
		return "", storeErr(err)
	}
	messages := make([]domain.ChatMessage, 0, len(history)+1)
	for _, msg := range history {
		messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: msg})
	}
	messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: t.input})

	// Record the message before the call so the current turn is never
	// duplicated into later prompts.
	if err := s.store.AppendHistory(ctx, t.userID, t.input, historyLimit); err != nil {
		return "", storeErr(err)
	}

	raw, err := s.llm.Chat(ctx, domain.ChatRequest{
		System:   buildSystemPrompt(s.tenant, t.profile, t.partner, t.language),
		Messages: messages,
	})
	if err != nil {
		slog.Error("chat backend failed", "user_id", t.userID, "err", err)
		return s.tenant.Text(s.tenant.BackendApology, t.language), nil
	}
	return t.postProcess(ctx, raw, skipIntro != ""), nil
}
