package resolver

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"studio-assistant/internal/domain"
)

// switchPhrasePattern matches the request part of an explicit language
// switch ("switch to english", "sprich deutsch", "english please") so the
// remainder can be resolved as its own message.
var switchPhrasePattern = regexp.MustCompile(`(?i)\b(i (want|would like|'d like) to )?(switch( to)?|change( to)?|wechseln?|speak|talk|sprich)( (english|englisch|german|deutsch))?\b|\b(english|englisch|german|deutsch)( please| bitte)?\b`)

// mismatchStage is pipeline stage 4: offer a switch when the detected
// language of a long-enough message disagrees with the session language.
// The offer is rate limited per user via a TTL flag.
func (t *turn) mismatchStage(ctx context.Context) (Outcome, error) {
	s := t.svc
	if t.depth >= maxDepth {
		return Outcome{}, nil
	}
	if len(strings.Fields(t.input)) <= shortInputTokens {
		return Outcome{}, nil
	}

	detected, ok := s.detector.Detect(t.input)
	if !ok || detected == t.language {
		return Outcome{}, nil
	}
	if !s.tenant.Supported(detected) || !s.tenant.Supported(t.language) {
		return Outcome{}, nil
	}

	asked, err := s.store.Get(ctx, t.userID, domain.FieldAskedSwitch)
	if err != nil {
		return Outcome{}, storeErr(err)
	}
	if asked != "" {
		return Outcome{}, nil
	}
	if err := s.store.SetTTL(ctx, t.userID, domain.FieldAskedSwitch, "1", switchPromptTTL); err != nil {
		return Outcome{}, storeErr(err)
	}
	return Outcome{Reply: s.tenant.Text(s.tenant.SwitchOffer, detected), Done: true}, nil
}

// switchStage is pipeline stage 5: an explicit switch request persists the
// new language, then resumes either the remembered previous message or
// whatever of the current message remains after stripping the switch
// phrase. Setting the language before re-entry makes repeated switch
// requests idempotent.
func (t *turn) switchStage(ctx context.Context) (Outcome, error) {
	s := t.svc
	if t.depth >= maxDepth {
		return Outcome{}, nil
	}
	newLang := s.switchRequest(t.input)
	if newLang == "" {
		return Outcome{}, nil
	}

	if err := s.store.Set(ctx, t.userID, domain.FieldLanguage, newLang); err != nil {
		return Outcome{}, storeErr(err)
	}
	confirm := s.tenant.Text(s.tenant.SwitchConfirm, newLang)

	previous, err := s.store.Get(ctx, t.userID, domain.FieldPrevious)
	if err != nil {
		return Outcome{}, storeErr(err)
	}

	var resume string
	if previous != "" {
		resume = previous
		if err := s.store.Delete(ctx, t.userID, domain.FieldPrevious); err != nil {
			return Outcome{}, storeErr(err)
		}
	} else {
		stripped := stripSwitchPhrase(t.input)
		if len([]rune(stripped)) <= 3 || isPoliteness(stripped) {
			if err := s.store.Delete(ctx, t.userID, domain.FieldPending); err != nil {
				return Outcome{}, storeErr(err)
			}
			return Outcome{Reply: confirm, Done: true}, nil
		}
		resume = stripped
	}

	followUp, err := s.resolve(ctx, t.userID, resume, newLang, reentry{depth: t.depth + 1, language: newLang})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Reply: confirm + "\n\n" + followUp, Done: true}, nil
}

// switchRequest returns the target language of an explicit switch trigger
// contained in the input, or "".
func (s *Service) switchRequest(input string) string {
	lower := strings.ToLower(input)
	for phrase, lang := range s.tenant.SwitchTriggers {
		if strings.Contains(lower, phrase) {
			return lang
		}
	}
	return ""
}

func stripSwitchPhrase(input string) string {
	stripped := switchPhrasePattern.ReplaceAllString(input, " ")
	stripped = strings.TrimSpace(stripped)
	return strings.Trim(stripped, " ,.!?-")
}

func isPoliteness(s string) bool {
	switch strings.ToLower(s) {
	case "please", "bitte":
		return true
	}
	return false
}

// Short acknowledgements are never worth resuming after a language switch.
var shortAcks = map[string]struct{}{
	"yes": {}, "ja": {}, "no": {}, "nein": {},
}

// rememberStage is pipeline stage 6: remember the message so a following
// switch request can resume it in the new language. Never terminal.
// Re-entered messages were already remembered or consumed, so storing them
// again would make repeated switch requests replay the same message.
func (t *turn) rememberStage(ctx context.Context) (Outcome, error) {
	if t.depth >= maxDepth {
		return Outcome{}, nil
	}
	lower := strings.ToLower(strings.TrimSpace(t.input))
	if _, ack := shortAcks[lower]; !ack {
		if err := t.svc.store.Set(ctx, t.userID, domain.FieldPrevious, t.input); err != nil {
			return Outcome{}, storeErr(err)
		}
	}
	return Outcome{}, nil
}

// pendingStage is pipeline stage 7: replay a message that was parked during
// an interruption, exactly once, with the personalized intro prepended.
func (t *turn) pendingStage(ctx context.Context) (Outcome, error) {
	s := t.svc
	if t.depth >= maxDepth {
		return Outcome{}, nil
	}
	pending, err := s.store.Consume(ctx, t.userID, domain.FieldPending)
	if err != nil {
		return Outcome{}, storeErr(err)
	}
	if pending == "" {
		return Outcome{}, nil
	}

	if err := s.store.SetTTL(ctx, t.userID, domain.FieldSkipIntro, "1", skipIntroTTL); err != nil {
		return Outcome{}, storeErr(err)
	}

	reply, err := s.resolve(ctx, t.userID, pending, t.language, reentry{depth: t.depth + 1, language: t.language})
	if err != nil {
		return Outcome{}, err
	}
	intro := fmt.Sprintf(s.tenant.Text(s.tenant.Intro, t.language), t.name)
	return Outcome{Reply: intro + reply, Done: true}, nil
}
