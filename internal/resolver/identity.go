package resolver

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"studio-assistant/internal/domain"
)

// namePattern accepts one or two words of latin letters including German
// umlauts, at least two letters each.
var namePattern = regexp.MustCompile(`^[A-Za-zÄÖÜäöüß]{2,}( [A-Za-zÄÖÜäöüß]{2,})?$`)

// collectName runs the name-collection state machine ahead of the pipeline.
// First contact parks the message in pending_message and asks for a name;
// the next message is consumed as the name reply, after which the parked
// message becomes the turn's input with the personalized intro prepended.
func (t *turn) collectName(ctx context.Context) (string, bool, error) {
	s := t.svc

	name, err := s.store.Get(ctx, t.userID, domain.FieldName)
	if err != nil {
		return "", false, storeErr(err)
	}
	asked, err := s.store.Get(ctx, t.userID, domain.FieldAskedName)
	if err != nil {
		return "", false, storeErr(err)
	}

	if name == "" && asked == "" {
		if err := s.store.Set(ctx, t.userID, domain.FieldAskedName, "1"); err != nil {
			return "", false, storeErr(err)
		}
		if err := s.store.Set(ctx, t.userID, domain.FieldPending, t.input); err != nil {
			return "", false, storeErr(err)
		}
		return s.tenant.Text(s.tenant.NamePrompt, t.language), true, nil
	}

	if name == "" {
		name = extractName(t.input, s.tenant.Text(s.tenant.Honorific, t.language))
		if err := s.store.Set(ctx, t.userID, domain.FieldName, name); err != nil {
			return "", false, storeErr(err)
		}
		if err := s.store.Delete(ctx, t.userID, domain.FieldAskedName); err != nil {
			return "", false, storeErr(err)
		}

		pending, err := s.store.Consume(ctx, t.userID, domain.FieldPending)
		if err != nil {
			return "", false, storeErr(err)
		}
		if pending != "" {
			t.input = pending
			if err := s.store.SetTTL(ctx, t.userID, domain.FieldSkipIntro, "1", skipIntroTTL); err != nil {
				return "", false, storeErr(err)
			}
			t.intro = fmt.Sprintf(s.tenant.Text(s.tenant.Intro, t.language), name)
		}
	}

	t.name = name
	return "", false, nil
}

// extractName parses a name reply. Inputs that do not look like a name fall
// back to the localized honorific, so the bot always has something to call
// the user.
func extractName(input, honorific string) string {
	trimmed := strings.TrimSpace(input)
	if !namePattern.MatchString(trimmed) {
		return honorific
	}
	first := strings.Fields(trimmed)[0]
	return capitalize(first)
}

func capitalize(word string) string {
	runes := []rune(strings.ToLower(word))
	if len(runes) == 0 {
		return word
	}
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}
