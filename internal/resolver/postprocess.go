package resolver

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"studio-assistant/internal/domain"
)

// postProcess runs the generative reply through personalization, offer
// tagging, booking-claim fixes, and greeting handling, in that order.
// Greeting stripping only applies when an intro is being prepended or the
// user was introduced recently, so the reply does not greet twice.
func (t *turn) postProcess(ctx context.Context, reply string, skipIntro bool) string {
	reply = t.personalize(reply)
	t.tagOffer(ctx, reply)
	for _, fix := range t.svc.tenant.BookingFixes[t.language] {
		reply = strings.ReplaceAll(reply, fix.Old, fix.New)
	}
	if t.intro != "" || skipIntro {
		reply = stripGreeting(reply, t.name, t.language)
	}
	if t.intro != "" {
		reply = t.intro + reply
	}
	return reply
}

// personalize weaves the user's name into affect words and, with a fixed
// probability, addresses the user directly at the start of the reply.
func (t *turn) personalize(reply string) string {
	if t.name == "" {
		return reply
	}
	lower := strings.ToLower(reply)
	if t.language == "de" {
		if strings.Contains(lower, "danke") || strings.Contains(lower, "super") || strings.Contains(lower, "klar") {
			reply = strings.ReplaceAll(reply, "Danke", "Danke dir, "+t.name)
		}
	} else {
		if strings.Contains(lower, "thank") || strings.Contains(lower, "sure") || strings.Contains(lower, "great") {
			reply = strings.ReplaceAll(reply, "Thanks", "Thanks, "+t.name)
		}
	}
	if t.svc.randFloat() < nameInjectProbability {
		reply = injectName(reply, t.name)
	}
	return reply
}

var sentenceStart = regexp.MustCompile(`^[A-ZÄÖÜ]`)

func injectName(reply, name string) string {
	if !sentenceStart.MatchString(reply) {
		return reply
	}
	runes := []rune(reply)
	return name + ", " + string(unicode.ToLower(runes[0])) + string(runes[1:])
}

// tagOffer arms the context continuation for the next turn: a reply that
// recommends the partner, offers to list services, or offers the studio's
// own contact details makes a following bare "yes" resolvable.
func (t *turn) tagOffer(ctx context.Context, reply string) {
	lower := strings.ToLower(reply)
	partner := strings.ToLower(t.svc.tenant.Partner.Name)

	var offer domain.Offer
	switch {
	case partner != "" && strings.Contains(lower, partner),
		strings.Contains(lower, "recommend"),
		strings.Contains(lower, "empfehl"):
		offer = domain.OfferPartnerContact
	case strings.Contains(lower, "optionen auflisten"),
		strings.Contains(lower, "list some options"):
		offer = domain.OfferServiceSuggestions
	case strings.Contains(lower, "unsere kontaktdaten"),
		strings.Contains(lower, "our contact"):
		offer = domain.OfferPrimaryContact
	default:
		return
	}
	if err := t.svc.store.Set(ctx, t.userID, domain.FieldLastOffer, string(offer)); err != nil {
		slog.Warn("offer tagging failed", "user_id", t.userID, "err", err)
	}
}

var greetingAlternatives = map[string]string{
	"de": `hallo|hi|hey|servus|guten morgen|guten tag|guten abend`,
	"en": `hello|hi|hey|good morning|good afternoon|good evening`,
}

// stripGreeting removes a leading salutation (optionally addressed to the
// user by name) from a generative reply and re-capitalizes what remains.
func stripGreeting(reply, name, lang string) string {
	alts, ok := greetingAlternatives[lang]
	if !ok {
		alts = greetingAlternatives["en"]
	}
	pattern := `(?i)^(` + alts + `)`
	if name != "" {
		pattern += `([ ,]+` + regexp.QuoteMeta(name) + `)?`
	}
	pattern += `[\s,.!]+`
	stripped := regexp.MustCompile(pattern).ReplaceAllString(reply, "")
	stripped = strings.TrimSpace(stripped)
	if stripped == "" {
		return reply
	}
	runes := []rune(stripped)
	return string(unicode.ToUpper(runes[0])) + string(runes[1:])
}
