package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"studio-assistant/internal/domain"
	"studio-assistant/internal/match"
)

// transportStage is pipeline stage 1: a mentioned public-transport station
// answers with lines, address, and a directions link. Runs before the FAQ
// so station names never collide with FAQ triggers.
func (t *turn) transportStage(_ context.Context) (Outcome, error) {
	station, ok := t.findStation()
	if !ok {
		return Outcome{}, nil
	}
	link := mapsLink(station.Name+" "+t.svc.tenant.City, t.profile.ContactInfo["address"])
	reply := fmt.Sprintf(t.svc.tenant.Text(t.svc.tenant.TransportReply, t.language),
		station.Name, station.Lines, station.Name, station.Address, link)
	return Outcome{Reply: reply, Done: true}, nil
}

func (t *turn) findStation() (domain.Station, bool) {
	if len(t.profile.Stations) == 0 {
		return domain.Station{}, false
	}
	lower := strings.ToLower(t.input)
	for _, st := range t.profile.Stations {
		if match.ContainsWord(lower, strings.ToLower(st.Name)) {
			return st, true
		}
	}
	// Fuzzy station lookup only for short inputs, otherwise long free text
	// drifts into false positives.
	if len(strings.Fields(lower)) > approxStationTokens {
		return domain.Station{}, false
	}
	names := make([]string, len(t.profile.Stations))
	for i, st := range t.profile.Stations {
		names[i] = strings.ToLower(st.Name)
	}
	best, ok := match.ClosestMatch(lower, names, stationMatchCutoff)
	if !ok {
		return domain.Station{}, false
	}
	for _, st := range t.profile.Stations {
		if strings.ToLower(st.Name) == best {
			return st, true
		}
	}
	return domain.Station{}, false
}

func mapsLink(from, to string) string {
	return "https://www.google.com/maps/dir/" + url.QueryEscape(from) + "/" + url.QueryEscape(to)
}

// faqStage is pipeline stage 2: curated FAQ lookup through keyword
// shortcuts, exact and containment matches on normalized text, token
// overlap, and finally a fuzzy closest match. A hit appends a random
// localized follow-up question.
func (t *turn) faqStage(_ context.Context) (Outcome, error) {
	cleaned := match.Normalize(t.input)
	if len([]rune(cleaned)) < 3 || len(t.profile.FAQ) == 0 {
		return Outcome{}, nil
	}
	answer := t.lookupFAQ(cleaned)
	if answer == "" {
		return Outcome{}, nil
	}
	followUp := t.svc.pick(t.svc.tenant.List(t.svc.tenant.FollowUps, t.language))
	return Outcome{Reply: answer + "\n\n" + followUp, Done: true}, nil
}

func (t *turn) lookupFAQ(cleaned string) string {
	for keyword, triggers := range t.svc.tenant.KeywordShortcuts {
		if !strings.Contains(cleaned, keyword) {
			continue
		}
		for _, trigger := range triggers {
			if answer := t.profile.FAQ[trigger]; answer != "" {
				return answer
			}
		}
	}

	normalized := make(map[string]string, len(t.profile.FAQ))
	for trigger, answer := range t.profile.FAQ {
		tc := match.Normalize(trigger)
		if tc == "" {
			continue
		}
		normalized[tc] = answer
		if tc == cleaned || strings.Contains(cleaned, tc) || strings.Contains(tc, cleaned) {
			return answer
		}
		if match.TokenOverlap(tc, cleaned) >= faqOverlapCutoff {
			return answer
		}
	}

	keys := make([]string, 0, len(normalized))
	for k := range normalized {
		keys = append(keys, k)
	}
	if best, ok := match.ClosestMatch(cleaned, keys, faqMatchCutoff); ok {
		return normalized[best]
	}
	return ""
}

// suggestStage is pipeline stage 3a: a short input that nearly matches a
// catalog service word gets a "did you mean" suggestion. Exact service
// names are left for the generative fallback to answer properly.
func (t *turn) suggestStage(_ context.Context) (Outcome, error) {
	services := make([]string, 0, len(t.profile.Services)+len(t.partner.Services))
	services = append(services, t.profile.Services...)
	services = append(services, t.partner.Services...)
	if len(services) == 0 {
		return Outcome{}, nil
	}

	input := strings.ToLower(strings.TrimSpace(t.input))
	var suggestion string
	for _, service := range services {
		for _, word := range strings.Fields(strings.ToLower(service)) {
			if match.Ratio(word, input) > typoCutoff {
				suggestion = service
				break
			}
		}
		if suggestion != "" {
			break
		}
	}
	if suggestion == "" {
		return Outcome{}, nil
	}

	cleaned := match.Normalize(t.input)
	for _, service := range services {
		if match.Normalize(service) == cleaned {
			return Outcome{}, nil
		}
	}
	reply := fmt.Sprintf(t.svc.tenant.Text(t.svc.tenant.DidYouMean, t.language), suggestion)
	return Outcome{Reply: reply, Done: true}, nil
}

// nonServiceStage is pipeline stage 3b: explicitly unoffered services get a
// refusal or apology, redirectable ones get a partner referral and arm the
// partner-contact offer for the next turn.
func (t *turn) nonServiceStage(ctx context.Context) (Outcome, error) {
	s := t.svc
	cleaned := match.Normalize(t.input)

	for _, nonService := range t.profile.ExplicitNonServices {
		nc := match.Normalize(nonService)
		if nc == "" || !strings.Contains(cleaned, nc) {
			continue
		}
		if s.tenant.IsStrictNonService(nonService) {
			return Outcome{Reply: s.tenant.Text(s.tenant.StrictRefusal, t.language), Done: true}, nil
		}
		if len(t.profile.NonServiceReplies) > 0 {
			template := s.pick(t.profile.NonServiceReplies)
			return Outcome{Reply: strings.ReplaceAll(template, "{service}", nonService), Done: true}, nil
		}
		reply := fmt.Sprintf(s.tenant.Text(s.tenant.NoOfferApology, t.language), nonService, s.tenant.Name)
		return Outcome{Reply: reply, Done: true}, nil
	}

	for _, redirect := range t.profile.RedirectNonServices {
		rc := match.Normalize(redirect)
		if rc == "" || !strings.Contains(cleaned, rc) {
			continue
		}
		if err := s.store.Set(ctx, t.userID, domain.FieldLastOffer, string(domain.OfferPartnerContact)); err != nil {
			return Outcome{}, storeErr(err)
		}
		return Outcome{Reply: t.referral(ctx, redirect), Done: true}, nil
	}
	return Outcome{}, nil
}

// referral asks the backend for a short partner referral and falls back to
// a localized template when generation fails.
func (t *turn) referral(ctx context.Context, service string) string {
	s := t.svc
	reply, err := s.llm.Chat(ctx, domain.ChatRequest{
		System: referralPrompt(s.tenant, service, t.language),
		Messages: []domain.ChatMessage{
			{Role: domain.RoleUser, Content: "The user asked about: " + service},
		},
		Temperature: 0.8,
		MaxTokens:   120,
	})
	if err != nil || strings.TrimSpace(reply) == "" {
		slog.Warn("referral generation failed", "user_id", t.userID, "err", err)
		return fmt.Sprintf(s.tenant.Text(s.tenant.ReferralFallback, t.language),
			service, s.tenant.Name, s.tenant.Partner.Name)
	}
	return reply
}

// offerStage is the context continuation: a bare affirmation right after an
// offer was made resolves to the offered content. The offer tag is cleared
// on use so a second "yes" falls through.
func (t *turn) offerStage(ctx context.Context) (Outcome, error) {
	s := t.svc
	offer, err := s.store.Get(ctx, t.userID, domain.FieldLastOffer)
	if err != nil {
		return Outcome{}, storeErr(err)
	}
	if offer == "" || !s.tenant.IsYes(t.input) {
		return Outcome{}, nil
	}

	clearOffer := func() error {
		return s.store.Delete(ctx, t.userID, domain.FieldLastOffer)
	}

	switch domain.Offer(offer) {
	case domain.OfferServiceSuggestions:
		if err := clearOffer(); err != nil {
			return Outcome{}, storeErr(err)
		}
		reply := fmt.Sprintf(s.tenant.Text(s.tenant.SuggestionsReply, t.language), s.tenant.Name)
		return Outcome{Reply: reply, Done: true}, nil
	case domain.OfferPartnerContact:
		if err := clearOffer(); err != nil {
			return Outcome{}, storeErr(err)
		}
		reply := t.contactReply(t.partner.ContactInfo, s.tenant.Partner.Name, s.tenant.Partner.Website)
		return Outcome{Reply: reply, Done: true}, nil
	case domain.OfferPrimaryContact:
		if err := clearOffer(); err != nil {
			return Outcome{}, storeErr(err)
		}
		reply := t.contactReply(t.profile.ContactInfo, s.tenant.Name, t.profile.ContactInfo["website"])
		return Outcome{Reply: reply, Done: true}, nil
	}
	return Outcome{}, nil
}

func (t *turn) contactReply(contact map[string]string, name, website string) string {
	s := t.svc
	if len(contact) == 0 {
		return fmt.Sprintf(s.tenant.Text(s.tenant.ContactFallback, t.language), website)
	}
	na := s.tenant.Text(s.tenant.NotAvailable, t.language)
	return fmt.Sprintf(s.tenant.Text(s.tenant.ContactReply, t.language),
		name,
		valueOr(contact["website"], website),
		valueOr(contact["email"], na),
		valueOr(contact["phone"], na),
		valueOr(contact["address"], na))
}
