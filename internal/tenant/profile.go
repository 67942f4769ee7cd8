// Package tenant holds the business-specific configuration that
// parameterizes one deployment of the resolution engine: names, partner
// referral target, localized prompt templates, store namespace, and the
// matcher shortcuts that differ per business.
package tenant

import "strings"

// Partner identifies the business the assistant refers users to for
// services the primary business does not offer.
type Partner struct {
	Name       string `json:"name"`
	Website    string `json:"website"`
	BookingURL string `json:"booking_url"`
}

// Replacement is one post-processing phrase substitution.
type Replacement struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// Profile is the full tenant configuration. All text maps are keyed by ISO
// language code and fall back to DefaultLanguage when a language is missing.
type Profile struct {
	Name            string   `json:"name"`
	BotName         string   `json:"bot_name"`
	City            string   `json:"city"`
	Namespace       string   `json:"namespace"`
	DefaultLanguage string   `json:"default_language"`
	Languages       []string `json:"languages"`
	Partner         Partner  `json:"partner"`

	NamePrompt        map[string]string   `json:"name_prompt"`
	Honorific         map[string]string   `json:"honorific"`
	Intro             map[string]string   `json:"intro"`
	SwitchConfirm     map[string]string   `json:"switch_confirm"`
	SwitchOffer       map[string]string   `json:"switch_offer"`
	FallbackGreetings map[string][]string `json:"fallback_greetings"`
	FollowUps         map[string][]string `json:"follow_ups"`
	DidYouMean        map[string]string   `json:"did_you_mean"`
	TransportReply    map[string]string   `json:"transport_reply"`
	NoOfferApology    map[string]string   `json:"no_offer_apology"`
	StrictRefusal     map[string]string   `json:"strict_refusal"`
	ReferralFallback  map[string]string   `json:"referral_fallback"`
	SuggestionsReply  map[string]string   `json:"suggestions_reply"`
	ContactReply      map[string]string   `json:"contact_reply"`
	ContactFallback   map[string]string   `json:"contact_fallback"`
	BackendApology    map[string]string   `json:"backend_apology"`
	NotAvailable      map[string]string   `json:"not_available"`

	// SwitchTriggers maps an explicit trigger phrase (lowercased) to the
	// language it requests, e.g. "speak english" -> "en".
	SwitchTriggers map[string]string `json:"switch_triggers"`
	// KeywordShortcuts maps a keyword to FAQ trigger keys checked before the
	// generic trigger matching.
	KeywordShortcuts map[string][]string `json:"keyword_shortcuts"`
	// StrictNonServices lists explicit non-services answered with the
	// StrictRefusal text instead of the regular apology.
	StrictNonServices []string `json:"strict_non_services"`
	// YesTokens are affirmative replies that resolve a pending offer.
	YesTokens []string `json:"yes_tokens"`
	// BookingFixes rewrites generated phrasing that could imply the
	// assistant can book appointments itself.
	BookingFixes map[string][]Replacement `json:"booking_fixes"`
}

// Text picks the language entry from m, falling back to DefaultLanguage.
func (p *Profile) Text(m map[string]string, lang string) string {
	if v, ok := m[lang]; ok {
		return v
	}
	return m[p.DefaultLanguage]
}

// List picks the language entry from m, falling back to DefaultLanguage.
func (p *Profile) List(m map[string][]string, lang string) []string {
	if v, ok := m[lang]; ok {
		return v
	}
	return m[p.DefaultLanguage]
}

// Supported reports whether lang is one of the tenant's languages.
func (p *Profile) Supported(lang string) bool {
	for _, l := range p.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// IsYes reports whether the lowercased reply is an affirmative token.
func (p *Profile) IsYes(reply string) bool {
	reply = strings.ToLower(strings.TrimSpace(reply))
	for _, tok := range p.YesTokens {
		if reply == tok {
			return true
		}
	}
	return false
}

// IsStrictNonService reports whether phrase is special-cased to the strict
// refusal. Comparison is case-insensitive.
func (p *Profile) IsStrictNonService(phrase string) bool {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	for _, s := range p.StrictNonServices {
		if strings.ToLower(s) == phrase {
			return true
		}
	}
	return false
}
