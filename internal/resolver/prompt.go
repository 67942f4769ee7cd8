package resolver

import (
	"fmt"
	"sort"
	"strings"

	"studio-assistant/internal/domain"
	"studio-assistant/internal/tenant"
)

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func joinOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return strings.Join(values, ", ")
}

func mapOr(values map[string]string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+": "+values[key])
	}
	return strings.Join(pairs, ", ")
}

// buildSystemPrompt assembles the generative fallback's system prompt from
// the business profile and partner data. The primary business block always
// comes first; the partner block is fenced off with explicit instructions
// so contact details are never mixed.
func buildSystemPrompt(tn *tenant.Profile, profile domain.BusinessProfile, partner domain.PartnerProfile, lang string) string {
	role := strings.TrimSpace(profile.RoleDescription)
	if role == "" {
		role = fmt.Sprintf("You are a friendly, playful assistant for %s.", tn.Name)
	}
	promotions := "No current promotions."
	if len(profile.Promotions) > 0 {
		promotions = strings.Join(profile.Promotions, "\n")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\nYou have access to the following data:\n\n", role)

	fmt.Fprintf(&b, "=== %s - Your Primary Reference ===\n", tn.Name)
	fmt.Fprintf(&b, "(Only refer to this data unless the user asks for services not offered by %s.)\n", tn.Name)
	fmt.Fprintf(&b, "Services: %s\n", joinOr(profile.Services, "No services available."))
	fmt.Fprintf(&b, "Opening Hours: %s\n", valueOr(profile.OpeningHours, "Not available."))
	fmt.Fprintf(&b, "Booking Info: %s\n", valueOr(profile.Booking, "Booking info not available."))
	fmt.Fprintf(&b, "Contact Info: %s\n", mapOr(profile.ContactInfo, "No contact info available."))
	fmt.Fprintf(&b, "Pricing Page: %s\n", valueOr(profile.Pricing, "N/A"))
	fmt.Fprintf(&b, "Current Promotions: %s\n", promotions)
	fmt.Fprintf(&b, "Payment Options: %s\n", valueOr(profile.AdditionalInfo["payment_options"], "No payment info available."))
	fmt.Fprintf(&b, "Other Helpful Info: %s\n", valueOr(profile.AdditionalInfo["other_info"], "No additional details available."))
	fmt.Fprintf(&b, "Parking Information: %s\n", valueOr(profile.AdditionalInfo["parking"], "No parking info available."))
	fmt.Fprintf(&b, "Gift Cards: %s\n\n", valueOr(profile.AdditionalInfo["gift_cards"], "No gift card info available."))

	fmt.Fprintf(&b, "=== %s - Only Mention if User Asks for Services %s Does Not Offer ===\n", tn.Partner.Name, tn.Name)
	fmt.Fprintf(&b, "Services: %s\n", joinOr(partner.Services, "No services available."))
	fmt.Fprintf(&b, "Contact Info: %s\n", mapOr(partner.ContactInfo, "No contact info available."))
	fmt.Fprintf(&b, "Website: %s\n", valueOr(partner.ContactInfo["website"], tn.Partner.Website))
	fmt.Fprintf(&b, "Booking Page: %s\n\n", valueOr(partner.ContactInfo["booking"], tn.Partner.BookingURL))

	b.WriteString("=== Important Instructions ===\n")
	fmt.Fprintf(&b, "- Never mix contact info between %s and %s.\n", tn.Name, tn.Partner.Name)
	fmt.Fprintf(&b, "- Always respond in %s unless the user explicitly asks otherwise.\n", languageName(lang))
	fmt.Fprintf(&b, "- Only recommend %s when the user requests services that %s does not offer.\n", tn.Partner.Name, tn.Name)
	fmt.Fprintf(&b, "- If you recommend %s for a service the user asked about, offer their contact info when the user confirms.\n", tn.Partner.Name)
	b.WriteString("- If the question cannot be answered from the data above, suggest searching on Google.\n")
	b.WriteString("- Be friendly, playful, and proactive, and promote current offers when relevant.\n")
	b.WriteString(bookingGuardrails(lang))
	return b.String()
}

// referralPrompt is the short system prompt used when a redirectable
// non-service routes to the partner business.
func referralPrompt(tn *tenant.Profile, service, lang string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, the assistant of %s.\n", tn.BotName, tn.Name)
	fmt.Fprintf(&b, "%s does not offer %q, but the partner business %s does.\n", tn.Name, service, tn.Partner.Name)
	fmt.Fprintf(&b, "Write one short, warm reply in %s that says %s does not offer this, recommends %s for it, and offers to share their contact info.\n",
		languageName(lang), tn.Name, tn.Partner.Name)
	b.WriteString("Do not invent prices, addresses, or opening hours.")
	return b.String()
}

func languageName(lang string) string {
	switch lang {
	case "de":
		return "German"
	case "en":
		return "English"
	}
	return lang
}

func bookingGuardrails(lang string) string {
	if lang == "de" {
		return "- Sage niemals, dass du selbst Termine buchen kannst. Verweise immer auf die Online-Buchung oder das Telefon.\n" +
			"- Verwende die Du-Form und bleibe locker und herzlich.\n"
	}
	return "- Never claim that you can book appointments yourself. Always point to the online booking page or the phone number.\n" +
		"- Keep the tone casual and warm.\n"
}
