package tenant

import "fmt"

// Default returns the built-in beauty-studio profile. Deployments load a
// JSON document over it, so only the fields that differ need overriding.
func Default() *Profile {
	p := &Profile{
		Name:            "Velvet Wax Studio",
		BotName:         "Vivi",
		City:            "Salzburg",
		Namespace:       "velvet",
		DefaultLanguage: "de",
		Languages:       []string{"de", "en"},
		Partner: Partner{
			Name:    "Aurora Urban Beauty",
			Website: "https://www.aurora-beauty.example",
		},
	}
	p.Partner.BookingURL = p.Partner.Website + "/buchung/"

	p.NamePrompt = map[string]string{
		"de": fmt.Sprintf("👋 Hey! Ich bin %s – deine smarte Beauty-Assistentin für alle Fragen rund um %s, Waxing & Laser. Wie darf ich dich nennen? 😊", p.BotName, p.Name),
		"en": fmt.Sprintf("👋 Hey! I'm %s – your smart beauty assistant for everything around %s, waxing & laser. What may I call you? 😊", p.BotName, p.Name),
	}
	p.Honorific = map[string]string{
		"de": "Lieber Gast",
		"en": "Dear Guest",
	}
	p.Intro = map[string]string{
		"de": "Schön, dich kennenzulernen, %s! 😊 Lass uns direkt loslegen:\n\n",
		"en": "Nice to meet you, %s! 😊 Let's dive right in:\n\n",
	}
	p.SwitchConfirm = map[string]string{
		"de": "Sprache auf Deutsch 🇩🇪 gewechselt.",
		"en": "Switched to English 🇬🇧. Let's continue:",
	}
	// Keyed by the detected language, i.e. the language the user appears to
	// be writing in.
	p.SwitchOffer = map[string]string{
		"en": `Ich habe bemerkt, dass du auf Englisch schreibst. Möchtest du lieber auf Englisch weitermachen? 😊 Dann schreib einfach "Speak English".`,
		"de": `I noticed you're writing in German. Would you prefer to continue in German? 😊 In that case just type "Sprich Deutsch".`,
	}
	p.FallbackGreetings = map[string][]string{
		"de": {
			"Kann ich dir sonst noch mit etwas helfen?",
			"Gibt es noch etwas, das du wissen möchtest?",
			"Womit kann ich dir heute noch helfen? 😊",
			"Ich bin da, falls du noch etwas brauchst!",
			"Sag Bescheid, wenn du noch Fragen hast!",
		},
		"en": {
			"Can I help you with something else?",
			"Anything else you'd like to know?",
			"What else can I assist you with today? 😊",
			"I'm here if you need anything else!",
			"Let me know if you have any more questions!",
		},
	}
	p.FollowUps = map[string][]string{
		"de": {
			"Möchtest du sonst noch was wissen? 😊",
			"Womit kann ich dir sonst noch helfen?",
			"Ich bin hier, falls du noch weitere Fragen hast!",
			"Sag mir Bescheid, wenn ich dir noch helfen kann!",
		},
		"en": {
			"Is there anything else you'd like to know? 😊",
			"How else can I assist you?",
			"I'm here if you have more questions!",
			"Let me know if you need anything else!",
		},
	}
	p.DidYouMean = map[string]string{
		"de": "Meintest du vielleicht '%s'? 😊",
		"en": "Did you mean '%s'? 😊",
	}
	// Args: station name, transit lines, station name, station address, maps link.
	p.TransportReply = map[string]string{
		"de": "Wenn du vom %s zu uns oder zurück möchtest, kannst du diese öffentlichen Verkehrsmittel benutzen: %s.\nAdresse %s: %s.\nHier ist auch ein Google Maps Link für die Route: %s",
		"en": "If you want to go from %s to us or back, you can use these public transport options: %s.\n%s address: %s.\nHere's also a Google Maps link for the route: %s",
	}
	// Args: service, business name.
	p.NoOfferApology = map[string]string{
		"de": "Sorry, %s bieten wir bei %s nicht an.",
		"en": "Sorry, we don't offer %s at %s.",
	}
	p.StrictRefusal = map[string]string{
		"de": "Das bieten wir nur für vertraute Stammkunden an. Melde dich gerne direkt bei uns! 😊",
		"en": "We only offer that for familiar returning clients. Please contact us directly! 😊",
	}
	// Args: service, business name, partner name.
	p.ReferralFallback = map[string]string{
		"de": "Wir bieten %s bei %s nicht an, aber %s hat das! Möchtest du ihre Kontaktdaten?",
		"en": "We don't offer %s at %s, but %s does! Would you like me to share their contact info?",
	}
	// Args: business name.
	p.SuggestionsReply = map[string]string{
		"de": "Super! Bei %s bieten wir eine Vielzahl von Waxing- und Laser-Behandlungen an. Soll ich dir ein paar Optionen auflisten oder dir bei der Buchung helfen?",
		"en": "Great! We offer a variety of waxing and laser treatments at %s. Would you like me to list some options or help you with booking?",
	}
	// Args: business name, website, email, phone, address.
	p.ContactReply = map[string]string{
		"de": "Hier sind die Kontaktdaten für %s:\n\n- Webseite: %s\n- E-Mail: %s\n- Telefonnummer: %s\n- Adresse: %s\n\nLass mich wissen, wenn ich sonst noch behilflich sein kann!",
		"en": "Here's the contact information for %s:\n\n- Website: %s\n- Email: %s\n- Phone: %s\n- Address: %s\n\nLet me know if I can help you with anything else!",
	}
	// Args: website.
	p.ContactFallback = map[string]string{
		"de": "Tut mir leid, ich konnte momentan keine Kontaktdaten finden. Bitte besuche die Website für mehr Informationen: %s",
		"en": "I'm sorry, I couldn't find any contact details right now. Please visit the website for more information: %s",
	}
	p.BackendApology = map[string]string{
		"de": "Entschuldige, ich habe gerade Verbindungsprobleme. Bitte versuch es gleich noch einmal.",
		"en": "I'm sorry, I'm having trouble connecting right now. Please try again in a moment.",
	}
	p.NotAvailable = map[string]string{
		"de": "nicht verfügbar",
		"en": "not available",
	}

	p.SwitchTriggers = map[string]string{
		"sprich deutsch":    "de",
		"switch to german":  "de",
		"auf deutsch":       "de",
		"speak english":     "en",
		"switch to english": "en",
		"auf englisch":      "en",
	}
	p.KeywordShortcuts = map[string][]string{
		"schmerz":   {"tut waxing weh", "does waxing hurt"},
		"hurt":      {"does waxing hurt", "tut waxing weh"},
		"parken":    {"parkplatz", "parking"},
		"parking":   {"parking", "parkplatz"},
		"gutschein": {"gutschein", "gift card"},
		"voucher":   {"gift card", "gutschein"},
	}
	p.StrictNonServices = []string{"men's intimate waxing", "intim waxing männer", "intimwaxing männer"}
	p.YesTokens = []string{"yes", "yes please", "sure", "please", "yeah", "ja", "ja bitte", "bitte", "sicher"}
	p.BookingFixes = map[string][]Replacement{
		"de": {
			{Old: "Welche Methode bevorzugst du?", New: "Am besten buchst du über eine der folgenden Möglichkeiten:"},
			{Old: "Wie möchtest du buchen?", New: "Du kannst selbst entscheiden, wie du buchen möchtest – hier sind deine Optionen:"},
			{Old: "Ich kann dir bei der Buchung helfen", New: "Ich kann dir Infos geben, aber die Buchung musst du selbst durchführen"},
		},
		"en": {
			{Old: "Which method do you prefer?", New: "The easiest way to book is through one of the following options:"},
			{Old: "I can book that for you", New: "I can give you the info, but you'll need to complete the booking yourself"},
		},
	}
	return p
}
