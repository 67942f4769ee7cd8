package resolver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"studio-assistant/internal/domain"
)

func TestTransportStage_WinsOverFAQ(t *testing.T) {
	e := newEnv(t)
	e.knownUser("u1", "Anna")
	e.business.profile = domain.BusinessProfile{
		ContactInfo: map[string]string{"address": "Getreidegasse 1"},
		Stations: []domain.Station{
			{Name: "Hauptbahnhof", Address: "Südtiroler Platz 1", Lines: "Bus 1, Bus 2"},
		},
		FAQ: map[string]string{"hauptbahnhof": "falsche Antwort"},
	}

	reply := e.resolve(t, "u1", "Wie komme ich vom Hauptbahnhof zu euch?")

	require.Contains(t, reply, "Hauptbahnhof")
	require.Contains(t, reply, "Bus 1, Bus 2")
	require.Contains(t, reply, "https://www.google.com/maps/dir/")
	require.NotContains(t, reply, "falsche Antwort")
	require.Empty(t, e.chat.reqs)
}

func TestTransportStage_FuzzyShortInputOnly(t *testing.T) {
	e := newEnv(t)
	e.knownUser("u1", "Anna")
	e.business.profile = domain.BusinessProfile{
		Stations: []domain.Station{
			{Name: "Mirabellplatz", Address: "Mirabellplatz 4", Lines: "Bus 2"},
		},
	}

	// A close typo in a short message matches.
	reply := e.resolve(t, "u1", "mirabellplaz?")
	require.Contains(t, reply, "Mirabellplatz")

	// The same typo buried in long free text does not.
	reply = e.resolve(t, "u1", "ich war gestern irgendwo beim mirabellplaz unterwegs und habe eine Frage")
	require.NotContains(t, reply, "Bus 2")
}

func TestFAQStage_TriggerContainmentAndFollowUp(t *testing.T) {
	e := newEnv(t)
	e.knownUser("u1", "Anna")
	e.business.profile = domain.BusinessProfile{
		FAQ: map[string]string{"parkplatz": "Parken kannst du direkt in der Garage nebenan."},
	}

	reply := e.resolve(t, "u1", "Habt ihr einen Parkplatz?")

	require.Contains(t, reply, "Parken kannst du direkt in der Garage nebenan.")
	require.Contains(t, reply, e.tenant.FollowUps["de"][0])
	require.Empty(t, e.chat.reqs)
}

func TestFAQStage_ShortInputSkipped(t *testing.T) {
	e := newEnv(t)
	e.knownUser("u1", "Anna")
	e.business.profile = domain.BusinessProfile{
		FAQ: map[string]string{"ab": "nie"},
	}

	reply := e.resolve(t, "u1", "ab")
	require.NotContains(t, reply, "nie")
}

func TestSuggestStage_TypoGetsSuggestion(t *testing.T) {
	e := newEnv(t)
	e.knownUser("u1", "Anna")
	e.business.profile = domain.BusinessProfile{Services: []string{"Waxing", "Laser"}}

	reply := e.resolve(t, "u1", "waxin")
	require.Equal(t, fmt.Sprintf(e.tenant.DidYouMean["de"], "Waxing"), reply)
}

func TestSuggestStage_ExactServiceGoesToBackend(t *testing.T) {
	e := newEnv(t)
	e.knownUser("u1", "Anna")
	e.business.profile = domain.BusinessProfile{Services: []string{"Waxing"}}

	reply := e.resolve(t, "u1", "Waxing")
	require.Equal(t, "Alles klar!", reply)
	require.Len(t, e.chat.reqs, 1)
}

func TestNonServiceStage_ApologyWinsOverSuggestion(t *testing.T) {
	e := newEnv(t)
	e.knownUser("u1", "Anna")
	e.business.profile = domain.BusinessProfile{
		Services:            []string{"Waxing"},
		ExplicitNonServices: []string{"Massage"},
	}

	reply := e.resolve(t, "u1", "Bietet ihr neben Waxing auch Massage an?")

	expected := fmt.Sprintf(e.tenant.NoOfferApology["de"], "Massage", e.tenant.Name)
	require.Equal(t, expected, reply)
}

func TestNonServiceStage_StrictRefusal(t *testing.T) {
	e := newEnv(t)
	e.knownUser("u1", "Anna")
	e.business.profile = domain.BusinessProfile{
		ExplicitNonServices: []string{"men's intimate waxing"},
	}

	reply := e.resolve(t, "u1", "Do you offer men's intimate waxing?")
	require.Equal(t, e.tenant.StrictRefusal["de"], reply)
}

func TestNonServiceStage_TemplateReply(t *testing.T) {
	e := newEnv(t)
	e.knownUser("u1", "Anna")
	e.business.profile = domain.BusinessProfile{
		ExplicitNonServices: []string{"Massage"},
		NonServiceReplies:   []string{"Leider gibt es {service} bei uns nicht."},
	}

	reply := e.resolve(t, "u1", "Macht ihr Massage?")
	require.Equal(t, "Leider gibt es Massage bei uns nicht.", reply)
}

func TestNonServiceStage_RedirectArmsPartnerOffer(t *testing.T) {
	e := newEnv(t)
	e.knownUser("u1", "Anna")
	e.business.profile = domain.BusinessProfile{
		RedirectNonServices: []string{"Nageldesign"},
	}
	e.partner.profile = domain.PartnerProfile{
		ContactInfo: map[string]string{
			"website": "https://www.aurora-beauty.example",
			"phone":   "+43 662 555",
		},
	}
	e.chat.reply = "Das machen wir nicht, aber Aurora Urban Beauty hilft dir gerne weiter!"

	reply := e.resolve(t, "u1", "Bietet ihr Nageldesign an?")
	require.Equal(t, e.chat.reply, reply)
	require.Equal(t, string(domain.OfferPartnerContact), e.store.fields["u1|"+domain.FieldLastOffer])

	// The follow-up "ja" resolves to the partner's contact info and clears
	// the offer.
	reply = e.resolve(t, "u1", "ja")
	require.Contains(t, reply, e.tenant.Partner.Name)
	require.Contains(t, reply, "+43 662 555")
	require.Empty(t, e.store.fields["u1|"+domain.FieldLastOffer])

	// A second "ja" has nothing to continue and goes to the backend.
	reply = e.resolve(t, "u1", "ja")
	require.Equal(t, e.chat.reply, reply)
}

func TestNonServiceStage_RedirectBackendErrorUsesFallbackTemplate(t *testing.T) {
	e := newEnv(t)
	e.knownUser("u1", "Anna")
	e.business.profile = domain.BusinessProfile{
		RedirectNonServices: []string{"Nageldesign"},
	}
	e.chat.err = fmt.Errorf("upstream down")

	reply := e.resolve(t, "u1", "Bietet ihr Nageldesign an?")
	expected := fmt.Sprintf(e.tenant.ReferralFallback["de"], "Nageldesign", e.tenant.Name, e.tenant.Partner.Name)
	require.Equal(t, expected, reply)
}

func TestOfferStage_EmptyContactUsesWebsiteFallback(t *testing.T) {
	e := newEnv(t)
	e.knownUser("u1", "Anna")
	e.store.fields["u1|"+domain.FieldLastOffer] = string(domain.OfferPartnerContact)

	reply := e.resolve(t, "u1", "ja bitte")
	expected := fmt.Sprintf(e.tenant.ContactFallback["de"], e.tenant.Partner.Website)
	require.Equal(t, expected, reply)
}

func TestOfferStage_ServiceSuggestions(t *testing.T) {
	e := newEnv(t)
	e.knownUser("u1", "Anna")
	e.store.fields["u1|"+domain.FieldLastOffer] = string(domain.OfferServiceSuggestions)

	reply := e.resolve(t, "u1", "yes please")
	require.Equal(t, fmt.Sprintf(e.tenant.SuggestionsReply["de"], e.tenant.Name), reply)
}

func TestPostProcess_BookingFixApplied(t *testing.T) {
	e := newEnv(t)
	e.knownUser("u1", "Anna")
	e.chat.reply = "Du kannst online oder telefonisch buchen. Wie möchtest du buchen?"

	reply := e.resolve(t, "u1", "Wie kann ich einen Termin ausmachen?")
	require.NotContains(t, reply, "Wie möchtest du buchen?")
	require.Contains(t, reply, e.tenant.BookingFixes["de"][1].New)
}

func TestPostProcess_GreetingStrippedAfterIntro(t *testing.T) {
	e := newEnv(t)
	e.knownUser("u1", "Anna")
	e.store.fields["u1|"+domain.FieldSkipIntro] = "1"
	e.chat.reply = "Hallo Anna, gerne helfe ich dir dabei!"

	reply := e.resolve(t, "u1", "Was kostet eine Behandlung?")
	require.Equal(t, "Gerne helfe ich dir dabei!", reply)
}

func TestPostProcess_PartnerMentionArmsOffer(t *testing.T) {
	e := newEnv(t)
	e.knownUser("u1", "Anna")
	e.chat.reply = "Dafür empfehle ich dir Aurora Urban Beauty."

	e.resolve(t, "u1", "Wer macht in Salzburg gute Gesichtsbehandlungen?")
	require.Equal(t, string(domain.OfferPartnerContact), e.store.fields["u1|"+domain.FieldLastOffer])
}

func TestPostProcess_SuggestionOfferArmsContinuation(t *testing.T) {
	e := newEnv(t)
	e.knownUser("u1", "Anna")
	e.chat.reply = "Soll ich dir ein paar Optionen auflisten?"

	e.resolve(t, "u1", "Was bietet ihr denn alles an?")
	require.Equal(t, string(domain.OfferServiceSuggestions), e.store.fields["u1|"+domain.FieldLastOffer])

	reply := e.resolve(t, "u1", "ja")
	require.Equal(t, fmt.Sprintf(e.tenant.SuggestionsReply["de"], e.tenant.Name), reply)
	require.Empty(t, e.store.fields["u1|"+domain.FieldLastOffer])
}

func TestPostProcess_NameInjection(t *testing.T) {
	e := newEnv(t)
	e.knownUser("u1", "Anna")
	e.svc.randFloat = func() float64 { return 0 }
	e.chat.reply = "Gerne erkläre ich dir das."

	reply := e.resolve(t, "u1", "Erklär mir bitte die Preise")
	require.Equal(t, "Anna, gerne erkläre ich dir das.", reply)
}
