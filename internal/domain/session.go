package domain

// Session field names. The store persists each field per user under a
// composite "{field}:{user_id}" style key. Chat history is kept separately
// as a bounded ordered list.
const (
	FieldName        = "user_name"
	FieldAskedName   = "asked_for_name"
	FieldLanguage    = "user_language"
	FieldPending     = "pending_message"
	FieldPrevious    = "previous_message"
	FieldSkipIntro   = "skip_intro"
	FieldAskedSwitch = "asked_language_switch"
	FieldLastOffer   = "context_last_offer"
)

// Offer marks which follow-up question the assistant posed last turn, so a
// short affirmative reply can resolve without re-running the pipeline.
type Offer string

const (
	OfferNone               Offer = ""
	OfferServiceSuggestions Offer = "service_suggestions"
	OfferPartnerContact     Offer = "partner_contact_info"
	OfferPrimaryContact     Offer = "primary_contact_info"
)
