package domain

// Station is one entry of the transport-station directory.
type Station struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Lines   string `json:"lines"`
}

// BusinessProfile is the read-only, per-language business data consulted on
// every turn. Missing fields stay zero-valued; the resolver treats them as
// "no match" and falls through.
type BusinessProfile struct {
	RoleDescription     string            `json:"role_description"`
	Services            []string          `json:"services"`
	ContactInfo         map[string]string `json:"contact_info"`
	Promotions          []string          `json:"promotions"`
	Pricing             string            `json:"pricing"`
	OpeningHours        string            `json:"opening_hours"`
	Booking             string            `json:"booking"`
	AdditionalInfo      map[string]string `json:"additional_info"`
	NonServiceReplies   []string          `json:"non_service_replies"`
	ExplicitNonServices []string          `json:"non_services_explicit"`
	RedirectNonServices []string          `json:"non_services_redirect"`
	FAQ                 map[string]string `json:"faq"`
	Stations            []Station         `json:"stations"`
}

// PartnerProfile is the partner business data fetched live per request.
type PartnerProfile struct {
	Services    []string
	ContactInfo map[string]string
}
