package models

// HospitalFilter enumerates every recognized hospital listing filter.
// Zero values mean "no constraint".
type HospitalFilter struct {
	VerifiedOnly bool   // only VERIFIED listings
	Country      string // exact country code
	Source       string // exact provenance string
}

// StockFilter enumerates every recognized stock listing filter.
// Zero values mean "no constraint".
type StockFilter struct {
	HospitalID    string
	Status        StockStatus
	AntivenomType string
}
