package api

// SimplePriceResponse from GET /simple/price.
//
// Keyed by asset id, then by field name. Field names are prefixed with the
// quote currency: "usd", "usd_24h_vol", "usd_24h_change", "usd_24h_high",
// "usd_24h_low", plus the unprefixed "last_updated_at" (unix seconds).
// Absent and null fields decode as nil.
type SimplePriceResponse map[string]map[string]*float64

// Quote is one asset's price snapshot extracted from a SimplePriceResponse.
type Quote struct {
	ID            string
	Price         float64
	High24h       *float64
	Low24h        *float64
	Volume24h     *float64
	Change24h     *float64 // percent
	LastUpdatedAt *float64 // unix seconds
}

// Quote extracts the snapshot for asset id quoted in vs. ok is false when
// the id is missing or has no price.
func (r SimplePriceResponse) Quote(id, vs string) (Quote, bool) {
	fields, ok := r[id]
	if !ok {
		return Quote{}, false
	}
	price := fields[vs]
	if price == nil {
		return Quote{}, false
	}
	return Quote{
		ID:            id,
		Price:         *price,
		High24h:       fields[vs+"_24h_high"],
		Low24h:        fields[vs+"_24h_low"],
		Volume24h:     fields[vs+"_24h_vol"],
		Change24h:     fields[vs+"_24h_change"],
		LastUpdatedAt: fields["last_updated_at"],
	}, true
}

// SimplePriceOptions configures a GetSimplePrice request.
type SimplePriceOptions struct {
	IDs          []string
	VsCurrency   string // default "usd"
	Include24h   bool   // volume, change, high, low
	IncludeStamp bool   // last_updated_at
}
