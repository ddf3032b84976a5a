package model

// NotAvailable is the placeholder for string fields missing from a provider item.
const NotAvailable = "N/A"

// KeywordRecord is one keyword's metrics within a dataset.
type KeywordRecord struct {
	Keyword           string  `json:"keyword"`
	SearchVolume      int64   `json:"search_volume"`
	KeywordDifficulty float64 `json:"keyword_difficulty"`
	CPC               float64 `json:"cpc"`
	LastUpdated       string  `json:"last_updated"`

	// Keyed by every domain in the context the dataset was built with,
	// not only the domain the record was fetched for.
	PositionByDomain map[string]float64 `json:"position_by_domain"`
	TrafficByDomain  map[string]float64 `json:"traffic_by_domain"`
}

// DomainDataset is the ordered set of records fetched for one domain.
// Order follows the provider response and only matters for display.
type DomainDataset struct {
	Domain  string          `json:"domain"`
	Records []KeywordRecord `json:"records"`
}

// Len returns the number of records, duplicates included.
func (d DomainDataset) Len() int {
	return len(d.Records)
}

// KeywordSet returns the distinct keywords in the dataset.
func (d DomainDataset) KeywordSet() map[string]struct{} {
	set := make(map[string]struct{}, len(d.Records))
	for _, r := range d.Records {
		set[r.Keyword] = struct{}{}
	}
	return set
}

// TotalTraffic sums the traffic estimate recorded for the owning domain.
func (d DomainDataset) TotalTraffic() float64 {
	var total float64
	for _, r := range d.Records {
		total += r.TrafficByDomain[d.Domain]
	}
	return total
}
