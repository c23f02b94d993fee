package models

// KPIData is the dashboard headline block
type KPIData struct {
	NewQuoteRequests struct {
		TotalLast7Days int `json:"totalLast7Days"`
		Today          int `json:"today"`
	} `json:"newQuoteRequests"`
	PendingQuotes struct {
		Total int `json:"total"`
	} `json:"pendingQuotes"`
	NewUserSignups struct {
		TotalLast7Days int `json:"totalLast7Days"`
		Today          int `json:"today"`
	} `json:"newUserSignups"`
	QuoteConversion struct {
		Rate   float64 `json:"rate"`
		Change float64 `json:"change"`
	} `json:"quoteConversion"`
}

// VisitorDataPoint is one day of the visitors chart
type VisitorDataPoint struct {
	Date    string `json:"date"`
	Desktop int    `json:"desktop"`
	Mobile  int    `json:"mobile"`
}

// TimeRange of the visitors chart
type TimeRange string

const (
	Range7d  TimeRange = "7d"
	Range30d TimeRange = "30d"
	Range90d TimeRange = "90d"
)

// Valid reports whether r is a supported range
func (r TimeRange) Valid() bool {
	return r == Range7d || r == Range30d || r == Range90d
}
