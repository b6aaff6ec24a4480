package model

// AlertRecord is one (log entry, blacklist domain) hit.
// A URL matching two domains, or requested twice, yields several records.
type AlertRecord struct {
	URL             string `json:"url"`
	Status          string `json:"status"`
	BlacklistDomain string `json:"blacklist_domain"`
}

// Summary is the flat record written to summary_report.json.
//
// TotalRequests is the number of 404-causing requests (the sum of the 404
// tally), not the number of log lines. The field name is kept for
// compatibility with existing consumers of the report.
type Summary struct {
	TotalRequests int `json:"total_requests"`
	Total404URLs  int `json:"total_404_urls"`
	TotalAlerts   int `json:"total_alerts"`
}
