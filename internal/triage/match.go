package triage

import (
	"strings"

	"github.com/nao1215/logtriage/internal/model"
)

// Match returns one AlertRecord for every (entry, domain) pair where the
// domain string occurs anywhere in the entry's URL.
//
// Matching is a plain case-sensitive substring test with no URL
// normalisation. Records are ordered by entry, then by domain set order.
func Match(entries []model.LogEntry, domains *model.DomainSet) []model.AlertRecord {
	alerts := make([]model.AlertRecord, 0)
	if domains == nil || domains.Len() == 0 {
		return alerts
	}

	for _, entry := range entries {
		for domain := range domains.All() {
			if strings.Contains(entry.URL, domain) {
				alerts = append(alerts, model.AlertRecord{
					URL:             entry.URL,
					Status:          entry.Status,
					BlacklistDomain: domain,
				})
			}
		}
	}
	return alerts
}
