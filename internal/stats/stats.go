// Package stats computes the aggregate usage report shown by the
// reporting screen.
package stats

import (
	"sort"

	"github.com/ogrebenko/mailkeep/internal/models"
)

// UseCount is the number of accounts-label pairs carrying one label.
type UseCount struct {
	Use   string `json:"use"`
	Count int    `json:"count"`
}

// Report aggregates the account list.
type Report struct {
	// TotalAccounts is the number of stored records.
	TotalAccounts int `json:"totalAccounts"`
	// TotalUses is the number of usage labels across all records,
	// duplicates included.
	TotalUses int `json:"totalUses"`
	// UseCounts lists each distinct label with its frequency, most
	// frequent first. Ties break alphabetically.
	UseCounts []UseCount `json:"useCounts"`
}

// Build computes the report for accounts.
func Build(accounts []models.EmailAccount) Report {
	r := Report{TotalAccounts: len(accounts)}
	counts := make(map[string]int)
	for _, acc := range accounts {
		r.TotalUses += len(acc.Uses)
		for _, use := range acc.Uses {
			counts[use]++
		}
	}
	r.UseCounts = make([]UseCount, 0, len(counts))
	for use, n := range counts {
		r.UseCounts = append(r.UseCounts, UseCount{Use: use, Count: n})
	}
	sort.Slice(r.UseCounts, func(i, j int) bool {
		if r.UseCounts[i].Count != r.UseCounts[j].Count {
			return r.UseCounts[i].Count > r.UseCounts[j].Count
		}
		return r.UseCounts[i].Use < r.UseCounts[j].Use
	})
	return r
}
