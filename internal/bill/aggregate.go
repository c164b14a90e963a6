package bill

import (
	"sort"
	"strings"
	"time"

	"smartbill/pkg/models"
)

// ComputeSummary derives headline statistics from a bill sequence.
// An empty sequence yields zero revenue and a zero average.
func ComputeSummary(bills []models.Bill) models.SummaryStats {
	stats := models.SummaryStats{BillCount: len(bills)}
	for _, b := range bills {
		stats.TotalRevenue += b.TotalAmount
	}
	if stats.BillCount > 0 {
		stats.AverageBillValue = stats.TotalRevenue / float64(stats.BillCount)
	}
	return stats
}

// ComputeCustomerProfiles groups bills by trimmed customer name and derives
// one profile per group, ordered by descending total spent. Grouping is
// case-sensitive: names differing only in case stay distinct. LastActive is
// the latest bill date by calendar comparison, and tags are the deduplicated
// union across the group. Ties on total spent keep first-appearance order.
func ComputeCustomerProfiles(bills []models.Bill) []models.Customer {
	profiles := make(map[string]*models.Customer)
	seenTags := make(map[string]map[string]bool)
	var order []string

	for _, b := range bills {
		name := strings.TrimSpace(b.CustomerName)
		p, ok := profiles[name]
		if !ok {
			p = &models.Customer{Name: name, LastActive: b.Date, Tags: []string{}}
			profiles[name] = p
			seenTags[name] = make(map[string]bool)
			order = append(order, name)
		}

		p.TotalSpent += b.TotalAmount
		p.BillCount++
		for _, tag := range b.Tags {
			if !seenTags[name][tag] {
				seenTags[name][tag] = true
				p.Tags = append(p.Tags, tag)
			}
		}
		if laterDate(b.Date, p.LastActive) {
			p.LastActive = b.Date
		}
	}

	out := make([]models.Customer, 0, len(order))
	for _, name := range order {
		out = append(out, *profiles[name])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalSpent > out[j].TotalSpent
	})
	return out
}

// laterDate reports whether a is strictly after b as a calendar date.
// Dates are parsed rather than compared lexically so non-padded
// representations still order correctly; unparseable values lose.
func laterDate(a, b string) bool {
	ta, errA := parseDate(a)
	tb, errB := parseDate(b)
	if errA != nil {
		return false
	}
	if errB != nil {
		return true
	}
	return ta.After(tb)
}

var dateLayouts = []string{"2006-01-02", "2006-1-2"}

func parseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
