package bill

import (
	"fmt"
	"sort"
	"strings"

	"smartbill/pkg/models"
)

// PageSize is the fixed number of bills per visible page.
const PageSize = 5

// SortKey selects the field a listing is ordered by.
type SortKey string

const (
	SortByCustomerName SortKey = "customerName"
	SortByDate         SortKey = "date"
	SortByDueDate      SortKey = "dueDate"
	SortByTotalAmount  SortKey = "totalAmount"
	SortByStatus       SortKey = "status"
)

// SortDirection flips the comparison of the chosen key.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// ParseSortKey validates a sort key from user input.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case SortByCustomerName, SortByDate, SortByDueDate, SortByTotalAmount, SortByStatus:
		return SortKey(s), nil
	}
	return "", fmt.Errorf("unknown sort key: %q (want customerName, date, dueDate, totalAmount or status)", s)
}

// ParseSortDirection validates a sort direction from user input.
func ParseSortDirection(s string) (SortDirection, error) {
	switch SortDirection(s) {
	case Ascending, Descending:
		return SortDirection(s), nil
	}
	return "", fmt.Errorf("unknown sort direction: %q (want asc or desc)", s)
}

// ListQuery is the transient input of one pipeline invocation.
type ListQuery struct {
	Search    string
	Key       SortKey
	Direction SortDirection
	Page      int // 1-based; clamped into the valid range
}

// Page is the visible slice of the filtered, sorted sequence.
type Page struct {
	Bills      []models.Bill
	Page       int // clamped 1-based page number actually rendered
	TotalPages int
	TotalCount int // filtered count before pagination
}

// List runs the filter/sort/paginate pipeline over the full bill sequence.
// The requested page number is clamped into [1, totalPages] on every
// invocation so a narrowed result set can never leave an empty visible page;
// an empty filtered set reports page 1 of 0.
func List(bills []models.Bill, q ListQuery) Page {
	filtered := Filter(bills, q.Search)
	Sort(filtered, q.Key, q.Direction)
	return Paginate(filtered, q.Page)
}

// Filter keeps bills whose customer name or any tag contains the query,
// case-insensitively. An empty query matches everything.
func Filter(bills []models.Bill, query string) []models.Bill {
	needle := strings.ToLower(query)
	out := make([]models.Bill, 0, len(bills))
	for _, b := range bills {
		if matchesQuery(b, needle) {
			out = append(out, b)
		}
	}
	return out
}

func matchesQuery(b models.Bill, needle string) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(b.CustomerName), needle) {
		return true
	}
	for _, tag := range b.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// Sort orders bills in place by the chosen key: lexical comparison for text
// fields (dates are zero-padded ISO, so lexical order is calendar order),
// numeric for totalAmount. The sort is stable.
func Sort(bills []models.Bill, key SortKey, dir SortDirection) {
	if key == "" {
		return
	}
	less := lessFunc(key)
	sort.SliceStable(bills, func(i, j int) bool {
		if dir == Descending {
			return less(bills[j], bills[i])
		}
		return less(bills[i], bills[j])
	})
}

func lessFunc(key SortKey) func(a, b models.Bill) bool {
	switch key {
	case SortByCustomerName:
		return func(a, b models.Bill) bool { return a.CustomerName < b.CustomerName }
	case SortByDate:
		return func(a, b models.Bill) bool { return a.Date < b.Date }
	case SortByDueDate:
		return func(a, b models.Bill) bool { return a.DueDate < b.DueDate }
	case SortByTotalAmount:
		return func(a, b models.Bill) bool { return a.TotalAmount < b.TotalAmount }
	case SortByStatus:
		return func(a, b models.Bill) bool { return a.Status < b.Status }
	default:
		return func(a, b models.Bill) bool { return false }
	}
}

// Paginate slices the filtered sequence into the requested 1-based page,
// clamping the page number into the valid range.
func Paginate(filtered []models.Bill, page int) Page {
	total := len(filtered)
	totalPages := (total + PageSize - 1) / PageSize

	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	if totalPages == 0 {
		return Page{Bills: []models.Bill{}, Page: 1, TotalPages: 0, TotalCount: 0}
	}

	start := (page - 1) * PageSize
	end := start + PageSize
	if end > total {
		end = total
	}
	return Page{
		Bills:      filtered[start:end],
		Page:       page,
		TotalPages: totalPages,
		TotalCount: total,
	}
}
