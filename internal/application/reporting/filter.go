package reporting

import (
	"time"

	"github.com/datascientist-hue/live-dashboard/internal/domain/identity"
	"github.com/datascientist-hue/live-dashboard/internal/domain/sales"
)

// FilterOption is the choice list for one exposed filter dimension.
type FilterOption struct {
	Dimension sales.Dimension `json:"dimension"`
	Values    []string        `json:"values"`
}

// ApplyFilters restricts records to the user's hierarchy selections. Only
// dimensions the role exposes are consulted; an empty selection for a
// dimension is a no-op. Record order is preserved.
func ApplyFilters(records []sales.Record, cap identity.Capability, sel Selection) []sales.Record {
	out := records
	for _, dim := range cap.FilterDimensions {
		values := sel.Values(dim)
		if len(values) == 0 {
			continue
		}
		allowed := make(map[string]struct{}, len(values))
		for _, v := range values {
			allowed[v] = struct{}{}
		}
		kept := make([]sales.Record, 0, len(out))
		for _, r := range out {
			if _, ok := allowed[r.Dimension(dim)]; ok {
				kept = append(kept, r)
			}
		}
		out = kept
	}
	return out
}

// FilterOptions computes the cascading choice lists for the role's exposed
// dimensions. Each level's options are drawn from the dataset after applying
// the selections of the broader levels above it, so a district list under a
// region selection only shows that region's districts.
func FilterOptions(records []sales.Record, cap identity.Capability, sel Selection) []FilterOption {
	options := make([]FilterOption, 0, len(cap.FilterDimensions))
	remaining := records
	for _, dim := range sales.HierarchyDimensions {
		if !cap.ExposesFilter(dim) {
			continue
		}
		options = append(options, FilterOption{
			Dimension: dim,
			Values:    sales.Distinct(remaining, dim),
		})

		if values := sel.Values(dim); len(values) > 0 {
			allowed := make(map[string]struct{}, len(values))
			for _, v := range values {
				allowed[v] = struct{}{}
			}
			kept := make([]sales.Record, 0, len(remaining))
			for _, r := range remaining {
				if _, ok := allowed[r.Dimension(dim)]; ok {
					kept = append(kept, r)
				}
			}
			remaining = kept
		}
	}
	return options
}

// ApplyDateRange keeps records whose invoice date lies within the inclusive
// range. A zero start or end leaves that side open.
func ApplyDateRange(records []sales.Record, start, end time.Time) []sales.Record {
	if start.IsZero() && end.IsZero() {
		return records
	}
	out := make([]sales.Record, 0, len(records))
	for _, r := range records {
		if !start.IsZero() && r.InvoiceDate.Before(start) {
			continue
		}
		if !end.IsZero() && r.InvoiceDate.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}
