// Package reporting turns a scoped dataset into the dashboard's summary
// metrics, comparative windows and grouped performance tables.
package reporting

import (
	"time"

	"github.com/datascientist-hue/live-dashboard/internal/domain/sales"
)

// Selection is what the user has narrowed the dashboard to: zero or more
// values per exposed hierarchy dimension plus an optional inclusive date
// range. An absent filter means "include all remaining", never "include
// none".
type Selection struct {
	Filters   map[sales.Dimension][]string
	StartDate time.Time
	EndDate   time.Time
}

// Values returns the selected values for a dimension, nil when unfiltered.
func (s Selection) Values(dim sales.Dimension) []string {
	if s.Filters == nil {
		return nil
	}
	return s.Filters[dim]
}
