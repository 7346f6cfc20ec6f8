package reporting

import (
	"sort"
	"time"

	"github.com/datascientist-hue/live-dashboard/internal/domain/identity"
	"github.com/datascientist-hue/live-dashboard/internal/domain/sales"
	"github.com/datascientist-hue/live-dashboard/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Summary holds the headline metrics of a filtered record set. Sums are
// null-aware: a record with a missing quantity or value contributes nothing
// to that sum but still counts toward the distinct counts.
type Summary struct {
	TotalTons  decimal.Decimal `json:"total_tons"`
	TotalValue decimal.Decimal `json:"total_value"`
	Invoices   int             `json:"invoices"`
	Customers  int             `json:"customers"`
	Categories int             `json:"categories"`
}

// Summarize computes the summary metrics for a record set.
func Summarize(records []sales.Record) Summary {
	totalTons := decimal.Zero
	totalValue := decimal.Zero
	invoices := make(map[string]struct{})
	customers := make(map[string]struct{})
	categories := make(map[string]struct{})

	for _, r := range records {
		if tons, ok := r.Tons(); ok {
			totalTons = totalTons.Add(tons)
		}
		if r.NetValue.Valid {
			totalValue = totalValue.Add(r.NetValue.Decimal)
		}
		if r.InvoiceNumber != "" {
			invoices[r.InvoiceNumber] = struct{}{}
		}
		customers[r.CustomerName] = struct{}{}
		categories[r.MappedCategory] = struct{}{}
	}

	return Summary{
		TotalTons:  totalTons,
		TotalValue: totalValue,
		Invoices:   len(invoices),
		Customers:  len(customers),
		Categories: len(categories),
	}
}

// Comparative holds the fixed trailing-window volumes anchored at the end of
// the selected date range. They are computed over the scope-restricted set
// before any user filtering: the pickers narrow the detail tables, not the
// trend.
type Comparative struct {
	Anchor       time.Time       `json:"anchor"`
	DayTons      decimal.Decimal `json:"day_tons"`
	PrevDayTons  decimal.Decimal `json:"prev_day_tons"`
	WeekTons     decimal.Decimal `json:"week_tons"`
	DayValue     decimal.Decimal `json:"day_value"`
	PrevDayValue decimal.Decimal `json:"prev_day_value"`
	WeekValue    decimal.Decimal `json:"week_value"`
}

// ComparativeVolumes computes tonnage and value on the anchor day D, on D−1,
// and over the 7-day window [D−6, D].
func ComparativeVolumes(records []sales.Record, anchor time.Time) Comparative {
	day := truncateDay(anchor)
	prev := day.AddDate(0, 0, -1)
	weekStart := day.AddDate(0, 0, -6)

	c := Comparative{
		Anchor:       day,
		DayTons:      decimal.Zero,
		PrevDayTons:  decimal.Zero,
		WeekTons:     decimal.Zero,
		DayValue:     decimal.Zero,
		PrevDayValue: decimal.Zero,
		WeekValue:    decimal.Zero,
	}

	for _, r := range records {
		d := truncateDay(r.InvoiceDate)
		tons, hasTons := r.Tons()
		value, hasValue := r.NetValue.Decimal, r.NetValue.Valid

		if d.Equal(day) {
			if hasTons {
				c.DayTons = c.DayTons.Add(tons)
			}
			if hasValue {
				c.DayValue = c.DayValue.Add(value)
			}
		}
		if d.Equal(prev) {
			if hasTons {
				c.PrevDayTons = c.PrevDayTons.Add(tons)
			}
			if hasValue {
				c.PrevDayValue = c.PrevDayValue.Add(value)
			}
		}
		if !d.Before(weekStart) && !d.After(day) {
			if hasTons {
				c.WeekTons = c.WeekTons.Add(tons)
			}
			if hasValue {
				c.WeekValue = c.WeekValue.Add(value)
			}
		}
	}
	return c
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// GroupRow is one line of a grouped performance table.
type GroupRow struct {
	Key string `json:"key"`
	// Detail is a secondary attribute of the group key, such as the area a
	// sales officer belongs to. Empty for views without one.
	Detail string          `json:"detail,omitempty"`
	Tons   decimal.Decimal `json:"tons"`
	Value  decimal.Decimal `json:"value"`
	// Counterparts is the distinct count of the view's counterpart dimension,
	// such as distributors per product category.
	Counterparts int `json:"counterparts"`
	// Categories is the distinct product categories touched by the group.
	Categories int `json:"categories"`
}

// GroupedTable is one grouped performance view over a filtered record set.
type GroupedTable struct {
	View             identity.GroupView `json:"view"`
	KeyLabel         string             `json:"key_label"`
	DetailLabel      string             `json:"detail_label,omitempty"`
	CounterpartLabel string             `json:"counterpart_label"`
	Rows             []GroupRow         `json:"rows"`
}

// viewSpec describes how one grouping view is computed.
type viewSpec struct {
	keyDim           sales.Dimension
	detailDim        sales.Dimension // zero when the view has no detail column
	counterpartDim   sales.Dimension
	keyLabel         string
	detailLabel      string
	counterpartLabel string
}

var viewSpecs = map[identity.GroupView]viewSpec{
	identity.ViewCategory: {
		keyDim:           sales.DimCategory,
		counterpartDim:   sales.DimCustomer,
		keyLabel:         "Product Category",
		counterpartLabel: "Distributors",
	},
	identity.ViewDistributor: {
		keyDim:           sales.DimCustomer,
		counterpartDim:   sales.DimCategory,
		keyLabel:         "Distributor",
		counterpartLabel: "Categories",
	},
	identity.ViewDistrict: {
		keyDim:           sales.DimDistrict,
		counterpartDim:   sales.DimCustomer,
		keyLabel:         "District",
		counterpartLabel: "Distributors",
	},
	identity.ViewArea: {
		keyDim:           sales.DimArea,
		counterpartDim:   sales.DimCustomer,
		keyLabel:         "Area",
		counterpartLabel: "Distributors",
	},
	identity.ViewOfficer: {
		keyDim:           sales.DimOfficer,
		detailDim:        sales.DimArea,
		counterpartDim:   sales.DimCustomer,
		keyLabel:         "Sales Officer",
		detailLabel:      "Area",
		counterpartLabel: "Distributors",
	},
}

// GroupBy aggregates the record set into the requested view, sorted by total
// tonnage descending. Ties keep first-seen order.
func GroupBy(records []sales.Record, view identity.GroupView) (*GroupedTable, error) {
	spec, ok := viewSpecs[view]
	if !ok {
		return nil, shared.NewDomainError("UNKNOWN_VIEW", "Unrecognized grouping view")
	}

	type groupAcc struct {
		row          GroupRow
		counterparts map[string]struct{}
		categories   map[string]struct{}
	}

	order := make([]string, 0)
	groups := make(map[string]*groupAcc)

	for _, r := range records {
		key := r.Dimension(spec.keyDim)
		acc, ok := groups[key]
		if !ok {
			acc = &groupAcc{
				row:          GroupRow{Key: key, Tons: decimal.Zero, Value: decimal.Zero},
				counterparts: make(map[string]struct{}),
				categories:   make(map[string]struct{}),
			}
			if spec.detailDim != "" {
				acc.row.Detail = r.Dimension(spec.detailDim)
			}
			groups[key] = acc
			order = append(order, key)
		}

		if tons, ok := r.Tons(); ok {
			acc.row.Tons = acc.row.Tons.Add(tons)
		}
		if r.NetValue.Valid {
			acc.row.Value = acc.row.Value.Add(r.NetValue.Decimal)
		}
		acc.counterparts[r.Dimension(spec.counterpartDim)] = struct{}{}
		acc.categories[r.Dimension(sales.DimCategory)] = struct{}{}
	}

	rows := make([]GroupRow, 0, len(order))
	for _, key := range order {
		acc := groups[key]
		acc.row.Counterparts = len(acc.counterparts)
		acc.row.Categories = len(acc.categories)
		rows = append(rows, acc.row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Tons.GreaterThan(rows[j].Tons)
	})

	return &GroupedTable{
		View:             view,
		KeyLabel:         spec.keyLabel,
		DetailLabel:      spec.detailLabel,
		CounterpartLabel: spec.counterpartLabel,
		Rows:             rows,
	}, nil
}
