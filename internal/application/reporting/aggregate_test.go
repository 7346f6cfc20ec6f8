package reporting

import (
	"testing"
	"time"

	"github.com/datascientist-hue/live-dashboard/internal/domain/identity"
	"github.com/datascientist-hue/live-dashboard/internal/domain/sales"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func num(v string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(v), Valid: true}
}

func rec(date time.Time, inv, qty, value, region, district, area, officer, category, customer string) sales.Record {
	r := sales.Record{
		InvoiceDate:   date,
		InvoiceNumber: inv,
		Region:        region,
		District:      district,
		Area:          area,
		Officer:       officer,
		Category:      category,
		CustomerName:  customer,
		CustomerClass: "Retail",
	}
	r.MappedCategory = category
	if qty != "" {
		r.Quantity = num(qty)
	}
	if value != "" {
		r.NetValue = num(value)
	}
	return r
}

func sampleRecords() []sales.Record {
	return []sales.Record{
		rec(day(2024, 1, 10), "INV1", "500", "1000", "North", "D1", "A1", "Ravi", "LUB", "Acme"),
		rec(day(2024, 1, 10), "INV2", "1500", "2000", "South", "D2", "A2", "Meena", "LUB", "Zen"),
		rec(day(2024, 1, 9), "INV3", "2000", "3000", "North", "D1", "A1", "Ravi", "GRS", "Acme"),
		rec(day(2024, 1, 4), "INV4", "1000", "4000", "North", "D3", "A3", "Kiran", "LUB", "Best"),
		rec(day(2024, 1, 1), "INV5", "3000", "5000", "South", "D2", "A2", "Meena", "GRS", "Zen"),
	}
}

func mustCapability(t *testing.T, role identity.Role) identity.Capability {
	t.Helper()
	cap, err := identity.CapabilityFor(role)
	require.NoError(t, err)
	return cap
}

func TestApplyFilters(t *testing.T) {
	records := sampleRecords()
	admin := mustCapability(t, identity.RoleAdmin)

	t.Run("empty selection is a strict no-op", func(t *testing.T) {
		out := ApplyFilters(records, admin, Selection{})
		assert.Equal(t, records, out)
	})

	t.Run("filters on a selected dimension", func(t *testing.T) {
		out := ApplyFilters(records, admin, Selection{
			Filters: map[sales.Dimension][]string{sales.DimRegion: {"North"}},
		})
		require.Len(t, out, 3)
		for _, r := range out {
			assert.Equal(t, "North", r.Region)
		}
	})

	t.Run("multiple values select the union", func(t *testing.T) {
		out := ApplyFilters(records, admin, Selection{
			Filters: map[sales.Dimension][]string{sales.DimDistrict: {"D1", "D3"}},
		})
		assert.Len(t, out, 3)
	})

	t.Run("a dimension the role does not expose is ignored", func(t *testing.T) {
		so := mustCapability(t, identity.RoleSO)
		out := ApplyFilters(records, so, Selection{
			Filters: map[sales.Dimension][]string{sales.DimRegion: {"North"}},
		})
		assert.Equal(t, records, out)
	})
}

func TestFilterOptions(t *testing.T) {
	records := sampleRecords()
	admin := mustCapability(t, identity.RoleAdmin)

	t.Run("options are sorted distinct values", func(t *testing.T) {
		options := FilterOptions(records, admin, Selection{})
		require.Len(t, options, 4)
		assert.Equal(t, sales.DimRegion, options[0].Dimension)
		assert.Equal(t, []string{"North", "South"}, options[0].Values)
		assert.Equal(t, []string{"D1", "D2", "D3"}, options[1].Values)
	})

	t.Run("lower levels cascade from the upper selection", func(t *testing.T) {
		options := FilterOptions(records, admin, Selection{
			Filters: map[sales.Dimension][]string{sales.DimRegion: {"North"}},
		})
		assert.Equal(t, []string{"North", "South"}, options[0].Values)
		assert.Equal(t, []string{"D1", "D3"}, options[1].Values)
		assert.Equal(t, []string{"Kiran", "Ravi"}, options[3].Values)
	})

	t.Run("roles only see their exposed dimensions", func(t *testing.T) {
		dsm := mustCapability(t, identity.RoleDSM)
		options := FilterOptions(records, dsm, Selection{})
		require.Len(t, options, 2)
		assert.Equal(t, sales.DimArea, options[0].Dimension)
		assert.Equal(t, sales.DimOfficer, options[1].Dimension)
	})
}

func TestApplyDateRange(t *testing.T) {
	records := sampleRecords()

	t.Run("inclusive on both ends", func(t *testing.T) {
		out := ApplyDateRange(records, day(2024, 1, 9), day(2024, 1, 10))
		assert.Len(t, out, 3)
	})

	t.Run("open start", func(t *testing.T) {
		out := ApplyDateRange(records, time.Time{}, day(2024, 1, 4))
		assert.Len(t, out, 2)
	})

	t.Run("zero range is a no-op", func(t *testing.T) {
		assert.Equal(t, records, ApplyDateRange(records, time.Time{}, time.Time{}))
	})
}

func TestSummarize(t *testing.T) {
	t.Run("computes totals and distinct counts", func(t *testing.T) {
		s := Summarize(sampleRecords())
		assert.True(t, s.TotalTons.Equal(decimal.NewFromInt(8)), "got %s", s.TotalTons)
		assert.True(t, s.TotalValue.Equal(decimal.NewFromInt(15000)))
		assert.Equal(t, 5, s.Invoices)
		assert.Equal(t, 3, s.Customers)
		assert.Equal(t, 2, s.Categories)
	})

	t.Run("missing numerics are excluded, not zeroed", func(t *testing.T) {
		records := []sales.Record{
			rec(day(2024, 1, 10), "INV1", "500", "", "North", "D1", "A1", "Ravi", "LUB", "Acme"),
			rec(day(2024, 1, 10), "INV2", "", "2000", "North", "D1", "A1", "Ravi", "LUB", "Zen"),
		}
		s := Summarize(records)
		assert.True(t, s.TotalTons.Equal(decimal.RequireFromString("0.5")))
		assert.True(t, s.TotalValue.Equal(decimal.NewFromInt(2000)))
		assert.Equal(t, 2, s.Customers)
	})
}

func TestComparativeVolumes(t *testing.T) {
	records := sampleRecords()
	anchor := day(2024, 1, 10)

	t.Run("day, previous day and trailing week", func(t *testing.T) {
		c := ComparativeVolumes(records, anchor)
		// D: INV1+INV2 = 2000 kg; D-1: INV3 = 2000 kg; [D-6,D]: adds INV4.
		assert.True(t, c.DayTons.Equal(decimal.NewFromInt(2)), "got %s", c.DayTons)
		assert.True(t, c.PrevDayTons.Equal(decimal.NewFromInt(2)))
		assert.True(t, c.WeekTons.Equal(decimal.NewFromInt(5)))
		assert.True(t, c.DayValue.Equal(decimal.NewFromInt(3000)))
	})

	t.Run("independent of the selected start date", func(t *testing.T) {
		// The comparative windows are computed before the date cut, so
		// narrowing the start date must not change them.
		narrow := ApplyDateRange(records, day(2024, 1, 10), anchor)
		wide := records

		require.NotEqual(t, len(narrow), len(wide))
		assert.False(t, ComparativeVolumes(narrow, anchor).WeekTons.Equal(ComparativeVolumes(wide, anchor).WeekTons))
	})
}

func TestGroupBy(t *testing.T) {
	records := sampleRecords()

	t.Run("sorted by tonnage descending", func(t *testing.T) {
		table, err := GroupBy(records, identity.ViewCategory)
		require.NoError(t, err)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, "GRS", table.Rows[0].Key)
		assert.True(t, table.Rows[0].Tons.Equal(decimal.NewFromInt(5)))
		assert.Equal(t, "LUB", table.Rows[1].Key)
		assert.True(t, table.Rows[1].Tons.Equal(decimal.NewFromInt(3)))
	})

	t.Run("counts distinct counterparts", func(t *testing.T) {
		table, err := GroupBy(records, identity.ViewCategory)
		require.NoError(t, err)
		// LUB is bought by Acme, Zen and Best; GRS by Acme and Zen.
		assert.Equal(t, 2, table.Rows[0].Counterparts)
		assert.Equal(t, 3, table.Rows[1].Counterparts)
	})

	t.Run("officer view carries the area detail", func(t *testing.T) {
		table, err := GroupBy(records, identity.ViewOfficer)
		require.NoError(t, err)
		require.NotEmpty(t, table.Rows)
		assert.Equal(t, "Meena", table.Rows[0].Key)
		assert.Equal(t, "A2", table.Rows[0].Detail)
	})

	t.Run("grouped totals are additive", func(t *testing.T) {
		summary := Summarize(records)
		for _, view := range []identity.GroupView{
			identity.ViewCategory, identity.ViewDistributor, identity.ViewDistrict,
			identity.ViewArea, identity.ViewOfficer,
		} {
			table, err := GroupBy(records, view)
			require.NoError(t, err)

			tons, value := decimal.Zero, decimal.Zero
			for _, row := range table.Rows {
				tons = tons.Add(row.Tons)
				value = value.Add(row.Value)
			}
			assert.True(t, tons.Equal(summary.TotalTons), "view %s tons", view)
			assert.True(t, value.Equal(summary.TotalValue), "view %s value", view)
		}
	})

	t.Run("ties keep first-seen order", func(t *testing.T) {
		tied := []sales.Record{
			rec(day(2024, 1, 10), "INV1", "1000", "100", "North", "D1", "A1", "Ravi", "B-CAT", "Acme"),
			rec(day(2024, 1, 10), "INV2", "1000", "200", "North", "D1", "A1", "Ravi", "A-CAT", "Zen"),
		}
		table, err := GroupBy(tied, identity.ViewCategory)
		require.NoError(t, err)
		assert.Equal(t, "B-CAT", table.Rows[0].Key)
		assert.Equal(t, "A-CAT", table.Rows[1].Key)
	})

	t.Run("unknown view is an error", func(t *testing.T) {
		_, err := GroupBy(records, identity.GroupView("warehouse"))
		assert.Error(t, err)
	})
}

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"25000000", "₹2.50 Cr"},
		{"10000000", "₹1.00 Cr"},
		{"250000", "₹2.50 L"},
		{"100000", "₹1.00 L"},
		{"2500", "₹2.50 K"},
		{"1000", "₹1.00 K"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatCurrency(decimal.RequireFromString(tc.in)), "input %s", tc.in)
	}

	t.Run("below a thousand keeps the full amount", func(t *testing.T) {
		got := FormatCurrency(decimal.RequireFromString("999.5"))
		assert.Contains(t, got, "₹")
		assert.NotContains(t, got, " K")
	})
}

func TestFormatTons(t *testing.T) {
	assert.Equal(t, "12.50 MT", FormatTons(decimal.RequireFromString("12.5")))
}

func TestExport(t *testing.T) {
	table, err := GroupBy(sampleRecords(), identity.ViewCategory)
	require.NoError(t, err)

	t.Run("CSV carries raw values", func(t *testing.T) {
		data, err := ExportCSV(table)
		require.NoError(t, err)

		csv := string(data)
		assert.Contains(t, csv, "Product Category,Total Tons,Total Value")
		assert.Contains(t, csv, "GRS,5,8000")
		assert.NotContains(t, csv, "₹")
		assert.NotContains(t, csv, "MT")
	})

	t.Run("text rendition formats the same aggregate", func(t *testing.T) {
		text := FormatText(table)
		assert.Contains(t, text, "GRS")
		assert.Contains(t, text, "5.00 MT")
		assert.Contains(t, text, "₹8.00 K")
	})

	t.Run("officer export includes the detail column", func(t *testing.T) {
		officers, err := GroupBy(sampleRecords(), identity.ViewOfficer)
		require.NoError(t, err)

		data, err := ExportCSV(officers)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Sales Officer,Area,")
	})
}
