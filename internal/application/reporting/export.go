package reporting

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"text/tabwriter"
)

// ExportCSV renders a grouped table as CSV with raw, unformatted numbers.
// The export and the formatted rendition derive from the same aggregate;
// formatted strings are never re-parsed.
func ExportCSV(table *GroupedTable) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{table.KeyLabel}
	if table.DetailLabel != "" {
		header = append(header, table.DetailLabel)
	}
	header = append(header, "Total Tons", "Total Value", table.CounterpartLabel, "Categories")
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, row := range table.Rows {
		rec := []string{row.Key}
		if table.DetailLabel != "" {
			rec = append(rec, row.Detail)
		}
		rec = append(rec,
			row.Tons.String(),
			row.Value.String(),
			fmt.Sprintf("%d", row.Counterparts),
			fmt.Sprintf("%d", row.Categories),
		)
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatText renders a grouped table as a shareable aligned-text report with
// abbreviated currency and tonnage suffixes.
func FormatText(table *GroupedTable) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	if table.DetailLabel != "" {
		fmt.Fprintf(w, "%s\t%s\tVolume\tValue\t%s\n", table.KeyLabel, table.DetailLabel, table.CounterpartLabel)
		for _, row := range table.Rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
				row.Key, row.Detail, FormatTons(row.Tons), FormatCurrency(row.Value), row.Counterparts)
		}
	} else {
		fmt.Fprintf(w, "%s\tVolume\tValue\t%s\n", table.KeyLabel, table.CounterpartLabel)
		for _, row := range table.Rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
				row.Key, FormatTons(row.Tons), FormatCurrency(row.Value), row.Counterparts)
		}
	}

	_ = w.Flush()
	return buf.String()
}
