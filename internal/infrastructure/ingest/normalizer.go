package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/datascientist-hue/live-dashboard/internal/domain/sales"
	"github.com/datascientist-hue/live-dashboard/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// External column contract of the primary dataset. Renaming a column
// upstream is a schema error, never a silent empty result.
const (
	colInvoiceDate   = "Inv Date"
	colInvoiceNumber = "Inv No"
	colQuantity      = "Qty in Ltrs/Kgs"
	colNetValue      = "Net Value"
	colRegion        = "RGM"
	colDistrict      = "DSM"
	colArea          = "ASM"
	colOfficer       = "SO"
	colCategory      = "Prod Ctg"
	colCustomerName  = "Cust Name"
	colCustomerCode  = "Cust Code"
	colCustomerClass = "CustomerClass"
	colPeriod        = "JCPeriod"
	colWarehouse     = "Warehouse"
)

// DateLayout is the fixed invoice-date format of the source (e.g. 10-Jan-24).
const DateLayout = "02-Jan-06"

// requiredColumns must all be present after ingestion.
var requiredColumns = []string{colInvoiceDate, colQuantity, colNetValue, colRegion, colDistrict, colArea, colOfficer}

// Normalizer converts raw tables into sales records.
type Normalizer struct {
	logger *zap.Logger
	// retentionDays limits output to the most recent N days relative to the
	// newest surviving invoice date. Zero keeps everything.
	retentionDays int
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithRetentionDays restricts output to the most recent n days.
func WithRetentionDays(n int) NormalizerOption {
	return func(nr *Normalizer) {
		nr.retentionDays = n
	}
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(logger *zap.Logger, opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{logger: logger}
	if n.logger == nil {
		n.logger = zap.NewNop()
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize turns a raw table into records:
//   - rows whose invoice date fails to parse are dropped entirely
//   - numeric cells lose thousands separators, then parse; failures become
//     missing values, not zeros
//   - categorical cells degrade to "Unknown"
//
// A missing required column is a schema error. All rows failing the date
// parse is a data-integrity error, not a silent empty dataset.
func (n *Normalizer) Normalize(table *Table) ([]sales.Record, error) {
	for _, col := range requiredColumns {
		if !table.HasColumn(col) {
			return nil, shared.NewSchemaError(col)
		}
	}

	records := make([]sales.Record, 0, len(table.Rows))
	dropped := 0
	for i := range table.Rows {
		date, err := time.Parse(DateLayout, table.Cell(i, colInvoiceDate))
		if err != nil {
			dropped++
			continue
		}

		rec := sales.Record{
			InvoiceDate:   date,
			InvoiceNumber: table.Cell(i, colInvoiceNumber),
			Quantity:      parseDecimalCell(table.Cell(i, colQuantity)),
			NetValue:      parseDecimalCell(table.Cell(i, colNetValue)),
			Region:        categorical(table.Cell(i, colRegion)),
			District:      categorical(table.Cell(i, colDistrict)),
			Area:          categorical(table.Cell(i, colArea)),
			Officer:       categorical(table.Cell(i, colOfficer)),
			Category:      categorical(table.Cell(i, colCategory)),
			CustomerName:  categorical(table.Cell(i, colCustomerName)),
			CustomerCode:  table.Cell(i, colCustomerCode),
			CustomerClass: categorical(table.Cell(i, colCustomerClass)),
			Period:        categorical(table.Cell(i, colPeriod)),
			Warehouse:     table.Cell(i, colWarehouse),
		}
		rec.MappedCategory = rec.Category
		records = append(records, rec)
	}

	if len(records) == 0 {
		if len(table.Rows) == 0 {
			return nil, shared.NewIntegrityError("dataset contains no data rows")
		}
		return nil, shared.NewIntegrityError(
			fmt.Sprintf("no row carried a valid invoice date (expected format %s)", DateLayout))
	}
	if dropped > 0 {
		n.logger.Warn("Dropped rows with unparseable invoice dates",
			zap.Int("dropped", dropped),
			zap.Int("kept", len(records)))
	}

	if n.retentionDays > 0 {
		records = retainRecent(records, n.retentionDays)
	}

	return records, nil
}

// LoadCategoryMapping builds the category override from a secondary table.
// The join key is the single column shared with the primary schema's
// category column set; a mapping file that shares no column with the
// primary dataset cannot be joined.
func LoadCategoryMapping(table *Table, primary *Table) (sales.CategoryMapping, error) {
	joinKey := ""
	for _, h := range table.Headers {
		if primary.HasColumn(h) {
			joinKey = h
			break
		}
	}
	if joinKey == "" {
		return nil, shared.NewMergeError("category mapping shares no column with the primary dataset")
	}

	// The replacement label is the first column that is not the join key.
	valueCol := ""
	for _, h := range table.Headers {
		if h != joinKey {
			valueCol = h
			break
		}
	}
	if valueCol == "" {
		return nil, shared.NewMergeError("category mapping has no replacement column")
	}

	mapping := make(sales.CategoryMapping, len(table.Rows))
	for i := range table.Rows {
		key := table.Cell(i, joinKey)
		val := table.Cell(i, valueCol)
		if key != "" && val != "" {
			mapping[key] = val
		}
	}
	return mapping, nil
}

// parseDecimalCell strips thousands separators and parses. An unparseable
// or empty cell is missing, never zero.
func parseDecimalCell(s string) decimal.NullDecimal {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func categorical(s string) string {
	if s == "" {
		return sales.UnknownValue
	}
	return s
}

// retainRecent keeps records within n days of the newest invoice date.
func retainRecent(records []sales.Record, n int) []sales.Record {
	if len(records) == 0 {
		return records
	}
	newest := records[0].InvoiceDate
	for _, r := range records[1:] {
		if r.InvoiceDate.After(newest) {
			newest = r.InvoiceDate
		}
	}
	cutoff := newest.AddDate(0, 0, -(n - 1))

	// Source order is preserved; downstream tie-breaking is stable on it.
	out := records[:0]
	for _, r := range records {
		if !r.InvoiceDate.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}
