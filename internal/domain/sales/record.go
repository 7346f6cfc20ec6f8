// Package sales holds the canonical in-memory model of the transaction
// snapshot. Raw column names from the external dataset never leak past the
// ingestion boundary; everything downstream works on Record and Dimension.
package sales

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Dimension identifies a categorical attribute of a Record that can be
// scoped, filtered or grouped on.
type Dimension string

const (
	DimRegion        Dimension = "region"         // regional manager (RGM)
	DimDistrict      Dimension = "district"       // district manager (DSM)
	DimArea          Dimension = "area"           // area manager (ASM)
	DimOfficer       Dimension = "officer"        // sales officer (SO)
	DimCategory      Dimension = "category"       // product category
	DimCustomer      Dimension = "customer"       // business partner name
	DimCustomerClass Dimension = "customer_class" // customer classification
)

// HierarchyDimensions lists the organizational dimensions broadest first.
// Cascading filter options are computed in this order.
var HierarchyDimensions = []Dimension{DimRegion, DimDistrict, DimArea, DimOfficer}

// UnknownValue is substituted for absent categorical values so grouping and
// filtering never see an empty key.
const UnknownValue = "Unknown"

// KgPerTon converts the quantity unit (liters/kilograms) to metric tons.
var KgPerTon = decimal.NewFromInt(1000)

// Record is one normalized row of sales data. Records are immutable once
// built; the whole snapshot is replaced on refresh.
type Record struct {
	InvoiceDate   time.Time
	InvoiceNumber string

	// Quantity and NetValue are null-aware: an unparseable source value is
	// carried as invalid and excluded from sums, never coerced to zero.
	Quantity decimal.NullDecimal
	NetValue decimal.NullDecimal

	Region   string
	District string
	Area     string
	Officer  string

	Category string
	// MappedCategory is the category after the optional mapping-table
	// override. Equal to Category when no mapping entry applies.
	MappedCategory string

	CustomerName  string
	CustomerCode  string
	CustomerClass string

	Period    string
	Warehouse string
}

// Dimension returns the record's value for a categorical dimension.
func (r Record) Dimension(d Dimension) string {
	switch d {
	case DimRegion:
		return r.Region
	case DimDistrict:
		return r.District
	case DimArea:
		return r.Area
	case DimOfficer:
		return r.Officer
	case DimCategory:
		return r.MappedCategory
	case DimCustomer:
		return r.CustomerName
	case DimCustomerClass:
		return r.CustomerClass
	}
	return ""
}

// Tons returns the quantity converted to metric tons, and whether the
// quantity was present.
func (r Record) Tons() (decimal.Decimal, bool) {
	if !r.Quantity.Valid {
		return decimal.Zero, false
	}
	return r.Quantity.Decimal.Div(KgPerTon), true
}

// Dataset is one immutable snapshot of the transaction data together with
// its provenance. A refresh builds a complete new Dataset and swaps it in
// wholesale; records are never updated in place.
type Dataset struct {
	Records  []Record
	Source   string
	LoadedAt time.Time
}

// DateBounds returns the earliest and latest invoice dates in the dataset.
// ok is false for an empty dataset.
func (d *Dataset) DateBounds() (min, max time.Time, ok bool) {
	if len(d.Records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	min, max = d.Records[0].InvoiceDate, d.Records[0].InvoiceDate
	for _, r := range d.Records[1:] {
		if r.InvoiceDate.Before(min) {
			min = r.InvoiceDate
		}
		if r.InvoiceDate.After(max) {
			max = r.InvoiceDate
		}
	}
	return min, max, true
}

// Distinct returns the sorted distinct values of a dimension across records.
func Distinct(records []Record, dim Dimension) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		seen[r.Dimension(dim)] = struct{}{}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
