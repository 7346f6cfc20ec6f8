package sales

// CategoryMapping translates a legacy product-category value to an updated
// label. It is applied as a non-destructive override: records without a
// mapping entry keep their original category and always survive the join.
type CategoryMapping map[string]string

// Apply rewrites MappedCategory on every record. Records whose category has
// no mapping entry keep MappedCategory == Category.
func (m CategoryMapping) Apply(records []Record) {
	if len(m) == 0 {
		return
	}
	for i := range records {
		if mapped, ok := m[records[i].Category]; ok && mapped != "" {
			records[i].MappedCategory = mapped
		} else {
			records[i].MappedCategory = records[i].Category
		}
	}
}
