package core

import "slices"

// RecordFilter is a conjunctive predicate over indexed record fields,
// compiled from the structured half of a SearchRequest. The zero value
// matches every record.
type RecordFilter struct {
	Type        *AudioType // equality
	Tags        []string   // every listed tag must be present
	MinDuration int        // inclusive, 0 = unbounded
	MaxDuration int        // inclusive, 0 = unbounded
}

// Empty reports whether the filter contributes no clauses.
func (f *RecordFilter) Empty() bool {
	return f == nil ||
		(f.Type == nil && len(f.Tags) == 0 && f.MinDuration == 0 && f.MaxDuration == 0)
}

// Matches evaluates the conjunction against a record.
func (f *RecordFilter) Matches(record *AudioRecord) bool {
	if record == nil {
		return false
	}
	if f.Empty() {
		return true
	}
	if f.Type != nil && record.Type != *f.Type {
		return false
	}
	for _, tag := range f.Tags {
		if !slices.Contains(record.Tags, tag) {
			return false
		}
	}
	if f.MinDuration > 0 && record.Duration < f.MinDuration {
		return false
	}
	if f.MaxDuration > 0 && record.Duration > f.MaxDuration {
		return false
	}
	return true
}
