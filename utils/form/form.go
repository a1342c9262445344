// Package form is the entity form state: values, touched tracking, submit-time validation and
// repeated row sections whose keyed state is re-indexed when a row is removed.
package form

import (
	"sort"
	"strconv"
	"strings"
)

// Check validates one field value and returns an error message, or "" when valid.
type Check func(value string, values map[string]string) string

// Required is the check used for fields listed as required.
func Required(label string) Check {
	return func(value string, _ map[string]string) string {
		if strings.TrimSpace(value) == "" {
			return label + " is required"
		}
		return ""
	}
}

// State holds the form. Keys of repeated rows are "section.index.field" ("programs.0.title").
type State struct {
	Values    map[string]string
	Touched   map[string]bool
	Errors    map[string]string
	Submitted bool

	required map[string]string
	checks   map[string]Check
	sections map[string][]string
	rows     map[string]int
}

// New creates an empty form.
func New() *State {
	return &State{
		Values:   map[string]string{},
		Touched:  map[string]bool{},
		Errors:   map[string]string{},
		required: map[string]string{},
		checks:   map[string]Check{},
		sections: map[string][]string{},
		rows:     map[string]int{},
	}
}

// Require marks field (or, for a section, "section.*.field") as required.
func (s *State) Require(field, label string) *State {
	s.required[field] = label
	return s
}

// Rule attaches an extra check to field (or "section.*.field").
func (s *State) Rule(field string, check Check) *State {
	s.checks[field] = check
	return s
}

// Section declares a repeated subsection with its per-row fields.
func (s *State) Section(name string, fields ...string) *State {
	s.sections[name] = fields
	return s
}

// Load fills values from a record (edit mode) and counts section rows.
func (s *State) Load(values map[string]string) {
	for k, v := range values {
		s.Values[k] = v
	}
	for name := range s.sections {
		n := 0
		prefix := name + "."
		for k := range values {
			if !strings.HasPrefix(k, prefix) {
				continue
			}
			idx, _, ok := splitRowKey(k[len(prefix):])
			if ok && idx+1 > n {
				n = idx + 1
			}
		}
		s.rows[name] = n
	}
}

// IsUpdate reports whether the form edits an existing record.
func (s *State) IsUpdate() bool {
	return strings.TrimSpace(s.Values["id"]) != ""
}

// Set records an edit. The field becomes touched; an error it had is cleared right away and
// is re-evaluated on blur or submit.
func (s *State) Set(field, value string) {
	s.Values[field] = value
	s.Touched[field] = true
	if _, failed := s.Errors[field]; failed {
		delete(s.Errors, field)
	}
}

// Blur marks field touched and validates it.
func (s *State) Blur(field string) {
	s.Touched[field] = true
	if msg := s.validateField(field); msg != "" {
		s.Errors[field] = msg
	} else {
		delete(s.Errors, field)
	}
}

// VisibleError is the error to render for field: only once touched or after a submit attempt.
func (s *State) VisibleError(field string) string {
	if !s.Touched[field] && !s.Submitted {
		return ""
	}
	return s.Errors[field]
}

// Submit validates every field and marks all required fields touched. It reports whether
// the form is valid.
func (s *State) Submit() bool {
	s.Submitted = true
	s.Errors = map[string]string{}

	for _, field := range s.fields() {
		if _, req := s.required[pattern(field)]; req {
			s.Touched[field] = true
		}
		if msg := s.validateField(field); msg != "" {
			s.Errors[field] = msg
		}
	}
	return len(s.Errors) == 0
}

// SetErrors shows errors reported by the server (keyed like the form) as if just submitted.
func (s *State) SetErrors(errs map[string]string) {
	s.Submitted = true
	for field, msg := range errs {
		s.Errors[field] = msg
		s.Touched[field] = true
	}
}

// Rows returns the number of rows in section.
func (s *State) Rows(section string) int {
	return s.rows[section]
}

// AddRow appends an empty row to section and returns its index.
func (s *State) AddRow(section string) int {
	i := s.rows[section]
	s.rows[section] = i + 1
	for _, f := range s.sections[section] {
		s.Values[RowKey(section, i, f)] = ""
	}
	return i
}

// RemoveRow deletes row i of section. Keyed values, touched flags and errors of later rows
// shift down by one; earlier rows keep their keys.
func (s *State) RemoveRow(section string, i int) {
	n := s.rows[section]
	if i < 0 || i >= n {
		return
	}
	s.Values = reindexKeys(s.Values, section, i)
	s.Touched = reindexKeys(s.Touched, section, i)
	s.Errors = reindexKeys(s.Errors, section, i)
	s.rows[section] = n - 1
}

// RowKey builds the key of field in row i of section.
func RowKey(section string, i int, field string) string {
	return section + "." + strconv.Itoa(i) + "." + field
}

// ReindexAfterRemove drops index i and shifts every key above it down by one.
func ReindexAfterRemove[V any](m map[int]V, i int) map[int]V {
	out := make(map[int]V, len(m))
	for k, v := range m {
		switch {
		case k < i:
			out[k] = v
		case k > i:
			out[k-1] = v
		}
	}
	return out
}

func reindexKeys[V any](m map[string]V, section string, removed int) map[string]V {
	prefix := section + "."
	out := make(map[string]V, len(m))
	for k, v := range m {
		if !strings.HasPrefix(k, prefix) {
			out[k] = v
			continue
		}
		idx, field, ok := splitRowKey(k[len(prefix):])
		if !ok {
			out[k] = v
			continue
		}
		switch {
		case idx < removed:
			out[k] = v
		case idx > removed:
			out[RowKey(section, idx-1, field)] = v
		}
	}
	return out
}

// splitRowKey parses "3.title" into (3, "title").
func splitRowKey(rest string) (int, string, bool) {
	dot := strings.IndexByte(rest, '.')
	if dot < 0 {
		return 0, "", false
	}
	idx, err := strconv.Atoi(rest[:dot])
	if err != nil || idx < 0 {
		return 0, "", false
	}
	return idx, rest[dot+1:], true
}

// pattern maps "programs.2.title" to "programs.*.title" so section rules apply to every row.
func pattern(field string) string {
	parts := strings.Split(field, ".")
	if len(parts) == 3 {
		if _, err := strconv.Atoi(parts[1]); err == nil {
			return parts[0] + ".*." + parts[2]
		}
	}
	return field
}

// fields lists every field that has a rule, expanding section rules over existing rows.
func (s *State) fields() []string {
	seen := map[string]bool{}
	add := func(f string) { seen[f] = true }

	for f := range s.required {
		s.expand(f, add)
	}
	for f := range s.checks {
		s.expand(f, add)
	}

	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func (s *State) expand(field string, add func(string)) {
	parts := strings.Split(field, ".")
	if len(parts) == 3 && parts[1] == "*" {
		for i := 0; i < s.rows[parts[0]]; i++ {
			add(RowKey(parts[0], i, parts[2]))
		}
		return
	}
	add(field)
}

func (s *State) validateField(field string) string {
	p := pattern(field)
	value := s.Values[field]
	if label, ok := s.required[p]; ok {
		if msg := Required(label)(value, s.Values); msg != "" {
			return msg
		}
	}
	if check, ok := s.checks[p]; ok {
		return check(value, s.Values)
	}
	return ""
}
