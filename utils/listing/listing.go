// Package listing holds the admin list-table contract: search, filters, type-aware stable
// sorting, pagination with a sliding page window, and the request debounce policy. The HTTP
// list endpoints and the terminal console share it.
package listing

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Row is one record as a JSON object.
type Row = map[string]any

const (
	// DefaultPageSize is the number of rows per page.
	DefaultPageSize = 10
	// MaxPageSize bounds a client supplied limit.
	MaxPageSize = 100
	// WindowSize is the maximum number of page buttons shown.
	WindowSize = 5

	// SearchDebounce applies while a search term is present.
	SearchDebounce = 500 * time.Millisecond
	// FilterDebounce applies when only filters changed.
	FilterDebounce = 150 * time.Millisecond
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortState is the current sort column and direction. An empty Column means unsorted.
type SortState struct {
	Column    string    `json:"column"`
	Direction Direction `json:"direction"`
}

// Toggle returns the state after clicking column: the same column flips direction, a new
// column starts ascending.
func (s SortState) Toggle(column string) SortState {
	if s.Column == column {
		if s.Direction == Asc {
			return SortState{Column: column, Direction: Desc}
		}
		return SortState{Column: column, Direction: Asc}
	}
	return SortState{Column: column, Direction: Asc}
}

// DebounceDelay is how long to wait after the last keystroke or filter change.
func DebounceDelay(search string) time.Duration {
	if strings.TrimSpace(search) != "" {
		return SearchDebounce
	}
	return FilterDebounce
}

// ToRows converts records to rows through their JSON form.
func ToRows(records any) ([]Row, error) {
	data, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}
	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []Row{}
	}
	return rows, nil
}

// Filter keeps rows where any of fields contains search, case-insensitively. Nested arrays
// and objects are searched too. An empty search keeps every row.
func Filter(rows []Row, search string, fields []string) []Row {
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return rows
	}

	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		for _, f := range fields {
			if containsText(row[f], term) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

func containsText(v any, term string) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.Contains(strings.ToLower(t), term)
	case []any:
		for _, item := range t {
			if containsText(item, term) {
				return true
			}
		}
		return false
	case map[string]any:
		for _, item := range t {
			if containsText(item, term) {
				return true
			}
		}
		return false
	default:
		return strings.Contains(strings.ToLower(fmt.Sprint(t)), term)
	}
}

// Match applies exact-value filters. "status" accepts active/inactive and maps to is_active;
// every other key is a case-insensitive equality on that field. Empty values and "all" are
// ignored.
func Match(rows []Row, filters map[string]string) []Row {
	active := make(map[string]string, len(filters))
	for k, v := range filters {
		v = strings.TrimSpace(v)
		if v == "" || strings.EqualFold(v, "all") {
			continue
		}
		active[k] = v
	}
	if len(active) == 0 {
		return rows
	}

	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if matchRow(row, active) {
			out = append(out, row)
		}
	}
	return out
}

func matchRow(row Row, filters map[string]string) bool {
	for key, want := range filters {
		if key == "status" && isActivityFilter(want) {
			isActive, _ := row["is_active"].(bool)
			if strings.EqualFold(want, "active") != isActive {
				return false
			}
			continue
		}
		if !strings.EqualFold(fmt.Sprint(row[key]), want) {
			return false
		}
	}
	return true
}

func isActivityFilter(v string) bool {
	return strings.EqualFold(v, "active") || strings.EqualFold(v, "inactive")
}

// Sorter compares cell values the way the table does. It is safe for concurrent use.
type Sorter struct {
	mu       sync.Mutex
	collator *collate.Collator
}

// NewSorter creates a sorter with locale collation that orders digits numerically.
func NewSorter() *Sorter {
	return &Sorter{collator: collate.New(language.English, collate.Numeric, collate.IgnoreCase)}
}

// Sort orders rows in place by state. The sort is stable; an empty column leaves rows as is.
func (s *Sorter) Sort(rows []Row, state SortState) {
	if state.Column == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sort.SliceStable(rows, func(i, j int) bool {
		c := s.compare(state.Column, rows[i][state.Column], rows[j][state.Column])
		if state.Direction == Desc {
			return c > 0
		}
		return c < 0
	})
}

// Compare orders two cells of column. Nil sorts first. Numbers (or numeric strings on both
// sides) compare numerically, booleans false before true, columns named *_at or *date as
// timestamps, and everything else by collation.
func (s *Sorter) Compare(column string, a, b any) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compare(column, a, b)
}

func (s *Sorter) compare(column string, a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			default:
				return 1
			}
		}
	}

	if af, ok := toNumber(a); ok {
		if bf, ok := toNumber(b); ok {
			return compareFloat(af, bf)
		}
	}

	if isTimeColumn(column) {
		if at, ok := toTime(a); ok {
			if bt, ok := toTime(b); ok {
				return at.Compare(bt)
			}
		}
	}

	return s.collator.CompareString(fmt.Sprint(a), fmt.Sprint(b))
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func toNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		t = strings.TrimSpace(t)
		if t == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(t, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func isTimeColumn(column string) bool {
	c := strings.ToLower(column)
	return strings.HasSuffix(c, "_at") || strings.HasSuffix(c, "date") || c == "last_login"
}

var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

// Page is one page of rows plus the metadata the table renders.
type Page struct {
	Rows       []Row `json:"rows"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int   `json:"total"`
	TotalPages int   `json:"total_pages"`
	Window     []int `json:"window"`
}

// TotalPages is the page count for total rows; at least 1.
func TotalPages(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	return pages
}

// ClampPage keeps page within [1, totalPages].
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Paginate slices rows for page (1-based, clamped).
func Paginate(rows []Row, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	total := len(rows)
	pages := TotalPages(total, size)
	page = ClampPage(page, pages)

	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	slice := rows[start:end]
	if slice == nil {
		slice = []Row{}
	}

	return Page{
		Rows:       slice,
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: pages,
		Window:     PageWindow(page, pages),
	}
}

// PageWindow returns at most WindowSize page numbers. The first and last three pages show a
// fixed window; past them the current page sits in the middle.
func PageWindow(current, total int) []int {
	if total < 1 {
		return []int{}
	}
	current = ClampPage(current, total)

	var start int
	switch {
	case total <= WindowSize:
		start = 1
	case current <= 3:
		start = 1
	case current >= total-2:
		start = total - WindowSize + 1
	default:
		start = current - 2
	}

	end := start + WindowSize - 1
	if end > total {
		end = total
	}
	window := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		window = append(window, p)
	}
	return window
}

// Query is everything a list request can ask for.
type Query struct {
	Search  string
	Filters map[string]string
	Sort    SortState
	Page    int
	Size    int
}

// Apply runs search, filters, sort and pagination in that order.
func (s *Sorter) Apply(rows []Row, q Query, searchFields []string) Page {
	rows = Filter(rows, q.Search, searchFields)
	rows = Match(rows, q.Filters)
	s.Sort(rows, q.Sort)
	return Paginate(rows, q.Page, q.Size)
}
