package services

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/sahilchouksey/mentor-hub-api/database"
	"github.com/sahilchouksey/mentor-hub-api/model"
	"github.com/sahilchouksey/mentor-hub-api/utils/validation"
)

// Record is what every admin-managed entity implements (through model.Base plus its own
// Normalize and SearchText).
type Record interface {
	database.Entity
	model.Defaulter
	Normalize()
	SearchText() []string
}

// RecordPtr constrains *T to Record.
type RecordPtr[T any] interface {
	*T
	Record
}

// Scope decides how an empty search term is treated.
type Scope int

const (
	// ScopePublic: active records only, empty term matches nothing.
	ScopePublic Scope = iota
	// ScopeAdmin: every record, empty term matches everything.
	ScopeAdmin
)

// Stats is the aggregate view of a collection: total, active, inactive plus resource extras.
type Stats map[string]any

// Resource describes one entity type to the generic service.
type Resource[T any] struct {
	// Name is the singular display name used in messages ("Internship").
	Name string
	// Protected lists JSON fields a payload may never set, on top of id and timestamps.
	Protected []string
	// Extras adds resource-specific aggregates to Stats.
	Extras func(records []T) Stats
	// BeforeWrite runs after validation on create (existing == nil) and update.
	BeforeWrite func(ctx context.Context, record *T, existing *T) error
}

// CRUDService is the list/search/create/update/delete/toggle/stats contract shared by every
// admin-managed resource.
type CRUDService[T any, PT RecordPtr[T]] struct {
	repo      database.Repository[T]
	resource  Resource[T]
	validator *validation.Validator
	now       func() time.Time
	// notNull lists the JSON fields of T that cannot hold null.
	notNull map[string]bool
}

// NewCRUDService creates the generic service over repo.
func NewCRUDService[T any, PT RecordPtr[T]](repo database.Repository[T], resource Resource[T]) *CRUDService[T, PT] {
	return &CRUDService[T, PT]{
		repo:      repo,
		resource:  resource,
		validator: validation.NewValidator(),
		now:       time.Now,
		notNull:   notNullFields(reflect.TypeOf((*T)(nil)).Elem()),
	}
}

// SetClock replaces the clock used to stamp new records.
func (s *CRUDService[T, PT]) SetClock(now func() time.Time) {
	s.now = now
}

// Name returns the resource display name.
func (s *CRUDService[T, PT]) Name() string {
	return s.resource.Name
}

// Repository exposes the underlying repository to resource-specific services.
func (s *CRUDService[T, PT]) Repository() database.Repository[T] {
	return s.repo
}

func (s *CRUDService[T, PT]) notFound(id string) error {
	return &NotFoundError{Resource: s.resource.Name, ID: id}
}

// List returns the collection in listing order. Public callers pass activeOnly.
func (s *CRUDService[T, PT]) List(ctx context.Context, activeOnly bool) ([]T, error) {
	records, err := s.repo.Find(ctx, database.Filter{ActiveOnly: activeOnly})
	if err != nil {
		return nil, err
	}
	SortRecords[T, PT](records)
	return records, nil
}

// Find returns records whose fields equal where, in listing order.
func (s *CRUDService[T, PT]) Find(ctx context.Context, where map[string]any, activeOnly bool) ([]T, error) {
	records, err := s.repo.Find(ctx, database.Filter{ActiveOnly: activeOnly, Where: where})
	if err != nil {
		return nil, err
	}
	SortRecords[T, PT](records)
	return records, nil
}

// Search is a case-insensitive substring match over the resource's search fields. An empty
// term returns nothing for public callers and the whole collection for admins.
func (s *CRUDService[T, PT]) Search(ctx context.Context, term string, scope Scope) ([]T, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		if scope == ScopePublic {
			return []T{}, nil
		}
		return s.List(ctx, false)
	}

	records, err := s.List(ctx, scope == ScopePublic)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	for i := range records {
		if Matches(PT(&records[i]), term) {
			out = append(out, records[i])
		}
	}
	return out, nil
}

// Matches reports whether any search field of r contains term (already lowercased).
func Matches(r Record, term string) bool {
	for _, field := range r.SearchText() {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// Get returns the record with id or a NotFoundError.
func (s *CRUDService[T, PT]) Get(ctx context.Context, id string) (*T, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, s.notFound(id)
		}
		return nil, err
	}
	return record, nil
}

// Decode builds a new record from a JSON payload: schema defaults first, then the payload
// with id and timestamps stripped.
func (s *CRUDService[T, PT]) Decode(payload []byte) (*T, error) {
	fields, err := decodeObject(payload)
	if err != nil {
		return nil, err
	}
	s.stripProtected(fields)

	record := new(T)
	PT(record).ApplyDefaults()
	if err := remarshal(fields, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Create decodes payload and inserts it.
func (s *CRUDService[T, PT]) Create(ctx context.Context, payload []byte) (*T, error) {
	record, err := s.Decode(payload)
	if err != nil {
		return nil, err
	}
	return s.Insert(ctx, record)
}

// Insert normalizes, validates and persists a record built in code.
func (s *CRUDService[T, PT]) Insert(ctx context.Context, record *T) (*T, error) {
	p := PT(record)
	p.Normalize()
	if err := s.Validate(record); err != nil {
		return nil, err
	}
	if s.resource.BeforeWrite != nil {
		if err := s.resource.BeforeWrite(ctx, record, nil); err != nil {
			return nil, err
		}
	}
	if p.Created().IsZero() {
		p.SetCreated(s.now().UTC())
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Validate runs the declarative schema and returns every violation.
func (s *CRUDService[T, PT]) Validate(record *T) error {
	if fields := s.validator.Check(record); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Update merges patch over the stored record; fields absent from patch are unchanged.
func (s *CRUDService[T, PT]) Update(ctx context.Context, id string, patch []byte) (*T, error) {
	return s.UpdateWith(ctx, id, patch, nil)
}

// UpdateWith is Update with a hook that can adjust the merged record before validation.
func (s *CRUDService[T, PT]) UpdateWith(ctx context.Context, id string, patch []byte, mutate func(*T) error) (*T, error) {
	fields, err := decodeObject(patch)
	if err != nil {
		return nil, err
	}
	s.stripProtected(fields)
	if err := s.rejectNulls(fields); err != nil {
		return nil, err
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	current := map[string]any{}
	if err := remarshal(existing, &current); err != nil {
		return nil, err
	}
	mergePatch(current, fields)

	record := new(T)
	if err := remarshal(current, record); err != nil {
		return nil, err
	}
	if mutate != nil {
		if err := mutate(record); err != nil {
			return nil, err
		}
	}

	p := PT(record)
	p.SetID(PT(existing).GetID())
	p.SetCreated(PT(existing).Created())
	p.Normalize()
	if err := s.Validate(record); err != nil {
		return nil, err
	}
	if s.resource.BeforeWrite != nil {
		if err := s.resource.BeforeWrite(ctx, record, existing); err != nil {
			return nil, err
		}
	}
	if err := s.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Save persists a record loaded from this service without re-validating it.
func (s *CRUDService[T, PT]) Save(ctx context.Context, record *T) error {
	if err := s.repo.Update(ctx, record); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return s.notFound(PT(record).GetID())
		}
		return err
	}
	return nil
}

// Delete removes the record and returns it.
func (s *CRUDService[T, PT]) Delete(ctx context.Context, id string) (*T, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, s.notFound(id)
		}
		return nil, err
	}
	return record, nil
}

// ToggleActive flips is_active and persists it.
func (s *CRUDService[T, PT]) ToggleActive(ctx context.Context, id string) (*T, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p := PT(record)
	p.SetActive(!p.Active())
	if err := s.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Stats recomputes aggregates over the full collection on every call.
func (s *CRUDService[T, PT]) Stats(ctx context.Context) (Stats, error) {
	records, err := s.repo.Find(ctx, database.Filter{})
	if err != nil {
		return nil, err
	}

	active := 0
	for i := range records {
		if PT(&records[i]).Active() {
			active++
		}
	}
	stats := Stats{
		"total":    len(records),
		"active":   active,
		"inactive": len(records) - active,
	}
	if s.resource.Extras != nil {
		for k, v := range s.resource.Extras(records) {
			stats[k] = v
		}
	}
	return stats, nil
}

func (s *CRUDService[T, PT]) stripProtected(fields map[string]any) {
	delete(fields, "id")
	delete(fields, "created_at")
	delete(fields, "updated_at")
	for _, name := range s.resource.Protected {
		delete(fields, name)
	}
}

// rejectNulls refuses null for fields that have no empty state, so a patch cannot silently
// reset a flag or a number to its zero value.
func (s *CRUDService[T, PT]) rejectNulls(fields map[string]any) error {
	var errs []validation.FieldError
	for k, v := range fields {
		if v == nil && s.notNull[k] {
			errs = append(errs, validation.FieldError{Field: k, Message: k + " cannot be null"})
		}
	}
	if len(errs) == 0 {
		return nil
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
	return &ValidationError{Fields: errs}
}

// notNullFields maps the JSON names of t's value-type fields to true. Pointers, slices, maps
// and interfaces accept null.
func notNullFields(t reflect.Type) map[string]bool {
	out := map[string]bool{}
	walkJSONFields(t, func(name string, f reflect.StructField) {
		switch f.Type.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		default:
			out[name] = true
		}
	})
	return out
}

// Columns returns the JSON field names of v's type (a struct or pointer to one), embedded
// structs included.
func Columns(v any) map[string]bool {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := map[string]bool{}
	if t == nil || t.Kind() != reflect.Struct {
		return out
	}
	walkJSONFields(t, func(name string, _ reflect.StructField) { out[name] = true })
	return out
}

func walkJSONFields(t reflect.Type, fn func(name string, f reflect.StructField)) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if f.Anonymous && name == "" && f.Type.Kind() == reflect.Struct {
			walkJSONFields(f.Type, fn)
			continue
		}
		if !f.IsExported() || name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		fn(name, f)
	}
}

// SortRecords orders records for listing. Records with a sort_order go by sort_order then
// oldest first; everything else newest first. The id breaks remaining ties.
func SortRecords[T any, PT RecordPtr[T]](records []T) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := PT(&records[i]), PT(&records[j])
		if sa, ok := any(a).(model.Sortable); ok {
			sb := any(b).(model.Sortable)
			if sa.SortKey() != sb.SortKey() {
				return sa.SortKey() < sb.SortKey()
			}
			if !a.Created().Equal(b.Created()) {
				return a.Created().Before(b.Created())
			}
			return a.GetID() < b.GetID()
		}
		if !a.Created().Equal(b.Created()) {
			return a.Created().After(b.Created())
		}
		return a.GetID() < b.GetID()
	})
}

// CountBy tallies records per key; blank keys are counted as "uncategorized".
func CountBy[T any](records []T, key func(*T) string) map[string]int {
	counts := make(map[string]int)
	for i := range records {
		k := strings.TrimSpace(key(&records[i]))
		if k == "" {
			k = "uncategorized"
		}
		counts[k]++
	}
	return counts
}

func decodeObject(payload []byte) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, decodeError(err)
	}
	if fields == nil {
		return nil, NewValidationError("", "request body must be a JSON object")
	}
	return fields, nil
}

func remarshal(src any, dst any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return decodeError(err)
	}
	return nil
}

// decodeError maps JSON decoding failures onto a ValidationError naming the field.
func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "" {
			return NewValidationError("", "request body must be a JSON object")
		}
		return NewValidationError(typeErr.Field, "must be a "+typeErr.Value+" compatible "+typeErr.Type.String())
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return NewValidationError("", "invalid JSON body")
	}
	return NewValidationError("", err.Error())
}

// mergePatch applies a JSON merge patch: null removes, objects merge, anything else replaces.
func mergePatch(dst map[string]any, patch map[string]any) {
	for k, v := range patch {
		if v == nil {
			delete(dst, k)
			continue
		}
		if pm, ok := v.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				mergePatch(dm, pm)
				continue
			}
		}
		dst[k] = v
	}
}
