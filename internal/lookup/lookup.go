// Package lookup implements the property-name-driven filter, page and
// exists queries shared by the admin listing endpoints. Property names are
// resolved through a static accessor registry; unknown names are rejected
// instead of being interpreted at runtime.
package lookup

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lazypos/admin-api/internal"
)

const DefaultPageSize = 20

// FieldSet maps permitted property names onto typed accessors for one
// entity. The id accessor is kept separate so Exists can exclude the row
// being edited.
type FieldSet[T any] struct {
	id     func(T) int64
	fields map[string]func(T) any
}

func NewFieldSet[T any](id func(T) int64) *FieldSet[T] {
	return &FieldSet[T]{
		id:     id,
		fields: make(map[string]func(T) any),
	}
}

func (s *FieldSet[T]) Register(name string, accessor func(T) any) *FieldSet[T] {
	s.fields[strings.ToLower(name)] = accessor
	return s
}

func (s *FieldSet[T]) accessor(name string) (func(T) any, error) {
	accessor, ok := s.fields[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, internal.NewUnknownPropertyError(name)
	}
	return accessor, nil
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// asInt unwraps the integer kinds accessors are expected to return. The
// bool result is false for anything non-numeric.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case *int64:
		if n == nil {
			return 0, false
		}
		return *n, true
	default:
		return 0, false
	}
}

// matches applies the string-equality filter with the numeric fallback: when
// the textual compare misses and the filter value parses as a 32-bit int,
// the row matches if the property holds that number.
func matches(got any, value string) bool {
	if strings.EqualFold(stringify(got), value) {
		return true
	}
	if parsed, err := strconv.ParseInt(value, 10, 32); err == nil {
		if n, ok := asInt(got); ok && n == parsed {
			return true
		}
	}
	return false
}

// Lookup projects rows onto the named property (a ";"-delimited list joins
// the parts with a space), filters by exact value and/or search prefix, and
// returns one deduplicated, sorted page.
func (s *FieldSet[T]) Lookup(rows []T, property, value, search string, page, pageSize int) ([]string, error) {
	names := strings.Split(property, ";")
	accessors := make([]func(T) any, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		accessor, err := s.accessor(name)
		if err != nil {
			return nil, err
		}
		accessors = append(accessors, accessor)
	}
	if len(accessors) == 0 {
		return nil, internal.NewUnknownPropertyError(property)
	}

	seen := make(map[string]struct{})
	var projected []string
	for _, row := range rows {
		if value != "" && !matches(accessors[0](row), value) {
			continue
		}

		parts := make([]string, 0, len(accessors))
		for _, accessor := range accessors {
			if part := stringify(accessor(row)); part != "" {
				parts = append(parts, part)
			}
		}
		joined := strings.Join(parts, " ")
		if joined == "" {
			continue
		}
		if search != "" && !strings.HasPrefix(strings.ToLower(joined), strings.ToLower(search)) {
			continue
		}
		if _, dup := seen[joined]; dup {
			continue
		}
		seen[joined] = struct{}{}
		projected = append(projected, joined)
	}

	sort.Strings(projected)

	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(projected) {
		return []string{}, nil
	}
	end := start + pageSize
	if end > len(projected) {
		end = len(projected)
	}
	return projected[start:end], nil
}

// Exists reports whether any row other than excludeID has the property
// equal to value, with the same numeric fallback as Lookup.
func (s *FieldSet[T]) Exists(rows []T, property, value string, excludeID int64) (bool, error) {
	accessor, err := s.accessor(property)
	if err != nil {
		return false, err
	}
	for _, row := range rows {
		if s.id(row) == excludeID {
			continue
		}
		if matches(accessor(row), value) {
			return true, nil
		}
	}
	return false, nil
}
