package memory

import (
	"fmt"
	"sort"

	"edushelf-be/internal/repository/specification"

	"github.com/google/uuid"
)

// fields exposes the columns the specification package filters and sorts on.
type fields[T any] struct {
	id       func(T) uuid.UUID
	owner    func(T) (uuid.UUID, bool)
	session  func(T) (uuid.UUID, bool)
	document func(T) (uuid.UUID, bool)
	// orderKey maps a column name to a sortable value.
	orderKey func(T, string) (int64, bool)
}

// selectItems filters, orders and pages items the way the gorm repositories do in SQL.
func selectItems[T any](items []T, f fields[T], specs ...specification.Specification) ([]T, error) {
	var (
		orders []specification.OrderBy
		page   *specification.Pagination
		out    = make([]T, 0, len(items))
	)

	filters := make([]func(T) bool, 0, len(specs))
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			filters = append(filters, func(item T) bool { return f.id(item) == s.ID })
		case specification.ByIDs:
			set := make(map[uuid.UUID]bool, len(s.IDs))
			for _, id := range s.IDs {
				set[id] = true
			}
			filters = append(filters, func(item T) bool { return set[f.id(item)] })
		case specification.OwnedBy:
			if f.owner == nil {
				return nil, fmt.Errorf("memory store: %T not supported here", spec)
			}
			filters = append(filters, func(item T) bool {
				v, ok := f.owner(item)
				return ok && v == s.OwnerID
			})
		case specification.ByChatSessionID:
			if f.session == nil {
				return nil, fmt.Errorf("memory store: %T not supported here", spec)
			}
			filters = append(filters, func(item T) bool {
				v, ok := f.session(item)
				return ok && v == s.ChatSessionID
			})
		case specification.ByDocumentID:
			if f.document == nil {
				return nil, fmt.Errorf("memory store: %T not supported here", spec)
			}
			filters = append(filters, func(item T) bool {
				v, ok := f.document(item)
				return ok && v == s.DocumentID
			})
		case specification.OrderBy:
			orders = append(orders, s)
		case specification.Pagination:
			p := s
			page = &p
		default:
			return nil, fmt.Errorf("memory store: unsupported specification %T", spec)
		}
	}

next:
	for _, item := range items {
		for _, keep := range filters {
			if !keep(item) {
				continue next
			}
		}
		out = append(out, item)
	}

	// Stable sorts applied last-to-first leave the first OrderBy as the primary key.
	for i := len(orders) - 1; i >= 0; i-- {
		o := orders[i]
		if f.orderKey == nil {
			return nil, fmt.Errorf("memory store: cannot order by %s", o.Field)
		}
		if len(out) > 0 {
			if _, ok := f.orderKey(out[0], o.Field); !ok {
				return nil, fmt.Errorf("memory store: cannot order by %s", o.Field)
			}
		}
		sort.SliceStable(out, func(a, b int) bool {
			ka, _ := f.orderKey(out[a], o.Field)
			kb, _ := f.orderKey(out[b], o.Field)
			if o.Desc {
				return ka > kb
			}
			return ka < kb
		})
	}

	if page != nil {
		start := page.Offset
		if start > len(out) {
			start = len(out)
		}
		end := len(out)
		if page.Limit > 0 && start+page.Limit < end {
			end = start + page.Limit
		}
		out = out[start:end]
	}

	return out, nil
}
