package model

import "fmt"

// StatusFilter is the list selector. FilterAll sends no status parameter.
type StatusFilter string

const (
	FilterAll          StatusFilter = "all"
	FilterPending      StatusFilter = "pending"
	FilterCompleted    StatusFilter = "completed"
	FilterHighPriority StatusFilter = "highPriority"
)

var statusFilters = []StatusFilter{FilterAll, FilterPending, FilterCompleted, FilterHighPriority}

// ParseStatusFilter validates a filter name. An empty string means all.
func ParseStatusFilter(s string) (StatusFilter, error) {
	if s == "" {
		return FilterAll, nil
	}
	for _, f := range statusFilters {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown filter %q (want all, pending, completed or highPriority)", s)
}

// Next cycles through the filters in display order.
func (f StatusFilter) Next() StatusFilter {
	return cycle(statusFilters, f)
}

// Label is the human-readable name.
func (f StatusFilter) Label() string {
	switch f {
	case FilterPending:
		return "Pending"
	case FilterCompleted:
		return "Completed"
	case FilterHighPriority:
		return "High Priority"
	default:
		return "All Tasks"
	}
}

// SortKey selects the backend ordering.
type SortKey string

const (
	SortDateCreated SortKey = "dateCreated"
	SortDueDate     SortKey = "dueDate"
	SortPriority    SortKey = "priority"
	SortTitle       SortKey = "title"
)

var sortKeys = []SortKey{SortDateCreated, SortDueDate, SortPriority, SortTitle}

// ParseSortKey validates a sort key. An empty string means dateCreated.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortDateCreated, nil
	}
	for _, k := range sortKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sort key %q (want dateCreated, dueDate, priority or title)", s)
}

func (k SortKey) Next() SortKey {
	return cycle(sortKeys, k)
}

func (k SortKey) Label() string {
	switch k {
	case SortDueDate:
		return "Due Date"
	case SortPriority:
		return "Priority"
	case SortTitle:
		return "Title"
	default:
		return "Date Created"
	}
}

// ListFilters are the optional list query parameters. A zero field is
// absent and is not sent.
type ListFilters struct {
	Status   StatusFilter
	Priority Priority
	Search   string
	SortBy   SortKey
}

func cycle[T comparable](all []T, cur T) T {
	for i, v := range all {
		if v == cur {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}
