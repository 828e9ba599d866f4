package model

import "time"

// DueSoonDays is the width of the reminder window after today.
const DueSoonDays = 3

// DueSoon reports whether t is open and due between today and
// today+DueSoonDays, both ends included.
func (t Todo) DueSoon(today Date) bool {
	if t.Completed() || t.DueDate.IsZero() {
		return false
	}
	n := t.DueDate.DaysUntil(today)
	return n >= 0 && n <= DueSoonDays
}

// Overdue reports whether t is open and its due date has passed.
func (t Todo) Overdue(today Date) bool {
	return !t.Completed() && !t.DueDate.IsZero() && t.DueDate.Before(today)
}

// AnyDueSoon is the reminder banner predicate. It is evaluated against the
// collection as given and keeps no state.
func AnyDueSoon(todos []Todo, now time.Time) bool {
	today := DateOf(now)
	for _, t := range todos {
		if t.DueSoon(today) {
			return true
		}
	}
	return false
}
