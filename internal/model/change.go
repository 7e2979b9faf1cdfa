package model

// Change is one event touched by a mutation.
type Change struct {
	Day   Weekday `json:"day"`
	Event Event   `json:"event"`
	// Previous holds the event before a modification, PreviousDay its day.
	Previous    *Event  `json:"previous,omitempty"`
	PreviousDay Weekday `json:"previous_day,omitempty"`
}

// ChangeSet groups the effects of one committed mutation.
type ChangeSet struct {
	Added    []Change `json:"added"`
	Deleted  []Change `json:"deleted"`
	Modified []Change `json:"modified"`
}

func (c ChangeSet) Empty() bool {
	return len(c.Added) == 0 && len(c.Deleted) == 0 && len(c.Modified) == 0
}

// Days returns the distinct days touched, in week order.
func (c ChangeSet) Days() []Weekday {
	seen := map[Weekday]bool{}
	for _, group := range [][]Change{c.Added, c.Deleted, c.Modified} {
		for _, ch := range group {
			seen[ch.Day] = true
			if ch.PreviousDay != "" {
				seen[ch.PreviousDay] = true
			}
		}
	}
	out := []Weekday{}
	for _, d := range Weekdays {
		if seen[d] {
			out = append(out, d)
		}
	}
	return out
}

// Merge appends o to c.
func (c *ChangeSet) Merge(o ChangeSet) {
	c.Added = append(c.Added, o.Added...)
	c.Deleted = append(c.Deleted, o.Deleted...)
	c.Modified = append(c.Modified, o.Modified...)
}
