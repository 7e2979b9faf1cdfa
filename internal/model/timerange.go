package model

import (
	"fmt"
	"strings"
)

// TimeRange is the half-open interval [Start, End) within one day.
type TimeRange struct {
	Start Clock `json:"start" yaml:"start"`
	End   Clock `json:"end" yaml:"end"`
}

// Minutes returns the length of the range.
func (r TimeRange) Minutes() int { return int(r.End - r.Start) }

// Empty reports whether the range has no duration.
func (r TimeRange) Empty() bool { return r.End <= r.Start }

// Overlaps reports whether r and o share any instant. Empty ranges never overlap.
func (r TimeRange) Overlaps(o TimeRange) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return !(r.End <= o.Start || o.End <= r.Start)
}

// Contains reports whether o lies entirely inside r.
func (r TimeRange) Contains(o TimeRange) bool {
	return o.Start >= r.Start && o.End <= r.End
}

// Validate rejects ranges outside a day or with End not after Start.
func (r TimeRange) Validate() error {
	if !r.Start.Valid() || !r.End.Valid() {
		return &ValidationError{Field: "time", Reason: fmt.Sprintf("%s is outside a single day", r)}
	}
	if r.End <= r.Start {
		return &ValidationError{Field: "end_time", Reason: fmt.Sprintf("end %s must be after start %s", r.End, r.Start)}
	}
	return nil
}

func (r TimeRange) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// ParseTimeRange parses "14:00-15:00" or "2pm to 3pm". A start without am/pm
// takes the end's ("2-3pm" is 14:00-15:00) when that keeps it before the end.
func ParseTimeRange(s string) (TimeRange, error) {
	var parts []string
	for _, sep := range []string{" to ", "-", "–"} {
		if strings.Contains(s, sep) {
			parts = strings.SplitN(s, sep, 2)
			break
		}
	}
	if len(parts) != 2 {
		return TimeRange{}, &ValidationError{Field: "time", Reason: fmt.Sprintf("invalid range %q", s)}
	}
	start, err := ParseClock(parts[0])
	if err != nil {
		return TimeRange{}, err
	}
	end, err := ParseClock(parts[1])
	if err != nil {
		return TimeRange{}, err
	}
	if mer := meridiemOf(parts[1]); mer != "" && meridiemOf(parts[0]) == "" {
		if inferred, err := ParseClock(strings.TrimSpace(parts[0]) + mer); err == nil && inferred < end {
			start = inferred
		}
	}
	r := TimeRange{Start: start, End: end}
	return r, r.Validate()
}

func meridiemOf(s string) string {
	raw := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, ".", "")))
	for _, suffix := range []string{"am", "pm"} {
		if strings.HasSuffix(raw, suffix) {
			return suffix
		}
	}
	return ""
}
