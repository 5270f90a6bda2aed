package calendar

import (
	"errors"
	"fmt"
	"strings"

	"github.com/teambition/rrule-go"

	"ministry/internal/model"
)

var ErrInvalidRecurrence = errors.New("invalid recurrence rule")

const (
	// maxOccurrences bounds the distinct dates returned for one query window.
	maxOccurrences = 366
	// maxSteps bounds the iterator walk from DTSTART, however old the event is.
	maxSteps = 100_000
)

func parseRule(rule string) (*rrule.RRule, error) {
	r, err := rrule.StrToRRule(strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecurrence, err)
	}
	// Ministry events happen at most once a day.
	if r.OrigOptions.Freq > rrule.DAILY {
		return nil, fmt.Errorf("%w: frequency %s is finer than daily", ErrInvalidRecurrence, r.OrigOptions.Freq)
	}
	return r, nil
}

// ValidateRecurrence accepts an empty rule or an RFC 5545 RRULE without DTSTART
// repeating daily or less often.
func ValidateRecurrence(rule string) error {
	if strings.TrimSpace(rule) == "" {
		return nil
	}
	_, err := parseRule(rule)
	return err
}

// Occurrences lists the distinct dates within [from, to] on which the event happens.
// A non-recurring event yields its own date when it falls inside the window.
func Occurrences(event model.MinistryEvent, from, to model.Date) ([]model.Date, error) {
	if strings.TrimSpace(event.Recurrence) == "" {
		if event.Date.Before(from) || event.Date.After(to) {
			return nil, nil
		}
		return []model.Date{event.Date}, nil
	}

	r, err := parseRule(event.Recurrence)
	if err != nil {
		return nil, err
	}
	r.DTStart(event.Date.Time)

	windowEnd := to.AddDays(1).Time
	next := r.Iterator()
	var dates []model.Date
	for step := 0; step < maxSteps && len(dates) < maxOccurrences; step++ {
		t, ok := next()
		if !ok || !t.Before(windowEnd) {
			break
		}
		if t.Before(from.Time) {
			continue
		}
		day := model.DateOf(t)
		if n := len(dates); n > 0 && dates[n-1].Equal(day) {
			continue
		}
		dates = append(dates, day)
	}
	return dates, nil
}
