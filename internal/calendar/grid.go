package calendar

import (
	"fmt"
	"sort"
	"time"
)

// GridCells is the fixed size of a month view: six weeks of seven days.
const GridCells = 42

type Cell struct {
	Day            int        `json:"day"`
	Month          time.Month `json:"month"`
	Year           int        `json:"year"`
	IsCurrentMonth bool       `json:"is_current_month"`
	HasDuty        bool       `json:"has_duty"`
	Duties         []string   `json:"duties,omitempty"`
}

// Duties maps a day of the month to the duty descriptions on that day.
type Duties map[int][]string

// Add appends duty to day unless the day already lists it.
func (d Duties) Add(day int, duty string) {
	for _, existing := range d[day] {
		if existing == duty {
			return
		}
	}
	d[day] = append(d[day], duty)
}

// Days returns the days that carry duties in ascending order.
func (d Duties) Days() []int {
	days := make([]int, 0, len(d))
	for day, list := range d {
		if len(list) > 0 {
			days = append(days, day)
		}
	}
	sort.Ints(days)
	return days
}

func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthGrid lays out a Sunday-first month view. Cells before the 1st come from
// the previous month and cells after the last day from the next; only
// current-month cells can carry duties.
func MonthGrid(year int, month time.Month, duties Duties) ([]Cell, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid month %d", month)
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	leading := int(first.Weekday())
	days := DaysIn(year, month)

	cells := make([]Cell, 0, GridCells)

	prev := first.AddDate(0, 0, -leading)
	for i := 0; i < leading; i++ {
		d := prev.AddDate(0, 0, i)
		cells = append(cells, Cell{Day: d.Day(), Month: d.Month(), Year: d.Year()})
	}

	for day := 1; day <= days; day++ {
		list := duties[day]
		cells = append(cells, Cell{
			Day:            day,
			Month:          month,
			Year:           year,
			IsCurrentMonth: true,
			HasDuty:        len(list) > 0,
			Duties:         list,
		})
	}

	next := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; len(cells) < GridCells; i++ {
		d := next.AddDate(0, 0, i)
		cells = append(cells, Cell{Day: d.Day(), Month: d.Month(), Year: d.Year()})
	}

	return cells, nil
}
