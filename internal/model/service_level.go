package model

import "time"

type ServiceLevel string

const (
	ServiceLevelAspirant ServiceLevel = "ASPIRANT"
	ServiceLevelNeophyte ServiceLevel = "NEOPHYTE"
	ServiceLevelJunior   ServiceLevel = "JUNIOR"
	ServiceLevelSenior   ServiceLevel = "SENIOR"
)

var ServiceLevels = []ServiceLevel{
	ServiceLevelAspirant,
	ServiceLevelNeophyte,
	ServiceLevelJunior,
	ServiceLevelSenior,
}

// CompletedYears counts whole years between from and now, comparing calendar
// month and day for the anniversary. It never returns a negative count.
func CompletedYears(from, now time.Time) int {
	years := now.Year() - from.Year()
	if now.Month() < from.Month() || (now.Month() == from.Month() && now.Day() < from.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// ServiceLevelFor buckets years of service. A missing join date is the lowest tier.
func ServiceLevelFor(joined *Date, now time.Time) ServiceLevel {
	if joined == nil || joined.IsZero() {
		return ServiceLevelAspirant
	}
	return ServiceLevelForYears(CompletedYears(joined.Time, now))
}

func ServiceLevelForYears(years int) ServiceLevel {
	switch {
	case years >= 5:
		return ServiceLevelSenior
	case years >= 3:
		return ServiceLevelJunior
	case years >= 1:
		return ServiceLevelNeophyte
	default:
		return ServiceLevelAspirant
	}
}
