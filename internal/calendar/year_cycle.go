package calendar

import "time"

// LiturgicalYear returns the number the calendar API uses for the liturgical
// year containing date. Liturgical year N runs from the first Sunday of Advent
// of N-1 through the Saturday before Advent of N.
func LiturgicalYear(date time.Time) int {
	year := date.Year()
	if !date.Before(CalculateAdvent(year)) {
		return year + 1
	}
	return year
}

// SundayCycle returns the Sunday lectionary cycle ("A", "B" or "C") of the
// liturgical year containing date. Liturgical year 2023 was Year A.
func SundayCycle(date time.Time) string {
	return [...]string{"C", "A", "B"}[LiturgicalYear(date)%3]
}

// WeekdayCycle returns the weekday lectionary cycle ("I" or "II") of the
// liturgical year containing date: odd years are Year I.
func WeekdayCycle(date time.Time) string {
	if LiturgicalYear(date)%2 == 1 {
		return "I"
	}
	return "II"
}
