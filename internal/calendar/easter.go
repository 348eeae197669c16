// Package calendar computes the movable dates that anchor the liturgical
// seasons. The calendar API does the real rule work; these dates pick a
// default year and cross-check what the API returns.
package calendar

import (
	"time"
)

// CalculateEaster calculates the date of Easter Sunday for a given year
// using the computus algorithm for the Gregorian calendar.
//
// The algorithm is the anonymous Gregorian algorithm (Meeus/Jones/Butcher)
// and is valid for all years in the Gregorian calendar.
func CalculateEaster(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// CalculateAdvent calculates the first Sunday of Advent, the fourth Sunday
// before Christmas. It falls between November 27 and December 3.
func CalculateAdvent(year int) time.Time {
	christmas := date(year, time.December, 25)

	// Last Sunday strictly before Christmas is the fourth Sunday of Advent.
	back := int(christmas.Weekday())
	if back == 0 {
		back = 7
	}
	return christmas.AddDate(0, 0, -back-21)
}

// CalculateAshWednesday calculates Ash Wednesday for a given year.
// Ash Wednesday is 46 days before Easter (40 days of Lent + 6 Sundays).
func CalculateAshWednesday(year int) time.Time {
	return CalculateEaster(year).AddDate(0, 0, -46)
}

// CalculateHolyThursday returns the Thursday before Easter, which opens the
// Easter Triduum.
func CalculateHolyThursday(year int) time.Time {
	return CalculateEaster(year).AddDate(0, 0, -3)
}

// CalculateAscension calculates Ascension Thursday, 39 days after Easter.
func CalculateAscension(year int) time.Time {
	return CalculateEaster(year).AddDate(0, 0, 39)
}

// CalculatePentecost calculates Pentecost Sunday for a given year.
// Pentecost is 49 days after Easter (7 weeks).
func CalculatePentecost(year int) time.Time {
	return CalculateEaster(year).AddDate(0, 0, 49)
}

// CalculateChristKing returns the last Sunday of Ordinary Time, the Sunday
// before Advent.
func CalculateChristKing(year int) time.Time {
	return CalculateAdvent(year).AddDate(0, 0, -7)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
