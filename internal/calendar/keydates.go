package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Epiphany settings as the calendar API names them.
const (
	EpiphanyJan6         = "JAN6"
	EpiphanySundayJan2_8 = "SUNDAY_JAN2_JAN8"
)

// Event keys of the reference dates, matching the calendar API.
const (
	KeyAshWednesday = "AshWednesday"
	KeyHolyThursday = "HolyThurs"
	KeyEaster       = "Easter"
	KeyPentecost    = "Pentecost"
	KeyAdvent1      = "Advent1"
	KeyAdvent1Vigil = "Advent1_vigil"
	KeyChristmas    = "Christmas"
	KeyBaptismLord  = "BaptismLord"
	KeyChristKing   = "ChristKing"
)

// KeyDates are the reference dates of one calendar year, keyed by event key.
type KeyDates map[string]time.Time

// ComputeKeyDates returns the reference dates for year. For a liturgical year
// the Advent and Christmas dates belong to the previous civil year, since
// liturgical year N opens on the first Sunday of Advent of N-1.
func ComputeKeyDates(year int, liturgical bool, epiphany string) KeyDates {
	adventYear := year
	if liturgical {
		adventYear = year - 1
	}
	advent := CalculateAdvent(adventYear)

	return KeyDates{
		KeyBaptismLord:  CalculateBaptismOfTheLord(year, epiphany),
		KeyAshWednesday: CalculateAshWednesday(year),
		KeyHolyThursday: CalculateHolyThursday(year),
		KeyEaster:       CalculateEaster(year),
		KeyPentecost:    CalculatePentecost(year),
		KeyChristKing:   CalculateChristKing(year),
		KeyAdvent1Vigil: advent.AddDate(0, 0, -1),
		KeyAdvent1:      advent,
		KeyChristmas:    date(adventYear, time.December, 25),
	}
}

// CalculateEpiphany returns January 6, or with Sunday observance the Sunday
// between January 2 and 8.
func CalculateEpiphany(year int, epiphany string) time.Time {
	if !strings.EqualFold(epiphany, EpiphanySundayJan2_8) {
		return date(year, time.January, 6)
	}
	jan2 := date(year, time.January, 2)
	return jan2.AddDate(0, 0, (7-int(jan2.Weekday()))%7)
}

// CalculateBaptismOfTheLord returns the Sunday after Epiphany. When a Sunday
// Epiphany falls on January 7 or 8 the feast moves to the following Monday.
func CalculateBaptismOfTheLord(year int, epiphany string) time.Time {
	ep := CalculateEpiphany(year, epiphany)
	if ep.Weekday() == time.Sunday && ep.Day() >= 7 {
		return ep.AddDate(0, 0, 1)
	}
	return ep.AddDate(0, 0, 7-int(ep.Weekday()))
}

// Keys returns the keys ordered by date.
func (k KeyDates) Keys() []string {
	keys := make([]string, 0, len(k))
	for key := range k {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return k[keys[i]].Before(k[keys[j]])
	})
	return keys
}

// Mismatch is a reference date that differs between two sources.
type Mismatch struct {
	Key      string
	Expected time.Time
	Actual   time.Time
	Missing  bool
}

func (m Mismatch) String() string {
	if m.Missing {
		return fmt.Sprintf("%s: missing (expected %s)", m.Key, m.Expected.Format(time.DateOnly))
	}
	return fmt.Sprintf("%s: got %s, expected %s", m.Key,
		m.Actual.Format(time.DateOnly), m.Expected.Format(time.DateOnly))
}

// Compare reports every key of k whose date in actual is missing or differs.
func (k KeyDates) Compare(actual map[string]time.Time) []Mismatch {
	var out []Mismatch
	for _, key := range k.Keys() {
		want := k[key]
		got, ok := actual[key]
		switch {
		case !ok:
			out = append(out, Mismatch{Key: key, Expected: want, Missing: true})
		case !sameDay(got, want):
			out = append(out, Mismatch{Key: key, Expected: want, Actual: got})
		}
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
