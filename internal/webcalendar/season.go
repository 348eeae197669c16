package webcalendar

import (
	"fmt"
	"time"
)

// Season is a liturgical season token as used by the calendar API.
type Season string

const (
	SeasonAdvent        Season = "ADVENT"
	SeasonChristmas     Season = "CHRISTMAS"
	SeasonOrdinaryTime  Season = "ORDINARY_TIME"
	SeasonLent          Season = "LENT"
	SeasonEasterTriduum Season = "EASTER_TRIDUUM"
	SeasonEaster        Season = "EASTER"
)

// Color returns the liturgical color associated with the season.
func (s Season) Color() string {
	switch s {
	case SeasonAdvent, SeasonLent, SeasonEasterTriduum:
		return "purple"
	case SeasonEaster, SeasonChristmas:
		return "white"
	default:
		return "green"
	}
}

// Keys of the sentinel events that anchor season resolution.
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

// SeasonResolver infers the season of events that arrive without one, using
// the reference dates carried by the dataset's sentinel events.
type SeasonResolver struct {
	refs       map[string]time.Time
	liturgical bool
}

// NewSeasonResolver indexes the dataset's events by key. The first event with
// a given key wins.
func NewSeasonResolver(ds *Dataset) *SeasonResolver {
	r := &SeasonResolver{
		refs:       make(map[string]time.Time),
		liturgical: ds.IsLiturgicalYear(),
	}
	for i := range ds.Events {
		ev := &ds.Events[i]
		if ev.EventKey == "" {
			continue
		}
		if _, ok := r.refs[ev.EventKey]; !ok {
			r.refs[ev.EventKey] = DayOf(ev.Date)
		}
	}
	return r
}

// Resolve returns the event's explicit season, or infers one from its date.
func (r *SeasonResolver) Resolve(ev *Event) (Season, error) {
	if ev.LiturgicalSeason != "" {
		return ev.LiturgicalSeason, nil
	}
	return r.Infer(ev)
}

// Infer classifies the event's date into a season. Rules are checked in
// order and the first match wins. A missing reference date is an error.
func (r *SeasonResolver) Infer(ev *Event) (Season, error) {
	d := DayOf(ev.Date)

	ref := func(key string) (time.Time, error) {
		t, ok := r.refs[key]
		if !ok {
			return time.Time{}, &LayoutInvariantError{
				EventKey: ev.EventKey,
				Reason:   fmt.Sprintf("season inference needs reference event %s, which the dataset lacks", key),
			}
		}
		return t, nil
	}

	ashWednesday, err := ref(KeyAshWednesday)
	if err != nil {
		return "", err
	}
	holyThursday, err := ref(KeyHolyThursday)
	if err != nil {
		return "", err
	}
	if inHalfOpen(d, ashWednesday, holyThursday) {
		return SeasonLent, nil
	}

	easter, err := ref(KeyEaster)
	if err != nil {
		return "", err
	}
	if inHalfOpen(d, holyThursday, easter) {
		return SeasonEasterTriduum, nil
	}

	pentecost, err := ref(KeyPentecost)
	if err != nil {
		return "", err
	}
	if inHalfOpen(d, easter, pentecost) {
		return SeasonEaster, nil
	}

	advent1, err := ref(KeyAdvent1)
	if err != nil {
		return "", err
	}
	christmas, err := ref(KeyChristmas)
	if err != nil {
		return "", err
	}
	if inHalfOpen(d, advent1, christmas) {
		return SeasonAdvent, nil
	}

	baptism, err := ref(KeyBaptismLord)
	if err != nil {
		return "", err
	}
	if d.After(baptism) && d.Before(ashWednesday) {
		return SeasonOrdinaryTime, nil
	}

	christKing, err := ref(KeyChristKing)
	if err != nil {
		return "", err
	}
	if d.After(pentecost) && !d.After(lastSaturdayOfOrdinaryTime(christKing)) {
		return SeasonOrdinaryTime, nil
	}

	if r.liturgical {
		vigil, err := ref(KeyAdvent1Vigil)
		if err != nil {
			return "", err
		}
		if d.Equal(vigil) {
			return SeasonAdvent, nil
		}
	}

	return SeasonChristmas, nil
}

// lastSaturdayOfOrdinaryTime is the Saturday of the 34th week, the first
// Saturday on or after Christ the King.
func lastSaturdayOfOrdinaryTime(christKing time.Time) time.Time {
	return christKing.AddDate(0, 0, int(time.Saturday-christKing.Weekday()))
}

// inHalfOpen reports whether start <= d < end.
func inHalfOpen(d, start, end time.Time) bool {
	return !d.Before(start) && d.Before(end)
}
