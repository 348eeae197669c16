package webcalendar

import (
	"errors"
	"testing"
)

func TestSeasonResolverInfer(t *testing.T) {
	ds := dataset(sentinels2025(t)...)
	r := NewSeasonResolver(ds)

	tests := []struct {
		date string
		want Season
	}{
		{"2025-01-05", SeasonChristmas},
		{"2025-01-12", SeasonChristmas}, // Baptism of the Lord closes Christmas
		{"2025-01-13", SeasonOrdinaryTime},
		{"2025-03-04", SeasonOrdinaryTime},
		{"2025-03-05", SeasonLent},
		{"2025-04-16", SeasonLent},
		{"2025-04-17", SeasonEasterTriduum},
		{"2025-04-19", SeasonEasterTriduum},
		{"2025-04-20", SeasonEaster},
		{"2025-06-07", SeasonEaster},
		{"2025-06-08", SeasonChristmas}, // no rule covers Pentecost itself
		{"2025-06-09", SeasonOrdinaryTime},
		{"2025-11-29", SeasonOrdinaryTime},
		{"2025-11-30", SeasonAdvent},
		{"2025-12-24", SeasonAdvent},
		{"2025-12-25", SeasonChristmas},
		{"2025-12-31", SeasonChristmas},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			ev := Event{EventKey: "x", Date: day(t, tt.date)}
			got, err := r.Resolve(&ev)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%s) = %s, want %s", tt.date, got, tt.want)
			}
		})
	}
}

func TestSeasonResolverAdventVigil(t *testing.T) {
	// A liturgical year 2025 opens with the vigil of Advent 2024.
	events := []Event{
		{EventKey: KeyAdvent1Vigil, Date: day(t, "2024-11-30")},
		{EventKey: KeyAdvent1, Date: day(t, "2024-12-01")},
		{EventKey: KeyChristmas, Date: day(t, "2024-12-25")},
		{EventKey: KeyBaptismLord, Date: day(t, "2025-01-12")},
		{EventKey: KeyAshWednesday, Date: day(t, "2025-03-05")},
		{EventKey: KeyHolyThursday, Date: day(t, "2025-04-17")},
		{EventKey: KeyEaster, Date: day(t, "2025-04-20")},
		{EventKey: KeyPentecost, Date: day(t, "2025-06-08")},
		{EventKey: KeyChristKing, Date: day(t, "2025-11-23")},
	}
	vigil := Event{EventKey: "x", Date: day(t, "2024-11-30")}

	ds := dataset(events...)
	ds.Settings.YearType = YearTypeLiturgical
	got, err := NewSeasonResolver(ds).Resolve(&vigil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != SeasonAdvent {
		t.Errorf("liturgical year vigil = %s, want ADVENT", got)
	}

	ds.Settings.YearType = YearTypeCivil
	got, err = NewSeasonResolver(ds).Resolve(&vigil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != SeasonChristmas {
		t.Errorf("civil year vigil = %s, want CHRISTMAS", got)
	}
}

func TestSeasonResolverExplicitSeason(t *testing.T) {
	r := NewSeasonResolver(&Dataset{})
	ev := Event{Date: day(t, "2025-03-10"), LiturgicalSeason: SeasonLent}

	got, err := r.Resolve(&ev)
	if err != nil {
		t.Fatalf("explicit season needs no references: %v", err)
	}
	if got != SeasonLent {
		t.Errorf("Resolve = %s", got)
	}
}

func TestSeasonResolverMissingReference(t *testing.T) {
	events := sentinels2025(t)
	var kept []Event
	for _, ev := range events {
		if ev.EventKey != KeyEaster {
			kept = append(kept, ev)
		}
	}
	r := NewSeasonResolver(dataset(kept...))

	ev := Event{EventKey: "x", Date: day(t, "2025-05-01")}
	_, err := r.Resolve(&ev)
	if !errors.Is(err, ErrLayoutInvariant) {
		t.Fatalf("error = %v, want layout invariant error", err)
	}
	var lie *LayoutInvariantError
	if !errors.As(err, &lie) || lie.EventKey != "x" {
		t.Errorf("error = %#v", err)
	}
}

func TestSeasonResolverDeterministic(t *testing.T) {
	r := NewSeasonResolver(dataset(sentinels2025(t)...))
	ev := Event{Date: day(t, "2025-08-15")}

	first, err1 := r.Resolve(&ev)
	second, err2 := r.Resolve(&ev)
	if err1 != nil || err2 != nil {
		t.Fatalf("Resolve errors: %v, %v", err1, err2)
	}
	if first != second {
		t.Errorf("Resolve not deterministic: %s then %s", first, second)
	}
}

func TestSeasonColor(t *testing.T) {
	tests := map[Season]string{
		SeasonAdvent:        "purple",
		SeasonLent:          "purple",
		SeasonEasterTriduum: "purple",
		SeasonEaster:        "white",
		SeasonChristmas:     "white",
		SeasonOrdinaryTime:  "green",
	}
	for season, want := range tests {
		if got := season.Color(); got != want {
			t.Errorf("%s.Color() = %s, want %s", season, got, want)
		}
	}
}
