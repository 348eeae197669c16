package calendar

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func TestCalculateEaster(t *testing.T) {
	tests := map[int]string{
		2019: "2019-04-21",
		2024: "2024-03-31",
		2025: "2025-04-20",
		2026: "2026-04-05",
		2038: "2038-04-25",
	}
	for year, want := range tests {
		if got := CalculateEaster(year); !got.Equal(mustDate(t, want)) {
			t.Errorf("CalculateEaster(%d) = %s, want %s", year, got.Format(time.DateOnly), want)
		}
	}
}

func TestCalculateAdvent(t *testing.T) {
	tests := map[int]string{
		2022: "2022-11-27",
		2023: "2023-12-03",
		2024: "2024-12-01",
		2025: "2025-11-30",
		2026: "2026-11-29",
	}
	for year, want := range tests {
		got := CalculateAdvent(year)
		if !got.Equal(mustDate(t, want)) {
			t.Errorf("CalculateAdvent(%d) = %s, want %s", year, got.Format(time.DateOnly), want)
		}
		if got.Weekday() != time.Sunday {
			t.Errorf("CalculateAdvent(%d) is a %s", year, got.Weekday())
		}
	}
}

func TestComputeKeyDatesCivil(t *testing.T) {
	kd := ComputeKeyDates(2025, false, EpiphanyJan6)

	want := map[string]string{
		KeyBaptismLord:  "2025-01-12",
		KeyAshWednesday: "2025-03-05",
		KeyHolyThursday: "2025-04-17",
		KeyEaster:       "2025-04-20",
		KeyPentecost:    "2025-06-08",
		KeyChristKing:   "2025-11-23",
		KeyAdvent1Vigil: "2025-11-29",
		KeyAdvent1:      "2025-11-30",
		KeyChristmas:    "2025-12-25",
	}
	for key, date := range want {
		if got := kd[key]; !got.Equal(mustDate(t, date)) {
			t.Errorf("%s = %s, want %s", key, got.Format(time.DateOnly), date)
		}
	}

	keys := kd.Keys()
	if keys[0] != KeyBaptismLord || keys[len(keys)-1] != KeyChristmas {
		t.Errorf("Keys() order = %v", keys)
	}
}

func TestComputeKeyDatesLiturgical(t *testing.T) {
	kd := ComputeKeyDates(2025, true, EpiphanyJan6)

	if got := kd[KeyAdvent1]; !got.Equal(mustDate(t, "2024-12-01")) {
		t.Errorf("Advent1 = %s", got.Format(time.DateOnly))
	}
	if got := kd[KeyChristmas]; !got.Equal(mustDate(t, "2024-12-25")) {
		t.Errorf("Christmas = %s", got.Format(time.DateOnly))
	}
	if got := kd[KeyChristKing]; !got.Equal(mustDate(t, "2025-11-23")) {
		t.Errorf("ChristKing = %s", got.Format(time.DateOnly))
	}
}

func TestCalculateBaptismOfTheLord(t *testing.T) {
	tests := []struct {
		year     int
		epiphany string
		want     string
	}{
		{2025, EpiphanyJan6, "2025-01-12"},
		{2019, EpiphanyJan6, "2019-01-13"}, // Epiphany on a Sunday
		{2025, EpiphanySundayJan2_8, "2025-01-12"},
		{2023, EpiphanySundayJan2_8, "2023-01-09"}, // Epiphany Jan 8, feast moves to Monday
		{2024, EpiphanySundayJan2_8, "2024-01-08"}, // Epiphany Jan 7
	}
	for _, tt := range tests {
		got := CalculateBaptismOfTheLord(tt.year, tt.epiphany)
		if !got.Equal(mustDate(t, tt.want)) {
			t.Errorf("%d %s: got %s, want %s", tt.year, tt.epiphany, got.Format(time.DateOnly), tt.want)
		}
	}
}

func TestCompare(t *testing.T) {
	kd := ComputeKeyDates(2025, false, EpiphanyJan6)
	actual := map[string]time.Time{}
	for k, v := range kd {
		actual[k] = v.Add(5 * time.Hour)
	}
	if m := kd.Compare(actual); len(m) != 0 {
		t.Fatalf("unexpected mismatches: %v", m)
	}

	delete(actual, KeyEaster)
	actual[KeyPentecost] = mustDate(t, "2025-06-01")

	m := kd.Compare(actual)
	if len(m) != 2 {
		t.Fatalf("mismatches = %v, want 2", m)
	}
	if m[0].Key != KeyEaster || !m[0].Missing {
		t.Errorf("first mismatch = %v", m[0])
	}
	if m[1].String() != "Pentecost: got 2025-06-01, expected 2025-06-08" {
		t.Errorf("second mismatch = %q", m[1].String())
	}
}

func TestLiturgicalYear(t *testing.T) {
	tests := []struct {
		date    string
		year    int
		sunday  string
		weekday string
	}{
		{"2024-11-30", 2024, "B", "II"},
		{"2024-12-01", 2025, "C", "I"},
		{"2025-07-04", 2025, "C", "I"},
		{"2025-11-30", 2026, "A", "II"},
	}
	for _, tt := range tests {
		d := mustDate(t, tt.date)
		if got := LiturgicalYear(d); got != tt.year {
			t.Errorf("LiturgicalYear(%s) = %d, want %d", tt.date, got, tt.year)
		}
		if got := SundayCycle(d); got != tt.sunday {
			t.Errorf("SundayCycle(%s) = %s, want %s", tt.date, got, tt.sunday)
		}
		if got := WeekdayCycle(d); got != tt.weekday {
			t.Errorf("WeekdayCycle(%s) = %s, want %s", tt.date, got, tt.weekday)
		}
	}
}
