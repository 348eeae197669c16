package webcalendar

// Run-length counters over a date-sorted event slice. Each returns how many
// of the events immediately following events[i] share its grouping key; a
// merged cell starting at i therefore spans count+1 rows.

// CountSameDay counts the following events on exactly the same instant.
func CountSameDay(events []Event, i int) int {
	count := 0
	for j := i + 1; j < len(events); j++ {
		if !events[j].Date.Equal(events[j-1].Date) {
			break
		}
		count++
	}
	return count
}

// CountSameMonth counts the following events in the same calendar month.
// Only the month component is compared, not the year.
func CountSameMonth(events []Event, i int) int {
	count := 0
	for j := i + 1; j < len(events); j++ {
		if events[j].Date.Month() != events[j-1].Date.Month() {
			break
		}
		count++
	}
	return count
}

// CountSameSeason counts the following events whose resolved season matches.
func CountSameSeason(events []Event, i int, r *SeasonResolver) (int, error) {
	if i >= len(events) {
		return 0, nil
	}
	prev, err := r.Resolve(&events[i])
	if err != nil {
		return 0, err
	}

	count := 0
	for j := i + 1; j < len(events); j++ {
		next, err := r.Resolve(&events[j])
		if err != nil {
			return 0, err
		}
		if next != prev {
			break
		}
		count++
	}
	return count, nil
}

// CountSamePsalterWeek counts the following events that continue the psalter
// week run of events[i]. See continuesPsalterWeek.
func CountSamePsalterWeek(events []Event, i int) int {
	count := 0
	for j := i + 1; j < len(events); j++ {
		if !continuesPsalterWeek(&events[j-1], &events[j]) {
			break
		}
		count++
	}
	return count
}

// continuesPsalterWeek reports whether next belongs to the same psalter week
// cell as cur. Weeks without a valid number (0) only merge with events on the
// same date, so a long stretch of unnumbered days never becomes one cell.
func continuesPsalterWeek(cur, next *Event) bool {
	if next.PsalterWeek != cur.PsalterWeek {
		return false
	}
	return validPsalterWeek(next.PsalterWeek) || next.Date.Equal(cur.Date)
}

func validPsalterWeek(week int) bool {
	return week >= 1 && week <= 4
}
