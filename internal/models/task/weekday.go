package task

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

type Weekday string

const (
	Mon Weekday = "Mon"
	Tue Weekday = "Tue"
	Wed Weekday = "Wed"
	Thu Weekday = "Thu"
	Fri Weekday = "Fri"
	Sat Weekday = "Sat"
	Sun Weekday = "Sun"
)

// Week is the display order of repeat days.
var Week = []Weekday{Mon, Tue, Wed, Thu, Fri, Sat, Sun}

var ErrUnknownWeekday = errors.New("unknown weekday")

var stdWeekdays = map[Weekday]time.Weekday{
	Mon: time.Monday,
	Tue: time.Tuesday,
	Wed: time.Wednesday,
	Thu: time.Thursday,
	Fri: time.Friday,
	Sat: time.Saturday,
	Sun: time.Sunday,
}

func (d Weekday) Valid() bool {
	_, ok := stdWeekdays[d]
	return ok
}

func (d Weekday) Matches(wd time.Weekday) bool {
	std, ok := stdWeekdays[d]
	return ok && std == wd
}

func (d Weekday) index() int {
	for i, w := range Week {
		if w == d {
			return i
		}
	}
	return len(Week)
}

// ParseWeekdays validates names such as "mon" or "Tue", drops duplicates and
// returns them in Mon..Sun order.
func ParseWeekdays(names []string) ([]Weekday, error) {
	seen := make(map[Weekday]bool, len(names))
	days := make([]Weekday, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		d := Weekday(strings.ToUpper(name[:1]) + strings.ToLower(name[1:]))
		if !d.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownWeekday, name)
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}
	SortWeekdays(days)
	return days, nil
}

func SortWeekdays(days []Weekday) {
	sort.SliceStable(days, func(i, j int) bool {
		return days[i].index() < days[j].index()
	})
}

func WeekdayStrings(days []Weekday) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = string(d)
	}
	return out
}
