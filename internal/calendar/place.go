package calendar

import (
	"time"

	"taskBoard/internal/viewmodel"
)

// NoTasksMessage is shown for a selected day without placements.
const NoTasksMessage = "No tasks scheduled"

type Reason string

const (
	ReasonDueDate Reason = "due_date"
	ReasonAlarm   Reason = "alarm"
)

type Placement struct {
	Task   viewmodel.Task
	Day    int
	Reason Reason
}

type PlaceOptions struct {
	// AlarmFallbackDay places alarm-only tasks; zero leaves them off the calendar.
	AlarmFallbackDay int
}

// Place maps open tasks onto days of m. A due date inside m wins; otherwise a
// task with an alarm lands on the fallback day. Everything else is skipped.
func Place(tasks []viewmodel.Task, m Month, opts PlaceOptions) []Placement {
	fallback := opts.AlarmFallbackDay
	if fallback < 1 || fallback > DaysIn(m) {
		fallback = 0
	}

	placements := make([]Placement, 0, len(tasks))
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		if due, ok := t.DueTime(); ok && m.Contains(due) {
			placements = append(placements, Placement{Task: t, Day: due.Day(), Reason: ReasonDueDate})
			continue
		}
		if t.HasAlarm() && fallback != 0 {
			placements = append(placements, Placement{Task: t, Day: fallback, Reason: ReasonAlarm})
		}
	}
	return placements
}

type Agenda struct {
	Day   int
	Tasks []Placement
}

func ForDay(placements []Placement, day int) Agenda {
	agenda := Agenda{Day: day, Tasks: []Placement{}}
	for _, p := range placements {
		if p.Day == day {
			agenda.Tasks = append(agenda.Tasks, p)
		}
	}
	return agenda
}

func (a Agenda) Empty() bool {
	return len(a.Tasks) == 0
}

// Message is the text for an empty agenda and "" otherwise.
func (a Agenda) Message() string {
	if a.Empty() {
		return NoTasksMessage
	}
	return ""
}

func MarkedDays(placements []Placement) map[int]bool {
	marked := make(map[int]bool, len(placements))
	for _, p := range placements {
		marked[p.Day] = true
	}
	return marked
}

// View is everything the calendar screen draws for one month.
type View struct {
	Month      Month
	Grid       Grid
	Today      int // 0 when today is outside Month
	Selected   int
	Placements []Placement
	Marked     map[int]bool
	Agenda     Agenda
}

func NewView(tasks []viewmodel.Task, m Month, today time.Time, selected int, opts PlaceOptions) View {
	placements := Place(tasks, m, opts)
	v := View{
		Month:      m,
		Grid:       BuildGrid(m),
		Selected:   selected,
		Placements: placements,
		Marked:     MarkedDays(placements),
		Agenda:     ForDay(placements, selected),
	}
	if m.Contains(today) {
		v.Today = today.Day()
	}
	return v
}
