package task

import (
	"time"
)

const DefaultTitle = "Untitled Task"

// DateLayout is the wire and storage format of a due date.
const DateLayout = "2006-01-02"

// AlarmLayout is the 24-hour wall-clock format of an alarm.
const AlarmLayout = "15:04"

type Task struct {
	ID          int64      `json:"id" db:"id"`
	UserID      int64      `json:"user_id" db:"user_id"`
	Title       string     `json:"title" db:"title"`
	Details     string     `json:"details" db:"details"`
	Photo       string     `json:"photo" db:"photo"`
	IsCompleted bool       `json:"is_completed" db:"is_completed"`
	AlarmTime   *string    `json:"alarm_time,omitempty" db:"alarm_time"`
	RepeatDays  []Weekday  `json:"repeat_days" db:"repeat_days"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

func (t *Task) HasAlarm() bool {
	return t.AlarmTime != nil && *t.AlarmTime != ""
}

// DueOn reports whether the due date falls on the same calendar day as day.
func (t *Task) DueOn(day time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	y1, m1, d1 := t.DueDate.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// RepeatsOn reports whether wd is one of the task's repeat days.
func (t *Task) RepeatsOn(wd time.Weekday) bool {
	for _, d := range t.RepeatDays {
		if d.Matches(wd) {
			return true
		}
	}
	return false
}

func (t *Task) Clone() *Task {
	c := *t
	if t.AlarmTime != nil {
		alarm := *t.AlarmTime
		c.AlarmTime = &alarm
	}
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	c.RepeatDays = append([]Weekday(nil), t.RepeatDays...)
	return &c
}

// ParseDueDate parses "YYYY-MM-DD" into a UTC midnight date.
func ParseDueDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// ParseAlarmTime accepts "HH:MM" or "HH:MM:SS" and returns the canonical "HH:MM".
func ParseAlarmTime(s string) (string, error) {
	layout := AlarmLayout
	if len(s) == len("15:04:05") {
		layout = "15:04:05"
	}
	parsed, err := time.Parse(layout, s)
	if err != nil {
		return "", err
	}
	return parsed.Format(AlarmLayout), nil
}
