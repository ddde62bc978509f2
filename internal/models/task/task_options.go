package task

import (
	"time"
)

type TaskOption func(*Task)

func WithTitle(title string) TaskOption {
	return func(task *Task) {
		task.Title = title
	}
}

// WithDetails also accepts "" which clears the details.
func WithDetails(details string) TaskOption {
	return func(task *Task) {
		task.Details = details
	}
}

func WithCompleted(completed bool) TaskOption {
	return func(task *Task) {
		task.IsCompleted = completed
	}
}

func WithPhoto(photo string) TaskOption {
	return func(task *Task) {
		task.Photo = photo
	}
}

// WithAlarmTime clears the alarm when alarm is nil.
func WithAlarmTime(alarm *string) TaskOption {
	return func(task *Task) {
		if alarm == nil || *alarm == "" {
			task.AlarmTime = nil
			return
		}
		v := *alarm
		task.AlarmTime = &v
	}
}

func WithRepeatDays(days []Weekday) TaskOption {
	return func(task *Task) {
		task.RepeatDays = append([]Weekday(nil), days...)
		SortWeekdays(task.RepeatDays)
	}
}

// WithDueDate clears the due date when due is nil.
func WithDueDate(due *time.Time) TaskOption {
	return func(task *Task) {
		if due == nil {
			task.DueDate = nil
			return
		}
		v := *due
		task.DueDate = &v
	}
}

func Apply(t *Task, options ...TaskOption) {
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
}
