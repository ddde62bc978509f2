// Package viewmodel maps service task records to the shape screens render.
package viewmodel

import (
	"strconv"
	"strings"
	"time"

	"taskBoard/internal/client"
	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"
	"taskBoard/internal/timefmt"

	"go.uber.org/zap"
)

type Kind string

const (
	KindPicture Kind = "picture"
	KindText    Kind = "text"
)

type Task struct {
	ID             string
	Title          string
	Kind           Kind
	Photo          string
	Detail         string
	CreatedDate    time.Time
	LastEditedDate time.Time
	Alarm          string // "12:56 PM"
	Repeats        []string
	Completed      bool
	DueDate        string // "2006-01-02"
}

func FromAPI(in client.APITask) Task {
	t := Task{
		ID:             strconv.FormatInt(in.ID, 10),
		Title:          in.Title,
		Kind:           KindText,
		Photo:          deref(in.Photo),
		Detail:         deref(in.Details),
		CreatedDate:    parseTimestamp(in.CreatedAt, in.ID),
		LastEditedDate: parseTimestamp(in.UpdatedAt, in.ID),
		Completed:      in.IsCompleted,
		DueDate:        deref(in.DueDate),
		Repeats:        sortedRepeats(in.RepeatDays),
	}
	if t.Photo != "" {
		t.Kind = KindPicture
	}

	if alarm := deref(in.AlarmTime); alarm != "" {
		display, err := timefmt.To12Hour(alarm)
		if err != nil {
			logger.Warn("Viewmodel: Некорректное время будильника", zap.Int64("task_id", in.ID), zap.String("alarm_time", alarm))
			display = alarm
		}
		t.Alarm = display
	}
	return t
}

func FromAPIList(in []client.APITask) []Task {
	out := make([]Task, len(in))
	for i := range in {
		out[i] = FromAPI(in[i])
	}
	return out
}

func (t Task) HasDueDate() bool {
	return t.DueDate != ""
}

func (t Task) HasAlarm() bool {
	return t.Alarm != ""
}

// DueTime parses DueDate as a UTC calendar date.
func (t Task) DueTime() (time.Time, bool) {
	if t.DueDate == "" {
		return time.Time{}, false
	}
	due, err := task.ParseDueDate(t.DueDate)
	if err != nil {
		return time.Time{}, false
	}
	return due, true
}

func (t Task) RepeatsLabel() string {
	return strings.Join(t.Repeats, ", ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func parseTimestamp(s string, id int64) time.Time {
	if s == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		logger.Warn("Viewmodel: Некорректная метка времени", zap.Int64("task_id", id), zap.String("value", s))
		return time.Time{}
	}
	return ts
}

func sortedRepeats(days []string) []string {
	if len(days) == 0 {
		return []string{}
	}
	parsed, err := task.ParseWeekdays(days)
	if err != nil {
		return append([]string{}, days...)
	}
	return task.WeekdayStrings(parsed)
}
