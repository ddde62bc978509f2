package viewmodel

import (
	"fmt"
	"strings"

	"taskBoard/internal/client"
	"taskBoard/internal/models/task"
	"taskBoard/internal/timefmt"
)

// Draft is what the add screen collects before the service assigns an id.
type Draft struct {
	Title   string
	Detail  string
	DueDate string
	Alarm   string
	Repeats []string
}

func (d Draft) ToCreate() (client.CreateTaskData, error) {
	data := client.CreateTaskData{
		Title:   strings.TrimSpace(d.Title),
		Details: d.Detail,
		DueDate: strings.TrimSpace(d.DueDate),
	}
	if data.Title == "" {
		data.Title = task.DefaultTitle
	}

	if d.Alarm != "" {
		alarm, err := normalizeAlarm(d.Alarm)
		if err != nil {
			return client.CreateTaskData{}, err
		}
		data.AlarmTime = alarm
	}

	if len(d.Repeats) > 0 {
		days, err := task.ParseWeekdays(d.Repeats)
		if err != nil {
			return client.CreateTaskData{}, fmt.Errorf("repeats: %w", err)
		}
		data.RepeatDays = task.WeekdayStrings(days)
	}
	return data, nil
}

// Changes is a partial edit. Unset fields stay untouched on the service;
// a set but empty Detail, DueDate, Alarm or Repeats clears the field.
type Changes struct {
	Title     *string
	Detail    client.Field[string]
	DueDate   client.Field[string]
	Alarm     client.Field[string]
	Repeats   client.Field[[]string]
	Completed *bool
}

func (c Changes) ToUpdate() (client.UpdateTaskData, error) {
	var data client.UpdateTaskData

	if c.Title != nil && strings.TrimSpace(*c.Title) != "" {
		data.Title = client.Set(strings.TrimSpace(*c.Title))
	}

	if c.Detail.IsSet() {
		detail, _ := c.Detail.Value()
		data.Details = client.Set(detail)
	}

	if c.DueDate.IsSet() {
		if due, ok := c.DueDate.Value(); ok && due != "" {
			data.DueDate = client.Set(due)
		} else {
			data.DueDate = client.Null[string]()
		}
	}

	if c.Alarm.IsSet() {
		if alarm, ok := c.Alarm.Value(); ok && alarm != "" {
			normalized, err := normalizeAlarm(alarm)
			if err != nil {
				return client.UpdateTaskData{}, err
			}
			data.AlarmTime = client.Set(normalized)
		} else {
			data.AlarmTime = client.Null[string]()
		}
	}

	if c.Repeats.IsSet() {
		repeats, _ := c.Repeats.Value()
		days, err := task.ParseWeekdays(repeats)
		if err != nil {
			return client.UpdateTaskData{}, fmt.Errorf("repeats: %w", err)
		}
		data.RepeatDays = client.Set(task.WeekdayStrings(days))
	}

	if c.Completed != nil {
		data.IsCompleted = client.Set(*c.Completed)
	}
	return data, nil
}

// normalizeAlarm accepts display or 24-hour input and returns "HH:MM".
func normalizeAlarm(s string) (string, error) {
	converted, err := timefmt.To24Hour(s)
	if err != nil {
		return "", fmt.Errorf("alarm: %w", err)
	}
	canonical, err := task.ParseAlarmTime(converted)
	if err != nil {
		return "", fmt.Errorf("alarm: %w: %q", timefmt.ErrInvalidTime, s)
	}
	return canonical, nil
}
