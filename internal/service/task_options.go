package service

import (
	"io"
	"strings"

	"taskBoard/internal/models/task"
)

const maxTitleLength = 200

type PhotoUpload struct {
	Filename string
	Content  io.Reader
}

type CreateTaskInput struct {
	Title      string
	Details    string
	AlarmTime  string
	RepeatDays []string
	DueDate    string
	Photo      *PhotoUpload
}

// TaskPatch holds only the keys present in an update request.
// A nil pointer means "do not change"; the Clear flags mean an explicit null.
type TaskPatch struct {
	Title        *string
	Details      *string
	IsCompleted  *bool
	AlarmTime    *string
	ClearAlarm   bool
	RepeatDays   *[]string
	DueDate      *string
	ClearDueDate bool
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Details == nil && p.IsCompleted == nil &&
		p.AlarmTime == nil && !p.ClearAlarm && p.RepeatDays == nil &&
		p.DueDate == nil && !p.ClearDueDate
}

// Options validates the patch and turns it into task options.
func (p TaskPatch) Options() ([]task.TaskOption, error) {
	var opts []task.TaskOption

	if p.Title != nil {
		title, err := normalizeTitle(*p.Title)
		if err != nil {
			return nil, err
		}
		opts = append(opts, task.WithTitle(title))
	}

	if p.Details != nil {
		opts = append(opts, task.WithDetails(*p.Details))
	}

	if p.IsCompleted != nil {
		opts = append(opts, task.WithCompleted(*p.IsCompleted))
	}

	switch {
	case p.ClearAlarm:
		opts = append(opts, task.WithAlarmTime(nil))
	case p.AlarmTime != nil:
		alarm, err := parseAlarm(*p.AlarmTime)
		if err != nil {
			return nil, err
		}
		opts = append(opts, task.WithAlarmTime(alarm))
	}

	if p.RepeatDays != nil {
		days, err := task.ParseWeekdays(*p.RepeatDays)
		if err != nil {
			return nil, NewValidationError("repeat_days", err.Error())
		}
		opts = append(opts, task.WithRepeatDays(days))
	}

	switch {
	case p.ClearDueDate:
		opts = append(opts, task.WithDueDate(nil))
	case p.DueDate != nil:
		if *p.DueDate == "" {
			opts = append(opts, task.WithDueDate(nil))
			break
		}
		due, err := task.ParseDueDate(*p.DueDate)
		if err != nil {
			return nil, NewValidationError("due_date", "expected YYYY-MM-DD")
		}
		opts = append(opts, task.WithDueDate(&due))
	}

	return opts, nil
}

// normalizeTitle falls back to the default title for blank input.
func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return task.DefaultTitle, nil
	}
	if len([]rune(title)) > maxTitleLength {
		return "", NewValidationError("title", "must be at most 200 characters")
	}
	return title, nil
}

func parseAlarm(raw string) (*string, error) {
	if raw == "" {
		return nil, nil
	}
	alarm, err := task.ParseAlarmTime(raw)
	if err != nil {
		return nil, NewValidationError("alarm_time", "expected HH:MM")
	}
	return &alarm, nil
}
