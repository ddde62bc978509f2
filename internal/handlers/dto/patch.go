package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"taskBoard/internal/service"
)

var ErrNullNotAllowed = errors.New("null is not allowed")

// DecodePatch reads a partial update. Keys that are absent stay untouched,
// an explicit null clears alarm_time, due_date, repeat_days and details.
func DecodePatch(body io.Reader) (service.TaskPatch, error) {
	var patch service.TaskPatch

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return patch, fmt.Errorf("неверный JSON: %w", err)
	}

	for key, value := range raw {
		null := isNull(value)
		switch key {
		case "title":
			if null {
				return patch, fieldError(key, ErrNullNotAllowed)
			}
			var title string
			if err := json.Unmarshal(value, &title); err != nil {
				return patch, fieldError(key, err)
			}
			patch.Title = &title
		case "details":
			details := ""
			if !null {
				if err := json.Unmarshal(value, &details); err != nil {
					return patch, fieldError(key, err)
				}
			}
			patch.Details = &details
		case "is_completed":
			if null {
				return patch, fieldError(key, ErrNullNotAllowed)
			}
			var done bool
			if err := json.Unmarshal(value, &done); err != nil {
				return patch, fieldError(key, err)
			}
			patch.IsCompleted = &done
		case "alarm_time":
			if null {
				patch.ClearAlarm = true
				continue
			}
			var alarm string
			if err := json.Unmarshal(value, &alarm); err != nil {
				return patch, fieldError(key, err)
			}
			if alarm == "" {
				patch.ClearAlarm = true
				continue
			}
			patch.AlarmTime = &alarm
		case "repeat_days":
			days := []string{}
			if !null {
				if err := json.Unmarshal(value, &days); err != nil {
					return patch, fieldError(key, err)
				}
			}
			patch.RepeatDays = &days
		case "due_date":
			if null {
				patch.ClearDueDate = true
				continue
			}
			var due string
			if err := json.Unmarshal(value, &due); err != nil {
				return patch, fieldError(key, err)
			}
			patch.DueDate = &due
		}
	}
	return patch, nil
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

func fieldError(field string, err error) error {
	return service.NewValidationError(field, err.Error())
}
