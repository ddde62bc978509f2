package dto

import (
	"time"

	"taskBoard/internal/models/task"
	"taskBoard/internal/models/user"
)

type AuthRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func FromUser(u *user.User) AuthResponse {
	return AuthResponse{ID: u.ID, Username: u.Username}
}

// CreateTaskRequest is the JSON form of a create; multipart forms carry the same fields.
type CreateTaskRequest struct {
	Title      string   `json:"title" validate:"max=200"`
	Details    string   `json:"details"`
	AlarmTime  string   `json:"alarm_time"`
	RepeatDays []string `json:"repeat_days"`
	DueDate    string   `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

type TaskResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	IsCompleted bool      `json:"is_completed"`
	Details     string    `json:"details"`
	Photo       *string   `json:"photo"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	AlarmTime   *string   `json:"alarm_time"`
	RepeatDays  []string  `json:"repeat_days"`
	DueDate     *string   `json:"due_date"`
}

// FromTask renders t for the wire; photos become URLs under mediaPrefix.
func FromTask(t *task.Task, mediaPrefix string) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		IsCompleted: t.IsCompleted,
		Details:     t.Details,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		RepeatDays:  task.WeekdayStrings(t.RepeatDays),
	}
	if t.Photo != "" {
		url := mediaPrefix + "/" + t.Photo
		resp.Photo = &url
	}
	if t.HasAlarm() {
		alarm := *t.AlarmTime
		resp.AlarmTime = &alarm
	}
	if t.DueDate != nil {
		due := t.DueDate.Format(task.DateLayout)
		resp.DueDate = &due
	}
	return resp
}

func FromTaskList(tasks []*task.Task, mediaPrefix string) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t, mediaPrefix)
	}
	return result
}
