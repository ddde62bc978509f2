package sqlite

import (
	"strings"
	"time"

	"taskBoard/internal/models/task"
	"taskBoard/internal/models/user"
)

type userRecord struct {
	ID           int64  `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;size:50;not null"`
	PasswordHash string `gorm:"size:100;not null"`
	CreatedAt    time.Time
}

func (userRecord) TableName() string { return "users" }

type taskRecord struct {
	ID          int64   `gorm:"primaryKey"`
	UserID      int64   `gorm:"index;not null"`
	Title       string  `gorm:"size:200;not null"`
	Details     string  `gorm:"not null;default:''"`
	Photo       string  `gorm:"not null;default:''"`
	IsCompleted bool    `gorm:"not null;default:false"`
	AlarmTime   *string `gorm:"size:5"`
	// RepeatDays holds "Mon,Wed" style comma separated names.
	RepeatDays string  `gorm:"not null;default:''"`
	DueDate    *string `gorm:"size:10"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (taskRecord) TableName() string { return "tasks" }

func toTaskRecord(t *task.Task) *taskRecord {
	rec := &taskRecord{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Details:     t.Details,
		Photo:       t.Photo,
		IsCompleted: t.IsCompleted,
		AlarmTime:   t.AlarmTime,
		RepeatDays:  strings.Join(task.WeekdayStrings(t.RepeatDays), ","),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.DueDate != nil {
		due := t.DueDate.Format(task.DateLayout)
		rec.DueDate = &due
	}
	return rec
}

func (r *taskRecord) toTask() *task.Task {
	t := &task.Task{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Details:     r.Details,
		Photo:       r.Photo,
		IsCompleted: r.IsCompleted,
		AlarmTime:   r.AlarmTime,
		RepeatDays:  []task.Weekday{},
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if r.RepeatDays != "" {
		for _, d := range strings.Split(r.RepeatDays, ",") {
			t.RepeatDays = append(t.RepeatDays, task.Weekday(d))
		}
		task.SortWeekdays(t.RepeatDays)
	}
	if r.DueDate != nil {
		if due, err := task.ParseDueDate(*r.DueDate); err == nil {
			t.DueDate = &due
		}
	}
	return t
}

func (r *userRecord) toUser() *user.User {
	return &user.User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}
