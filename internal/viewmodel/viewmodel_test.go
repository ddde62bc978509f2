package viewmodel_test

import (
	"encoding/json"
	"testing"
	"time"

	"taskBoard/internal/client"
	"taskBoard/internal/models/task"
	"taskBoard/internal/timefmt"
	"taskBoard/internal/viewmodel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

// TestFromAPI тестирует преобразование записи сервиса
func TestFromAPI(t *testing.T) {
	in := client.APITask{
		ID:          12,
		Title:       "Buy milk",
		IsCompleted: true,
		Details:     str("2 liters"),
		Photo:       str("/media/photos/a.png"),
		CreatedAt:   "2025-12-01T10:00:00Z",
		UpdatedAt:   "2025-12-02T11:30:00.5Z",
		AlarmTime:   str("13:05"),
		RepeatDays:  []string{"Sun", "Mon", "Wed"},
		DueDate:     str("2025-12-21"),
	}

	got := viewmodel.FromAPI(in)
	assert.Equal(t, "12", got.ID)
	assert.Equal(t, viewmodel.KindPicture, got.Kind)
	assert.Equal(t, "2 liters", got.Detail)
	assert.Equal(t, "1:05 PM", got.Alarm)
	assert.Equal(t, []string{"Mon", "Wed", "Sun"}, got.Repeats)
	assert.Equal(t, "Mon, Wed, Sun", got.RepeatsLabel())
	assert.True(t, got.Completed)
	assert.Equal(t, time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC), got.CreatedDate)
	assert.False(t, got.LastEditedDate.Before(got.CreatedDate))

	due, ok := got.DueTime()
	require.True(t, ok)
	assert.Equal(t, 21, due.Day())
}

// TestFromAPI_Nulls тестирует значения по умолчанию для пустых полей
func TestFromAPI_Nulls(t *testing.T) {
	got := viewmodel.FromAPI(client.APITask{ID: 1, Title: "t", CreatedAt: "garbage"})
	assert.Equal(t, viewmodel.KindText, got.Kind)
	assert.Empty(t, got.Detail)
	assert.Empty(t, got.Photo)
	assert.Empty(t, got.Alarm)
	assert.False(t, got.HasAlarm())
	assert.False(t, got.HasDueDate())
	assert.NotNil(t, got.Repeats)
	assert.True(t, got.CreatedDate.IsZero())

	_, ok := got.DueTime()
	assert.False(t, ok)

	list := viewmodel.FromAPIList([]client.APITask{{ID: 1}, {ID: 2}})
	require.Len(t, list, 2)
	assert.Equal(t, "2", list[1].ID)
}

// TestDraft_ToCreate тестирует подготовку данных для создания
func TestDraft_ToCreate(t *testing.T) {
	data, err := viewmodel.Draft{
		Title:   "  ",
		Alarm:   "12:56 AM",
		Repeats: []string{"fri", "mon"},
		DueDate: "2025-12-25",
	}.ToCreate()
	require.NoError(t, err)
	assert.Equal(t, task.DefaultTitle, data.Title)
	assert.Equal(t, "00:56", data.AlarmTime)
	assert.Equal(t, []string{"Mon", "Fri"}, data.RepeatDays)
	assert.Equal(t, "2025-12-25", data.DueDate)
	assert.Nil(t, data.Photo)

	_, err = viewmodel.Draft{Title: "x", Alarm: "25:00 PM"}.ToCreate()
	assert.ErrorIs(t, err, timefmt.ErrInvalidTime)

	_, err = viewmodel.Draft{Title: "x", Repeats: []string{"Someday"}}.ToCreate()
	assert.ErrorIs(t, err, task.ErrUnknownWeekday)
}

// TestChanges_ToUpdate тестирует сериализацию частичных изменений
func TestChanges_ToUpdate(t *testing.T) {
	done := true
	tests := []struct {
		name    string
		changes viewmodel.Changes
		want    string
	}{
		{"nothing", viewmodel.Changes{}, `{}`},
		{"detail cleared", viewmodel.Changes{Detail: client.Set("")}, `{"details":""}`},
		{"empty title ignored", viewmodel.Changes{Title: str("")}, `{}`},
		{"title", viewmodel.Changes{Title: str(" New ")}, `{"title":"New"}`},
		{"due date cleared", viewmodel.Changes{DueDate: client.Set("")}, `{"due_date":null}`},
		{"due date set", viewmodel.Changes{DueDate: client.Set("2025-12-21")}, `{"due_date":"2025-12-21"}`},
		{"alarm normalised", viewmodel.Changes{Alarm: client.Set("1:05 PM")}, `{"alarm_time":"13:05"}`},
		{"alarm cleared", viewmodel.Changes{Alarm: client.Null[string]()}, `{"alarm_time":null}`},
		{"repeats cleared", viewmodel.Changes{Repeats: client.Set[[]string](nil)}, `{"repeat_days":[]}`},
		{"repeats sorted", viewmodel.Changes{Repeats: client.Set([]string{"Sun", "Tue"})}, `{"repeat_days":["Tue","Sun"]}`},
		{"completed", viewmodel.Changes{Completed: &done}, `{"is_completed":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.changes.ToUpdate()
			require.NoError(t, err)
			raw, err := json.Marshal(data)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))
		})
	}

	_, err := viewmodel.Changes{Alarm: client.Set("noon")}.ToUpdate()
	assert.Error(t, err)
}
