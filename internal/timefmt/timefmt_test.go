package timefmt_test

import (
	"fmt"
	"testing"

	"taskBoard/internal/timefmt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTo24Hour тестирует перевод в 24-часовой формат
func TestTo24Hour(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12:56 PM", "12:56"},
		{"12:56 AM", "00:56"},
		{"1:05 AM", "01:05"},
		{"1:05 PM", "13:05"},
		{"13:05", "13:05"},
		{"11:59 pm", "23:59"},
		{"09:00 am", "09:00"},
		{"7:30PM", "19:30"},
		{" 6:15 AM ", "06:15"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := timefmt.To24Hour(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestTo24Hour_Invalid тестирует некорректный ввод
func TestTo24Hour_Invalid(t *testing.T) {
	for _, in := range []string{"", "1205 PM", "ab:05 PM", "13:05 PM", "0:10 AM", "1:05 XM"} {
		t.Run(in, func(t *testing.T) {
			_, err := timefmt.To24Hour(in)
			assert.ErrorIs(t, err, timefmt.ErrInvalidTime)
		})
	}
}

// TestTo12Hour тестирует перевод в отображаемый формат
func TestTo12Hour(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"00:56", "12:56 AM"},
		{"12:56", "12:56 PM"},
		{"13:05", "1:05 PM"},
		{"01:05", "1:05 AM"},
		{"23:59:00", "11:59 PM"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := timefmt.To12Hour(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, in := range []string{"", "24:00", "12", "12:5", "12:60"} {
		_, err := timefmt.To12Hour(in)
		assert.ErrorIs(t, err, timefmt.ErrInvalidTime, in)
	}
}

// TestRoundTrip тестирует обратимость преобразований
func TestRoundTrip(t *testing.T) {
	for h := 0; h < 24; h++ {
		in := fmt.Sprintf("%02d:30", h)
		display, err := timefmt.To12Hour(in)
		require.NoError(t, err)
		back, err := timefmt.To24Hour(display)
		require.NoError(t, err)
		assert.Equal(t, in, back)
	}
}
