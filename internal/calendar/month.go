// Package calendar lays out a month as a 6x7 grid and places tasks on its days.
package calendar

import (
	"fmt"
	"time"
)

// Cells is the size of a grid: six weeks of seven days.
const Cells = 42

type Month struct {
	Year  int
	Month time.Month
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth reads "2025-12".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("month %q: expected YYYY-MM", s)
	}
	return MonthOf(t), nil
}

func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) Next() Month {
	return MonthOf(m.First().AddDate(0, 1, 0))
}

func (m Month) Prev() Month {
	return MonthOf(m.First().AddDate(0, -1, 0))
}

// Contains compares calendar fields only, so t's location does not matter.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Month
}

func (m Month) String() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

// DaysIn uses day 0 of the following month, which normalises to the last day of m.
func DaysIn(m Month) int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Grid holds day numbers; 0 marks a cell outside the month.
type Grid [Cells]int

func BuildGrid(m Month) Grid {
	var g Grid
	offset := int(m.First().Weekday())
	for day := 1; day <= DaysIn(m); day++ {
		g[offset+day-1] = day
	}
	return g
}

// Offset is the index of day 1, Sunday being 0.
func (g Grid) Offset() int {
	for i, day := range g {
		if day != 0 {
			return i
		}
	}
	return -1
}

func (g Grid) Rows() [6][7]int {
	var rows [6][7]int
	for i, day := range g {
		rows[i/7][i%7] = day
	}
	return rows
}
