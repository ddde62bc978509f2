package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"taskBoard/internal/calendar"
	"taskBoard/internal/viewmodel"
)

var timeNow = time.Now

const stampLayout = "Jan 2, 2006 15:04"

func status(t viewmodel.Task) string {
	if t.Completed {
		return "Done"
	}
	return "Open"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printTasks(w io.Writer, tasks []viewmodel.Task) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tDUE\tALARM\tREPEATS\tSTATUS")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Title, orDash(t.DueDate), orDash(t.Alarm), orDash(t.RepeatsLabel()), status(t))
	}
	return tw.Flush()
}

func printTask(w io.Writer, t viewmodel.Task) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", t.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", t.Title)
	fmt.Fprintf(tw, "Status:\t%s\n", status(t))
	fmt.Fprintf(tw, "Detail:\t%s\n", orDash(t.Detail))
	if t.Kind == viewmodel.KindPicture {
		fmt.Fprintf(tw, "Photo:\t%s\n", t.Photo)
	}
	fmt.Fprintf(tw, "Due:\t%s\n", orDash(t.DueDate))
	fmt.Fprintf(tw, "Alarm:\t%s\n", orDash(t.Alarm))
	fmt.Fprintf(tw, "Repeats:\t%s\n", orDash(t.RepeatsLabel()))
	fmt.Fprintf(tw, "Created:\t%s\n", t.CreatedDate.Local().Format(stampLayout))
	fmt.Fprintf(tw, "Last edited:\t%s\n", t.LastEditedDate.Local().Format(stampLayout))
	return tw.Flush()
}

// printCalendar draws the grid with * after days that have tasks and
// brackets around the selected day, then the selected day's agenda.
func printCalendar(w io.Writer, v calendar.View) {
	fmt.Fprintln(w, v.Month.String())
	fmt.Fprintln(w, " Sun  Mon  Tue  Wed  Thu  Fri  Sat")

	for _, row := range v.Grid.Rows() {
		if row == [7]int{} {
			continue
		}
		var b strings.Builder
		for _, day := range row {
			b.WriteString(cell(day, v))
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}

	fmt.Fprintln(w)
	if v.Selected == 0 {
		return
	}
	fmt.Fprintf(w, "%s %d:\n", v.Month.Month, v.Selected)
	if v.Agenda.Empty() {
		fmt.Fprintf(w, "  %s\n", v.Agenda.Message())
		return
	}
	for _, p := range v.Agenda.Tasks {
		line := fmt.Sprintf("  [%s] %s", p.Task.ID, p.Task.Title)
		if p.Reason == calendar.ReasonAlarm {
			line += " - " + p.Task.Alarm
		}
		fmt.Fprintln(w, line)
	}
}

func cell(day int, v calendar.View) string {
	if day == 0 {
		return "     "
	}
	mark := " "
	if v.Marked[day] {
		mark = "*"
	}
	if day == v.Selected {
		return fmt.Sprintf("[%2d]%s", day, mark)
	}
	return fmt.Sprintf(" %2d %s", day, mark)
}
