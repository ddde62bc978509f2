package cmd

import (
	"fmt"

	"taskBoard/internal/calendar"
	"taskBoard/internal/controller"

	"github.com/spf13/cobra"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar [YYYY-MM]",
	Short: "Show a month with the tasks scheduled on each day",
	Long: `Show a month grid. Days marked with * have tasks; the agenda below
lists the tasks of the selected day (today by default).

Tasks with an alarm but no due date appear on today's date while the
current month is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCalendar,
}

func init() {
	rootCmd.AddCommand(calendarCmd)
	calendarCmd.Flags().IntP("day", "d", 0, "day of month to list tasks for")
}

func runCalendar(cmd *cobra.Command, args []string) error {
	c, err := signedIn(cmd.Context())
	if err != nil {
		return err
	}
	c.Navigate(controller.ScreenCalendar)

	month := calendar.MonthOf(timeNow())
	if len(args) == 1 {
		if month, err = calendar.ParseMonth(args[0]); err != nil {
			return err
		}
	}

	day, _ := cmd.Flags().GetInt("day")
	if day < 0 || day > calendar.DaysIn(month) {
		return fmt.Errorf("day %d is not in %s", day, month)
	}

	printCalendar(cmd.OutOrStdout(), c.Calendar(month, day))
	return nil
}
