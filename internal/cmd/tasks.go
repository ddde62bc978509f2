package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"taskBoard/internal/client"
	"taskBoard/internal/controller"
	"taskBoard/internal/viewmodel"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List open tasks, newest first",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show every field of a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a task",
	Long: `Add a task. The title defaults to "Untitled Task".

Alarm times accept "7:30 AM" or "07:30"; repeat days are a comma list
such as Mon,Wed,Fri.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of a task",
	Long: `Change fields of a task. Only the flags you pass are sent.
Passing an empty value clears the field, e.g. --due "" removes the due date.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Mark a task done, or open again",
	Args:  cobra.ExactArgs(1),
	RunE:  runToggle,
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(deleteCmd)

	listCmd.Flags().Bool("completed", false, "list completed tasks instead")

	addCmd.Flags().String("detail", "", "details")
	addCmd.Flags().String("due", "", "due date, YYYY-MM-DD")
	addCmd.Flags().String("alarm", "", "alarm time")
	addCmd.Flags().StringSlice("repeat", nil, "repeat days, e.g. Mon,Fri")
	addCmd.Flags().String("photo", "", "image file to attach")

	editCmd.Flags().String("title", "", "new title")
	editCmd.Flags().String("detail", "", "details")
	editCmd.Flags().String("due", "", "due date, YYYY-MM-DD")
	editCmd.Flags().String("alarm", "", "alarm time")
	editCmd.Flags().StringSlice("repeat", nil, "repeat days, e.g. Mon,Fri")
}

func runList(cmd *cobra.Command, args []string) error {
	c, err := signedIn(cmd.Context())
	if err != nil {
		return err
	}

	completed, _ := cmd.Flags().GetBool("completed")
	tasks := c.ActiveTasks()
	empty := "No open tasks"
	if completed {
		c.Navigate(controller.ScreenCompleted)
		tasks = c.CompletedTasks()
		empty = "No completed tasks"
	}

	if len(tasks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), empty)
		return nil
	}
	return printTasks(cmd.OutOrStdout(), tasks)
}

func runShow(cmd *cobra.Command, args []string) error {
	c, err := signedIn(cmd.Context())
	if err != nil {
		return err
	}
	if err := c.Select(args[0]); err != nil {
		return err
	}
	t, _ := c.Task(c.Selected())
	return printTask(cmd.OutOrStdout(), t)
}

func runAdd(cmd *cobra.Command, args []string) error {
	c, err := signedIn(cmd.Context())
	if err != nil {
		return err
	}
	c.Navigate(controller.ScreenAdd)

	draft := viewmodel.Draft{}
	if len(args) == 1 {
		draft.Title = args[0]
	}
	draft.Detail, _ = cmd.Flags().GetString("detail")
	draft.DueDate, _ = cmd.Flags().GetString("due")
	draft.Alarm, _ = cmd.Flags().GetString("alarm")
	draft.Repeats, _ = cmd.Flags().GetStringSlice("repeat")

	var photo *client.Photo
	if path, _ := cmd.Flags().GetString("photo"); path != "" {
		f, err := appFs.Open(path)
		if err != nil {
			return fmt.Errorf("opening photo: %w", err)
		}
		defer f.Close()
		photo = &client.Photo{Filename: filepath.Base(path), Content: f}
	}

	t, err := c.AddTask(cmd.Context(), draft, photo)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added task %s: %s\n", t.ID, t.Title)
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	c, err := signedIn(cmd.Context())
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	var changes viewmodel.Changes
	if flags.Changed("title") {
		title, _ := flags.GetString("title")
		changes.Title = &title
	}
	if flags.Changed("detail") {
		detail, _ := flags.GetString("detail")
		changes.Detail = client.Set(detail)
	}
	if flags.Changed("due") {
		due, _ := flags.GetString("due")
		changes.DueDate = client.Set(due)
	}
	if flags.Changed("alarm") {
		alarm, _ := flags.GetString("alarm")
		changes.Alarm = client.Set(alarm)
	}
	if flags.Changed("repeat") {
		repeats, _ := flags.GetStringSlice("repeat")
		changes.Repeats = client.Set(repeats)
	}

	t, err := c.UpdateTask(cmd.Context(), args[0], changes)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", t.ID)
	return printTask(cmd.OutOrStdout(), t)
}

func runToggle(cmd *cobra.Command, args []string) error {
	c, err := signedIn(cmd.Context())
	if err != nil {
		return err
	}

	t, err := c.ToggleComplete(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Task %s is now %s\n", t.ID, strings.ToLower(status(t)))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	c, err := signedIn(cmd.Context())
	if err != nil {
		return err
	}

	if err := c.DeleteTask(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
	return nil
}
