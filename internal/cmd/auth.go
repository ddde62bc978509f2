package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"taskBoard/internal/session"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Sign in",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create an account and sign in",
	Args:  cobra.ExactArgs(1),
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringP("password", "p", "", "password (read from stdin when omitted)")
	}
}

func runLogin(cmd *cobra.Command, args []string) error {
	return authenticate(cmd, args[0], false)
}

func runRegister(cmd *cobra.Command, args []string) error {
	return authenticate(cmd, args[0], true)
}

func authenticate(cmd *cobra.Command, username string, register bool) error {
	password, err := readPassword(cmd)
	if err != nil {
		return err
	}

	c, err := newController(cmd.Context())
	if err != nil {
		return err
	}
	if c.State() == session.Authenticated {
		return fmt.Errorf("already signed in as %s, run `tasks logout` first", c.Username())
	}

	if register {
		err = c.Register(cmd.Context(), username, password)
	} else {
		err = c.Login(cmd.Context(), username, password)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%d tasks)\n", c.Username(), len(c.Tasks()))
	return nil
}

func readPassword(cmd *cobra.Command) (string, error) {
	password, _ := cmd.Flags().GetString("password")
	if password != "" {
		return password, nil
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	c, err := signedIn(cmd.Context())
	if err != nil {
		return err
	}
	name := c.Username()
	if err := c.Logout(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed out %s\n", name)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	c, err := newController(cmd.Context())
	if err != nil {
		return err
	}
	if c.State() != session.Authenticated {
		fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), c.Username())
	return nil
}
