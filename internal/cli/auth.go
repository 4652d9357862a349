package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword returns the flag value, or prompts for one. On a terminal
// the input is not echoed; otherwise one line is read from the command's
// input.
func readPassword(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")

	if in, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(in.Fd())) {
		b, err := term.ReadPassword(int(in.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLoginCmd(a *app) *cobra.Command {
	var (
		email     string
		password  string
		showToken bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Long: `Sign in with a local account. The signed-in user is remembered with the
board; --print-token prints a session token for the HTTP API.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			st := a.env.Store
			ok := st.Login(cmd.Context(), email, pw)
			if err := storeErr(st); err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("login failed")
			}
			user := st.CurrentUser()
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", user.Username, user.Email)
			if showToken {
				fmt.Fprintln(cmd.OutOrStdout(), st.Token())
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&email, "email", "e", "", "account email")
	f.StringVar(&password, "password", "", "password (prompted when omitted)")
	f.BoolVar(&showToken, "print-token", false, "print the session token")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var (
		username string
		email    string
		password string
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a local account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			st := a.env.Store
			ok := st.Register(cmd.Context(), username, email, pw)
			if err := storeErr(st); err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("registration failed")
			}
			user := st.CurrentUser()
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and signed in as %s <%s>\n", user.Username, user.Email)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&username, "username", "u", "", "display name")
	f.StringVarP(&email, "email", "e", "", "account email")
	f.StringVar(&password, "password", "", "password (prompted when omitted)")
	setFlagAliases(f, map[string]string{"user": "username", "name": "username"})
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.env.Store
			if st.CurrentUser() == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
				return nil
			}
			st.Logout(cmd.Context())
			if err := storeErr(st); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user := a.env.Store.CurrentUser()
			if user == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.Username, user.Email)
			if user.LastLoginAt != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "last login: %s\n", user.LastLoginAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}
