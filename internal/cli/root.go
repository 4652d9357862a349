// Package cli implements the kanban command line.
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tgienger/kanban/internal/store"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// app carries the lazily bootstrapped environment through the command
// tree.
type app struct {
	opts GlobalOptions
	env  *Env
}

// NewRootCmd builds the command tree. A non-nil env is used as is, which
// lets tests run commands against an in-memory store.
func NewRootCmd(env *Env) *cobra.Command {
	a := &app{env: env}
	preset := env != nil

	root := &cobra.Command{
		Use:   "kanban",
		Short: "A task board for the terminal",
		Long: `kanban keeps a board of tasks, subtasks and tags.

Run without arguments to open the board. The task and tag commands
script the same operations, and serve exposes them over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.env != nil || !needsEnv(cmd) {
				return nil
			}
			env, err := Bootstrap(cmd.Context(), a.opts)
			if err != nil {
				return err
			}
			a.env = env
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if preset || a.env == nil {
				return nil
			}
			return a.env.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd, a.env, false, "")
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.ConfigFile, "config", "", "config file (default: <data-dir>/config.yaml)")
	flags.StringVar(&a.opts.DataDir, "data-dir", "", "data directory (default: $XDG_DATA_HOME/kanban)")
	flags.StringVar(&a.opts.EnvFile, "env-file", ".env", "dotenv file loaded before reading KANBAN_* variables")
	flags.StringVar(&a.opts.LogLevel, "log-level", "", "log level (overrides log.level)")
	flags.BoolVar(&a.opts.Ephemeral, "ephemeral", false, "keep everything in memory for this run")
	setFlagAliases(flags, map[string]string{"datadir": "data-dir", "memory": "ephemeral"})

	root.AddCommand(
		newVersionCmd(),
		newBoardCmd(a),
		newTaskCmd(a),
		newTagCmd(a),
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newExportCmd(a),
		newServeCmd(a),
	)
	return root
}

// needsEnv reports whether cmd touches the store.
func needsEnv(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion":
		return false
	}
	return true
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kanban %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
		},
	}
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd(nil).Execute()
}

// setFlagAliases lets the flag set accept alternate names for existing
// flags without listing them in usage.
func setFlagAliases(flags *pflag.FlagSet, aliases map[string]string) {
	if len(aliases) == 0 {
		return
	}

	normalize := flags.GetNormalizeFunc()
	flags.SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		if alias, ok := aliases[name]; ok {
			name = alias
		}
		return normalize(f, name)
	})
}

// storeErr turns the store's error field into an error and clears it.
func storeErr(st *store.Store) error {
	msg := st.Err()
	if msg == "" {
		return nil
	}
	st.ClearError()
	return errors.New(msg)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
