package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tgienger/kanban/internal/api"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over HTTP",
		Long: `Serve a JSON API over the board. With auth.required set, task and tag
routes need an "Authorization: Bearer <token>" header; tokens come from
POST /api/auth/login or "kanban login --print-token".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := a.env
			if addr == "" {
				addr = env.Config.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := api.NewServer(api.Options{
				Store:       env.Store,
				Tokens:      env.Identity,
				RequireAuth: env.Config.Auth.Required,
				Logger:      env.Log,
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	setFlagAliases(cmd.Flags(), map[string]string{"listen": "addr"})
	return cmd
}
