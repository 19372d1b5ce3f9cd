package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"luxury-tycoon/internal/server"
	"luxury-tycoon/internal/session"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	var noTicks bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket API",
		Long: `Serve one game session over HTTP.

Endpoints:
  GET  /api/state     current state and valuation
  POST /api/actions   dispatch an action: {"type": "buy", "instrument_id": "aurum", "shares": 10}
  POST /api/spin      draw today's spin prize
  POST /api/convert   exchange premium for primary: {"gems": 5}
  GET  /api/journal   journal rows (?view=snapshots, ?format=csv)
  GET  /healthz       liveness and stream metrics
  GET  /ws            live snapshots; accepts action messages`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := NewRuntime(ctx, cfg, app.Logger, RuntimeOptions{})
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := rt.Close(closeCtx); err != nil {
					app.Logger.Warn().Err(err).Msg("Shutdown incomplete")
				}
			}()

			if cfg.Scheduler.Enabled && !noTicks {
				sched := session.NewScheduler(rt.Session, cfg.Scheduler.TickInterval, app.Logger)
				sched.Start(ctx)
				defer sched.Stop()
			}

			srv, err := server.New(server.Options{
				Session: rt.Session,
				Hub:     rt.Hub,
				Journal: rt.Journal,
				Config:  cfg.Server,
				Logger:  app.Logger,
				Version: Version,
			})
			if err != nil {
				return err
			}

			output := NewOutput(cmd)
			if !output.IsJSON() {
				output.Success("✓ Session %s serving on http://%s", rt.Session.ID(), cfg.Server.Addr)
				output.Dim("Seed %d. Press Ctrl+C to stop.", rt.Session.Seed())
			}
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&noTicks, "no-ticks", false, "do not advance prices automatically")
	return cmd
}
