package cli

import (
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"luxury-tycoon/internal/config"
	"luxury-tycoon/internal/errors"
	"luxury-tycoon/internal/store"
	"luxury-tycoon/pkg/utils"
)

// openStoredJournal opens the SQLite journal and fails with
// ErrJournalDisabled when the store is off.
func openStoredJournal(cfg *config.Config) (store.Journal, error) {
	if !cfg.Store.Enabled {
		return nil, errors.Wrap(errors.ErrJournalDisabled, "set store.enabled in the configuration")
	}
	return store.NewSQLiteJournal(cfg.Store.Path)
}

func newJournalCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the action journal",
		Long:  "Review recorded sessions, dispatched actions and net-worth snapshots, or export them as CSV.",
	}

	cmd.AddCommand(newJournalSessionsCmd(app))
	cmd.AddCommand(newJournalActionsCmd(app))
	cmd.AddCommand(newJournalExportCmd(app))

	return cmd
}

func newJournalSessionsCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config()
			if err != nil {
				return err
			}
			journal, err := openStoredJournal(cfg)
			if err != nil {
				return err
			}
			defer journal.Close()

			sessions, err := journal.ListSessions(cmd.Context(), limit)
			if err != nil {
				return err
			}

			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(sessions)
			}
			if len(sessions) == 0 {
				output.Info("No sessions recorded")
				return nil
			}

			table := NewTable(output, "SESSION", "SEED", "STARTED")
			for _, s := range sessions {
				table.AddRow(s.ID, strconv.FormatInt(s.Seed, 10), s.StartedAt.Local().Format("2006-01-02 15:04:05"))
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "maximum sessions to list")
	return cmd
}

func newJournalActionsCmd(app *App) *cobra.Command {
	var filter store.ActionFilter

	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List journaled actions",
		Example: `  tycoon journal actions --session 3f2c... --kind buy
  tycoon journal actions --accepted --limit 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config()
			if err != nil {
				return err
			}
			journal, err := openStoredJournal(cfg)
			if err != nil {
				return err
			}
			defer journal.Close()

			actions, err := journal.ListActions(cmd.Context(), filter)
			if err != nil {
				return err
			}

			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(actions)
			}
			if len(actions) == 0 {
				output.Info("No actions recorded")
				return nil
			}

			table := NewTable(output, "TIME", "KIND", "RESULT", "VERSION", "PRIMARY", "GEMS")
			for _, a := range actions {
				result := output.Green("accepted")
				if !a.Accepted {
					result = output.Red(a.Reason)
				}
				table.AddRow(
					a.CreatedAt.Local().Format("15:04:05"),
					a.Kind,
					result,
					strconv.FormatUint(a.Version, 10),
					utils.FormatCurrency(a.Primary),
					utils.FormatGems(a.Premium),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.SessionID, "session", "", "only actions of this session")
	cmd.Flags().StringVar(&filter.Kind, "kind", "", "only actions of this kind")
	cmd.Flags().BoolVar(&filter.AcceptedOnly, "accepted", false, "only accepted actions")
	cmd.Flags().IntVarP(&filter.Limit, "limit", "l", 100, "maximum actions to list")
	return cmd
}

func newJournalExportCmd(app *App) *cobra.Command {
	var sessionID, view, out string
	var limit int

	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Export journal rows as CSV",
		Example: "  tycoon journal export --session 3f2c... --view snapshots --out networth.csv",
		RunE: func(cmd *cobra.Command, args []string) error {
			if view != "actions" && view != "snapshots" {
				return errors.NewValidationError("view", view, "must be actions or snapshots")
			}

			cfg, err := app.Config()
			if err != nil {
				return err
			}
			journal, err := openStoredJournal(cfg)
			if err != nil {
				return err
			}
			defer journal.Close()

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return errors.Wrapf(err, "failed to create %s", out)
				}
				defer f.Close()
				w = f
			}

			var rows int
			if view == "snapshots" {
				records, err := journal.ListSnapshots(cmd.Context(), sessionID, limit)
				if err != nil {
					return err
				}
				rows = len(records)
				if err := store.WriteSnapshotsCSV(w, records); err != nil {
					return err
				}
			} else {
				records, err := journal.ListActions(cmd.Context(), store.ActionFilter{SessionID: sessionID, Limit: limit})
				if err != nil {
					return err
				}
				rows = len(records)
				if err := store.WriteActionsCSV(w, records); err != nil {
					return err
				}
			}

			if out != "" {
				NewOutput(cmd).Success("✓ Exported %d %s to %s", rows, view, out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "only rows of this session")
	cmd.Flags().StringVar(&view, "view", "actions", "rows to export (actions, snapshots)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum rows (0 for all)")
	return cmd
}
