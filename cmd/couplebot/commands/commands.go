package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tazhate/couplebot/config"
	"github.com/tazhate/couplebot/internal/dates"
	"github.com/tazhate/couplebot/internal/domain"
	"github.com/tazhate/couplebot/internal/ics"
	"github.com/tazhate/couplebot/internal/service"
	"github.com/tazhate/couplebot/internal/storage"
)

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage database migrations (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRawStorage(func(s *storage.Storage) error {
				if err := s.MigrateUp(); err != nil {
					return err
				}
				fmt.Println("Migrations applied")
				return nil
			})
		},
	})

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			return withRawStorage(func(s *storage.Storage) error {
				if err := s.MigrateDown(steps); err != nil {
					return err
				}
				fmt.Println("Migrations rolled back")
				return nil
			})
		},
	}
	downCmd.Flags().Int("steps", 0, "number of migrations to roll back, 0 for all")
	migrateCmd.AddCommand(downCmd)

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRawStorage(func(s *storage.Storage) error {
				version, dirty, err := s.MigrationVersion()
				if err != nil {
					return err
				}
				fmt.Printf("Current migration version: %d (dirty: %t)\n", version, dirty)
				return nil
			})
		},
	})

	return migrateCmd
}

// withRawStorage opens the database without applying migrations
func withRawStorage(fn func(s *storage.Storage) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	s, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

// NewAnniversariesCommand prints the derived anniversaries
func NewAnniversariesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anniversaries",
		Short: "List anniversaries",
		Long:  "List manual and generated anniversaries for a tab (all, anniversary, birthday, date, important, past)",
		RunE: func(cmd *cobra.Command, args []string) error {
			tab, _ := cmd.Flags().GetString("tab")
			today, _ := cmd.Flags().GetString("today")
			limit, _ := cmd.Flags().GetInt("limit")
			return runAnniversaries(tab, today, limit)
		},
	}
	cmd.Flags().String("tab", string(domain.TabAll), "filter tab")
	cmd.Flags().String("today", "", "pretend today is this date (YYYY-MM-DD)")
	cmd.Flags().Int("limit", 0, "print at most this many items, 0 for all")
	return cmd
}

func runAnniversaries(tab, today string, limit int) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if today != "" {
		d := dates.ParseDateOrNull(today)
		if d == nil {
			return fmt.Errorf("invalid --today %q, want YYYY-MM-DD", today)
		}
		noon := time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, a.cfg.Timezone)
		a.anniversaries.SetClock(func() time.Time { return noon })
	}

	items, err := a.anniversaries.List(domain.ParseFilterTab(tab))
	if err != nil {
		return err
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	now := a.anniversaries.Today()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tD-DAY\tTITLE\tKIND")
	for _, it := range items {
		kind := "manual"
		if it.IsAuto {
			kind = it.AutoTag
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", dates.Format(it.Date), it.DDay(now), it.Title, kind)
	}
	return w.Flush()
}

// NewImportICSCommand imports VEVENTs from an iCalendar file as events
func NewImportICSCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ics FILE",
		Short: "Import events from an .ics file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asAnniversary, _ := cmd.Flags().GetBool("anniversary")
			return runImportICS(args[0], asAnniversary)
		},
	}
	cmd.Flags().Bool("anniversary", false, "mark imported events as anniversaries")
	return cmd
}

func runImportICS(path string, asAnniversary bool) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	imported, err := ics.Import(f, a.cfg.Timezone)
	if err != nil {
		return err
	}

	var created, skipped int
	for _, ev := range imported {
		// our own feed re-imported would duplicate the derived items
		if strings.HasSuffix(ev.UID, ics.UIDSuffix) {
			skipped++
			continue
		}
		in := service.EventInput{
			Title:         ev.Summary,
			Description:   ev.Description,
			Date:          ev.Date,
			EndDate:       ev.EndDate,
			Time:          ev.Time,
			IsAnniversary: asAnniversary,
		}
		if _, err := a.events.Create(in); err != nil {
			if !errors.Is(err, service.ErrInvalidInput) {
				return fmt.Errorf("create %q: %w", ev.Summary, err)
			}
			a.logger.WithError(err).Warnw("Skipping event", "uid", ev.UID, "summary", ev.Summary)
			skipped++
			continue
		}
		created++
	}

	fmt.Printf("Imported %d events, skipped %d\n", created, skipped)
	return nil
}

// NewExportCommand writes the YAML export
func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export profile, events, memories and favorites as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			return runExport(out)
		},
	}
	cmd.Flags().StringP("out", "o", "", "output file, stdout when empty")
	return cmd
}

func runExport(out string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if out == "" {
		return a.export.Export(os.Stdout)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := a.export.Export(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// NewBackupCommand takes a backup immediately
func NewBackupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Copy the database to the backup directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			path, err := a.backup.Backup()
			if err != nil {
				return err
			}
			fmt.Printf("Backup written to %s\n", path)
			return nil
		},
	}
}
