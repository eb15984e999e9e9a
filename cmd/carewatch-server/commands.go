package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/carewatch/carewatch/internal/domain/activity"
	"github.com/carewatch/carewatch/internal/domain/admin"
	"github.com/carewatch/carewatch/internal/domain/risk"
	"github.com/carewatch/carewatch/internal/domain/symptom"
	"github.com/carewatch/carewatch/internal/domain/visit"
	"github.com/carewatch/carewatch/internal/platform/db"
	"github.com/carewatch/carewatch/migrations"
)

func migrationSource(dir string) fs.FS {
	if dir == "" {
		return migrations.FS
	}
	return os.DirFS(dir)
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, _ := cmd.Flags().GetInt("to")
			ctx := context.Background()
			cfg, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, migrationSource(cfg.MigrationsDir)).UpTo(ctx, target)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s).\n", count)
			return nil
		},
	}
	upCmd.Flags().Int("to", 0, "Stop after this migration version (0 applies all)")
	cmd.AddCommand(upCmd)

	// migrate status
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, migrationSource(cfg.MigrationsDir)).Status(ctx)
			if err != nil {
				return fmt.Errorf("migration status: %w", err)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tNAME\tSTATUS\tAPPLIED AT")
			for _, s := range statuses {
				state, at := "pending", ""
				if s.Applied {
					state = "applied"
					at = s.AppliedAt.Format("2006-01-02 15:04:05")
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Version, s.Name, state, at)
			}
			return w.Flush()
		},
	})
	return cmd
}

// vitalFlags maps each score flag onto its Vitals field.
var vitalFlags = []struct {
	name  string
	usage string
	field func(*risk.Vitals) **float64
}{
	{"temperature", "Temperature in °C", func(v *risk.Vitals) **float64 { return &v.Temperature }},
	{"pulse", "Pulse in bpm", func(v *risk.Vitals) **float64 { return &v.Pulse }},
	{"systolic", "Systolic blood pressure", func(v *risk.Vitals) **float64 { return &v.SystolicBP }},
	{"diastolic", "Diastolic blood pressure", func(v *risk.Vitals) **float64 { return &v.DiastolicBP }},
	{"oxygen", "Oxygen saturation in %", func(v *risk.Vitals) **float64 { return &v.OxygenSaturation }},
	{"respiratory", "Respiratory rate per minute", func(v *risk.Vitals) **float64 { return &v.RespiratoryRate }},
}

func vitalsFromFlags(cmd *cobra.Command) (risk.Vitals, error) {
	var v risk.Vitals
	for _, f := range vitalFlags {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		val, err := cmd.Flags().GetFloat64(f.name)
		if err != nil {
			return v, err
		}
		*f.field(&v) = risk.Reading(val)
	}
	return v, nil
}

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score an observation, or rescore a stored visit entry",
		Example: `  carewatch-server score --symptoms fall,confusion --temperature 39 --pulse 110
  carewatch-server score --entry <visit-id> --agency <agency-id>`,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogPath, _ := cmd.Flags().GetString("catalog")
			catalog, err := symptom.Load(catalogPath)
			if err != nil {
				return err
			}

			entry, _ := cmd.Flags().GetString("entry")
			if entry != "" {
				return rescoreEntry(cmd, catalog, entry)
			}

			ids, _ := cmd.Flags().GetStringSlice("symptoms")
			vitals, err := vitalsFromFlags(cmd)
			if err != nil {
				return err
			}
			if err := vitals.Validate(); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), risk.Compute(catalog, ids, vitals))
		},
	}
	cmd.Flags().StringSlice("symptoms", nil, "Comma separated symptom ids")
	for _, f := range vitalFlags {
		cmd.Flags().Float64(f.name, 0, f.usage)
	}
	cmd.Flags().String("catalog", os.Getenv("SYMPTOM_CATALOG_PATH"), "Symptom catalog YAML file (default: built-in)")
	cmd.Flags().String("entry", "", "Visit entry id to rescore from the database")
	cmd.Flags().String("agency", "", "Agency that owns --entry")
	return cmd
}

func rescoreEntry(cmd *cobra.Command, catalog *symptom.Catalog, entry string) error {
	entryID, err := uuid.Parse(entry)
	if err != nil {
		return fmt.Errorf("invalid --entry: %w", err)
	}
	rawAgency, _ := cmd.Flags().GetString("agency")
	agencyID, err := uuid.Parse(rawAgency)
	if err != nil {
		return fmt.Errorf("--agency is required with --entry: %w", err)
	}

	ctx := context.Background()
	_, pool, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	svc := visit.NewService(visit.NewRepo(pool), catalog, nil, db.NewTransactor(pool))
	res, err := svc.Rescore(ctx, agencyID, entryID)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), res)
}

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog [file]",
		Short: "Print the symptom catalog, or validate a catalog file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			catalog, err := symptom.Load(path)
			if err != nil {
				return err
			}
			if check, _ := cmd.Flags().GetBool("check"); check {
				fmt.Fprintf(cmd.OutOrStdout(), "catalog %s ok: %d categories, %d symptoms\n",
					catalog.Version, len(catalog.Categories()), catalog.Len())
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"version":    catalog.Version,
				"categories": catalog.Categories(),
			})
		},
	}
	cmd.Flags().Bool("check", false, "Only validate the catalog and print a summary")
	return cmd
}

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage platform admins",
	}

	bootstrap := &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the first primary admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			name, _ := cmd.Flags().GetString("name")

			ctx := context.Background()
			_, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			activitySvc := activity.NewService(activity.NewRepo(pool))
			svc := admin.NewService(admin.NewRepo(pool), activitySvc, db.NewTransactor(pool))
			a, err := svc.Bootstrap(ctx, email, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created primary admin %s (%s). Use this id as the token subject.\n", a.ID, a.Email)
			return nil
		},
	}
	bootstrap.Flags().String("email", "", "Admin email")
	bootstrap.Flags().String("name", "", "Admin full name")
	bootstrap.MarkFlagRequired("email")
	bootstrap.MarkFlagRequired("name")
	cmd.AddCommand(bootstrap)
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
