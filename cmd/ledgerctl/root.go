package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"lesson-ledger/internal/config"
	"lesson-ledger/internal/form"
	"lesson-ledger/internal/report"
	"lesson-ledger/internal/storage"
)

type storeOpener func(ctx context.Context) (*storage.GormStore, error)

func newRootCmd() *cobra.Command {
	sc, err := config.ParseStore()
	if err != nil {
		sc = config.StoreConfig{DBDriver: config.DriverSQLite, DatabaseDSN: "database.db"}
	}
	driver := string(sc.DBDriver)
	dsn := sc.DatabaseDSN

	root := &cobra.Command{
		Use:          "ledgerctl",
		Short:        "Maintenance commands for the lesson records database",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&driver, "driver", driver, "record database driver: sqlite or postgres")
	root.PersistentFlags().StringVar(&dsn, "dsn", dsn, "sqlite file path or postgres connection string")

	open := func(ctx context.Context) (*storage.GormStore, error) {
		s, err := storage.Open(driver, dsn)
		if err != nil {
			return nil, err
		}
		if err := s.InitSchema(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	}

	root.AddCommand(newMigrateCmd(open), newListCmd(open), newReportCmd(open), newClearCmd(open))
	return root
}

func newMigrateCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the records table if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}

func newListCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every record in insertion order",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			recs, err := s.List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tCHAT\tSTUDENT\tEMPLOYEE\tNEXT LESSON\tHOURS\tRATE\tTOTAL")
			for _, r := range recs {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
					r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					r.ChatID, r.StudentName, r.EmployeeName, r.NextLesson,
					r.Hours, form.FormatAmount(r.Rate), form.FormatAmount(r.Total))
			}
			return w.Flush()
		},
	}
}

func newReportCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the all-time report grouped by employee",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			text, err := report.NewEngine(s).Build(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func newClearCmd(open storeOpener) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all records",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete all records without --yes")
			}
			s, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			n, err := s.DeleteAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d record(s)\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion of all records")
	return cmd
}
