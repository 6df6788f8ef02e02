package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-celebrations-backend/internal/auth"
)

func newDispatchCmd(load loader) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Run the daily dispatch once and print the summary",
		Long: "Runs the same job the scheduler fires. Records already delivered " +
			"for the date are skipped, so repeating the command is safe.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load("dispatch")
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			defer a.Close()
			if err != nil {
				return err
			}

			day := a.celebrations.Today(time.Now())
			if date != "" {
				if day, err = a.celebrations.ParseDay(date); err != nil {
					return err
				}
			}
			sum, err := a.scheduler.RunNow(cmd.Context(), day)
			if err != nil {
				return err
			}
			return printJSON(cmd, sum)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "calendar date to dispatch (YYYY-MM-DD, business timezone); defaults to today")
	return cmd
}

func newImportCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import a roster CSV (name,type,date[,year,spouse])",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load("import")
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			defer a.Close()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			res, err := a.roster.ImportCSV(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
}

func newTokenCmd(load loader) *cobra.Command {
	var subject, role string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load("token")
			if err != nil {
				return err
			}
			tm := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
			if !tm.Enabled() {
				return errors.New("JWT_SECRET is not set")
			}
			if role != auth.RoleUser && role != auth.RoleAdmin {
				return fmt.Errorf("role must be %s or %s", auth.RoleUser, auth.RoleAdmin)
			}
			tok, err := tm.Generate(subject, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "sub", "", "token subject")
	cmd.Flags().StringVar(&role, "role", auth.RoleUser, "user or admin")
	_ = cmd.MarkFlagRequired("sub")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
