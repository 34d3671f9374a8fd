package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"churnetl/internal/churn"
	"churnetl/internal/stage"
	"churnetl/internal/stage/load"
	"churnetl/internal/stage/transform"
	"churnetl/internal/stage/validate"
	"churnetl/internal/storage"
	pgddl "churnetl/internal/storage/postgres/ddl"
)

func (a *app) transformCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transform",
		Short: "Clean the raw export and write the staged CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := transform.Run(cmd.Context(), a.cfg, a.log)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "staged %d rows to %s\n", res.Rows, res.Path)
			return nil
		},
	}
}

func (a *app) loadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Insert the staged CSV into the destination table in batches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
}

func (a *app) load(cmd *cobra.Command) error {
	sum, err := load.Run(cmd.Context(), a.cfg, a.log)
	if err != nil {
		return a.stopped(err)
	}
	fmt.Fprintf(a.out, "loaded %d rows into %s (%d of %d batches failed)\n",
		sum.Inserted, sum.Table, sum.Failed, len(sum.Batches))
	if a.cfg.Strict && sum.Partial() {
		return fmt.Errorf("partial load: %w", sum.Err())
	}
	return nil
}

func (a *app) validateCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Compare the destination table with the staged CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.validate(cmd, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func (a *app) validate(cmd *cobra.Command, asJSON bool) error {
	rep, err := validate.Run(cmd.Context(), a.cfg, a.log)
	if err != nil && !errors.Is(err, validate.ErrMismatch) {
		return a.stopped(err)
	}
	if asJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		if perr := enc.Encode(rep); perr != nil {
			return perr
		}
	} else if perr := rep.Print(a.out); perr != nil {
		return perr
	}
	return err
}

func (a *app) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run transform, load and validate in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := transform.Run(cmd.Context(), a.cfg, a.log)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "staged %d rows to %s\n", res.Rows, res.Path)
			if err := a.load(cmd); err != nil {
				return err
			}
			return a.validate(cmd, false)
		},
	}
}

func (a *app) ddlCmd() *cobra.Command {
	var (
		kind  string
		apply bool
	)
	cmd := &cobra.Command{
		Use:   "ddl",
		Short: "Print (or apply) the CREATE TABLE statement for the destination table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if kind == "" {
				kind = a.cfg.Storage.Kind
			}
			def := churn.TableDef(a.cfg.Table)
			stmt, err := storage.BuildDDL(kind, def)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, stmt)
			switch kind {
			case "rest", "postgres":
				fmt.Fprintln(a.out, pgddl.ReloadSchemaSQL)
			}
			if !apply {
				return nil
			}
			if kind != a.cfg.Storage.Kind {
				return fmt.Errorf("--apply needs --kind to match storage kind %q", a.cfg.Storage.Kind)
			}
			repo, err := stage.OpenRepository(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer repo.Close()
			if err := storage.EnsureTable(cmd.Context(), kind, repo, def); err != nil {
				return err
			}
			a.log.Info("ddl: table ensured", "table", a.cfg.Table, "kind", kind)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "DDL dialect (defaults to storage kind)")
	cmd.Flags().BoolVar(&apply, "apply", false, "execute the statement against the configured storage")
	return cmd
}

// stopped reports a missing stage input on stdout so the graceful exit is
// visible, and passes every error through unchanged.
func (a *app) stopped(err error) error {
	if errors.Is(err, stage.ErrInputNotFound) {
		fmt.Fprintf(a.out, "nothing to do: %v\n", err)
	}
	return err
}
