package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sghaida/stubgen/config"
	"github.com/sghaida/stubgen/stub"
	"github.com/sghaida/stubgen/stub/goproject"
)

// contractRow is one line of the list output.
type contractRow struct {
	Name       string
	File       string
	Visibility stub.Visibility
	Eligible   bool
	Ignored    bool
}

func (a *app) listCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "list [patterns...]",
		Short: "List the interfaces of the project and whether they get a stub",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := generateFlags{dir: dir}.apply(*a.cfg, args)
			rows, err := listContracts(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			renderContracts(a.stdout, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory the patterns are resolved in (analysis.dir)")
	return cmd
}

// listContracts reports every contract declared in the project in document order.
func listContracts(ctx context.Context, cfg config.Config) ([]contractRow, error) {
	project, err := goproject.Load(ctx, goproject.Options{
		Dir:      cfg.Analysis.Dir,
		Patterns: cfg.Analysis.Patterns,
		Tests:    cfg.Analysis.Tests,
	})
	if err != nil {
		return nil, err
	}

	inclusion := cfg.Inclusion()
	var rows []contractRow
	for _, doc := range project.Documents() {
		tree, err := project.SyntaxTree(ctx, doc)
		if err != nil {
			return nil, &stub.DocumentError{Path: doc.Path, Err: err}
		}
		model, err := project.SemanticModel(ctx, doc)
		if err != nil {
			return nil, &stub.DocumentError{Path: doc.Path, Err: err}
		}
		for _, decl := range tree.Declarations() {
			name, err := model.ResolveDeclaredType(decl)
			if err != nil {
				name = decl.Name()
			}
			rows = append(rows, contractRow{
				Name:       name,
				File:       filepath.Base(doc.Path),
				Visibility: decl.Visibility(),
				Eligible:   stub.Eligible(decl, inclusion),
				Ignored:    inclusion.Ignored(name),
			})
		}
	}
	return rows, nil
}

func renderContracts(w io.Writer, rows []contractRow) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Contract", "File", "Visibility", "Eligible", "Ignored"})

	stubbed := 0
	for _, r := range rows {
		if r.Eligible && !r.Ignored {
			stubbed++
		}
		tbl.AppendRow(table.Row{r.Name, r.File, r.Visibility.String(), strconv.FormatBool(r.Eligible), strconv.FormatBool(r.Ignored)})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d", len(rows)), "", "", fmt.Sprintf("Stubbed: %d", stubbed), ""})
	tbl.Render()
}
