package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tav/pkg/matrix"
	"github.com/matzehuels/tav/pkg/meta"
	"github.com/matzehuels/tav/pkg/resolve"
)

// resolvedPackage is the JSON form of one resolved package.
type resolvedPackage struct {
	Name            string    `json:"name"`
	Ranges          []string  `json:"ranges,omitempty"`
	Static          []string  `json:"static,omitempty"`
	LatestRequested bool      `json:"latest_requested,omitempty"`
	Versions        []string  `json:"versions"`
	Latest          string    `json:"latest"`
	Published       time.Time `json:"published,omitzero"`
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		opts   runOpts
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "resolve [folders...]",
		Short: "Print the versions a run would test",
		Long: `Resolve loads .tav.yml from each folder and queries the registry for the
versions every declared range selects, without installing or running anything.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.applyConfig(cmd)
			if err != nil {
				return err
			}
			pkgs, err := c.resolveFolders(cmd.Context(), folders(args, cfg), opts)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(pkgs)
			}
			printResolved(pkgs)
			return nil
		},
	}

	opts.registerCommon(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the versions as JSON")

	return cmd
}

func (c *CLI) resolveFolders(ctx context.Context, dirs []string, opts runOpts) ([]resolvedPackage, error) {
	mode, err := resolve.ParseMode(opts.versions)
	if err != nil {
		return nil, err
	}
	decls, err := matrix.LoadDeclarations(dirs)
	if err != nil {
		return nil, err
	}
	specs := meta.Build(decls)

	reg, closeCache, err := c.newRegistry(ctx, opts.registry, opts.registryURL, opts.cacheFlags)
	if err != nil {
		return nil, err
	}
	defer closeCache()

	prog := newProgress(c.Logger)
	total := specs.Len()
	spin := newSpinner(ctx, os.Stderr, fmt.Sprintf("Resolving %d packages from %s...", total, reg.Name()))
	spin.Start()
	var done atomic.Int64
	resolved, err := resolve.Resolve(ctx, specs, reg, resolve.Options{
		Concurrency: opts.resolveLimit,
		Mode:        mode,
		Logger:      c.Logger,
		OnResolved: func(string, []string) {
			spin.SetMessage("Resolving %s packages %d/%d", reg.Name(), done.Add(1), total)
		},
	})
	if err != nil {
		spin.StopWithError("Resolution failed")
		return nil, err
	}
	spin.Stop()
	prog.done(fmt.Sprintf("Resolved %d packages", resolved.Len()))

	out := make([]resolvedPackage, 0, resolved.Len())
	for _, name := range resolved.Names() {
		v, _ := resolved.Get(name)
		p := resolvedPackage{Name: name, Versions: v.Versions, Latest: v.Latest, Published: v.Published}
		if spec, ok := specs.Get(name); ok {
			p.Ranges, p.Static, p.LatestRequested = spec.Ranges, spec.Static, spec.Latest
		}
		out = append(out, p)
	}
	return out, nil
}

func printResolved(pkgs []resolvedPackage) {
	fmt.Println(renderResolved(pkgs))
}

// renderResolved lays out one row per package: the declared specifiers, the
// selected versions and when the newest of them was released.
func renderResolved(pkgs []resolvedPackage) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("PACKAGE", "DECLARED", "VERSIONS", "RELEASED").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return StyleTitle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, p := range pkgs {
		declared := append(slices.Clone(p.Ranges), p.Static...)
		if p.LatestRequested {
			declared = append(declared, "latest")
		}
		released := "-"
		if !p.Published.IsZero() {
			released = p.Latest + " " + p.Published.Format(time.DateOnly)
		}
		t.Row(
			StyleValue.Render(p.Name),
			StyleDim.Render(strings.Join(declared, " | ")),
			StyleNumber.Render(strings.Join(p.Versions, " ")),
			StyleDim.Render(released),
		)
	}
	return t.Render()
}
