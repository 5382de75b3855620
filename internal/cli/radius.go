package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/planets/internal/body"
)

var (
	radiusKind    string
	radiusKernel  string
	radiusTimeout time.Duration
)

// radiusCmd represents the radius command
var radiusCmd = &cobra.Command{
	Use:   "radius <name>",
	Short: "Look up a body radius in kilometers",
	Long: `Radius resolves a body name against the kernel's BODYnnn_RADII entries and
prints the equatorial, polar or mean radius in kilometers.

Names are matched ignoring case, then by substring; "moon", "luna" and
"sun" are accepted as aliases.

Example:
  planets radius Earth
  planets radius mars --kind polar
  planets radius Ganymede --kind mean --kernel pck00011.tpc`,
	Args: cobra.ExactArgs(1),
	RunE: runRadius,
}

// nameCmd represents the name command
var nameCmd = &cobra.Command{
	Use:   "name <naif-id>",
	Short: "Print the body name of a NAIF ID",
	Long: `Name maps a NAIF integer ID to its canonical body name. Barycenters
without their own entry print as "<Planet> Barycenter"; unknown IDs print
as "Unknown (<id>)".

Example:
  planets name 399
  planets name 500`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil {
			return fmt.Errorf("invalid NAIF ID %q: %w", args[0], err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), body.NameFor(id))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(radiusCmd)
	rootCmd.AddCommand(nameCmd)

	radiusCmd.Flags().StringVarP(&radiusKind, "kind", "k", "equatorial", "radius kind: equatorial, polar or mean")
	radiusCmd.Flags().StringVar(&radiusKernel, "kernel", "", "kernel path or URL (default from kernel.source)")
	radiusCmd.Flags().DurationVar(&radiusTimeout, "timeout", 2*time.Minute, "overall timeout")
}

func runRadius(cmd *cobra.Command, args []string) error {
	name := args[0]

	// reject a bad kind before any download
	kind, err := body.ParseRadiusKind(radiusKind)
	if err != nil {
		return err
	}

	e, err := setup(nil)
	if err != nil {
		return err
	}
	defer e.close()

	src := e.cfg.Kernel.Source
	if radiusKernel != "" {
		src = radiusKernel
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), radiusTimeout)
	defer cancel()

	resolver, err := e.pipeline.Resolver(ctx, src)
	if err != nil {
		return err
	}

	km, ok, err := resolver.RadiusKm(name, string(kind))
	if err != nil {
		return err
	}
	if !ok {
		printSuggestions(cmd.ErrOrStderr(), body.Suggest(name, 3))
		return fmt.Errorf("no radii for %q in %s", name, src)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", strconv.FormatFloat(km, 'f', -1, 64))
	return nil
}

func printSuggestions(w io.Writer, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(w, "Did you mean: %s?\n", strings.Join(names, ", "))
}
