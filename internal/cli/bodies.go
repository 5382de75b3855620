package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/planets/internal/body"
)

var (
	bodiesWithIDs bool
	bodyKernel    string
	bodyJSON      bool
	bodyTimeout   time.Duration
)

// bodiesCmd represents the bodies command
var bodiesCmd = &cobra.Command{
	Use:   "bodies",
	Short: "List the known body names",
	Long:  `List every body of the NAIF registry in natural order.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if !bodiesWithIDs {
			for _, name := range body.Names() {
				fmt.Fprintln(out, name)
			}
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, name := range body.Names() {
			id, _ := body.IDFor(name)
			fmt.Fprintf(tw, "%d\t%s\n", id, name)
		}
		return tw.Flush()
	},
}

// bodyCmd represents the body command
var bodyCmd = &cobra.Command{
	Use:   "body <name>",
	Short: "Show descriptive attributes of a body",
	Long: `Body prints the attribute table of one of the planets, the Moon, Titan,
Europa, Ganymede, Triton or Bennu: gravity, solar constant, surface
pressure, albedo, orbit and rotation, temperatures and, where known,
thermophysical properties.

The mean radius R comes from the kernel (kernel.source or --kernel).

Example:
  planets body Mars
  planets body luna --json`,
	Args: cobra.ExactArgs(1),
	RunE: runBody,
}

func init() {
	rootCmd.AddCommand(bodiesCmd)
	rootCmd.AddCommand(bodyCmd)

	bodiesCmd.Flags().BoolVar(&bodiesWithIDs, "ids", false, "print NAIF IDs next to names")

	bodyCmd.Flags().StringVar(&bodyKernel, "kernel", "", "kernel path or URL for the mean radius (default from kernel.source)")
	bodyCmd.Flags().BoolVar(&bodyJSON, "json", false, "print JSON instead of a table")
	bodyCmd.Flags().DurationVar(&bodyTimeout, "timeout", 2*time.Minute, "overall timeout")
}

func runBody(cmd *cobra.Command, args []string) error {
	name := args[0]
	attrs, ok := body.AttributesFor(name)
	if !ok {
		printSuggestions(cmd.ErrOrStderr(), body.Suggest(name, 3))
		return fmt.Errorf("no attributes for %q (known: %v)", name, body.AttributeNames())
	}

	e, err := setup(nil)
	if err != nil {
		return err
	}
	defer e.close()

	fields := attrs.Fields()
	if attrs.FixedRadiusKm == nil {
		src := e.cfg.Kernel.Source
		if bodyKernel != "" {
			src = bodyKernel
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), bodyTimeout)
		defer cancel()

		if km, ok := meanRadius(ctx, e, src, attrs.Name); ok {
			r := body.Field{Key: "R", Value: km, Unit: "km", Description: "Mean radius"}
			fields = append([]body.Field{r}, fields...)
		}
	}

	out := cmd.OutOrStdout()
	if bodyJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Name   string       `json:"name"`
			Fields []body.Field `json:"fields"`
		}{attrs.Name, fields})
	}

	fmt.Fprintln(out, attrs.Name)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, f := range fields {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", f.Key, strconv.FormatFloat(f.Value, 'g', 8, 64), f.Unit, f.Description)
	}
	return tw.Flush()
}

// meanRadius is best effort: an unreachable kernel only drops R
func meanRadius(ctx context.Context, e *env, src, name string) (float64, bool) {
	resolver, err := e.pipeline.Resolver(ctx, src)
	if err != nil {
		e.logger.Sugar().Warnf("mean radius unavailable: %v", err)
		return 0, false
	}
	km, ok, err := resolver.RadiusKm(name, string(body.Mean))
	if err != nil || !ok {
		return 0, false
	}
	return km, true
}
