// Command voxinfo prints the vox chain's control parameters and the fixed
// latency of each pitch shifter variant.
//
// Usage:
//
//	voxinfo [flags] [parameter-name ...]
//
// Without arguments it prints every parameter followed by the latency table.
//
// Examples:
//
//	voxinfo
//	voxinfo pitch out_bits
//	voxinfo -list
//	voxinfo -latency
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/ALH477/DeMoD-Vox/dsp/core"
	"github.com/ALH477/DeMoD-Vox/dsp/effects/pitch"
	"github.com/ALH477/DeMoD-Vox/dsp/param"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("voxinfo", flag.ContinueOnError)
	fs.SetOutput(stderr)

	list := fs.Bool("list", false, "list parameter names")
	latencyOnly := fs.Bool("latency", false, "only print the latency table")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "Usage: voxinfo [flags] [parameter-name ...]\n\n")
		_, _ = fmt.Fprintf(stderr, "Prints vox chain parameters and pitch shifter latency.\n\n")
		_, _ = fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *list {
		for _, sp := range param.Specs() {
			if _, err := fmt.Fprintln(stdout, sp.Name); err != nil {
				return err
			}
		}

		return nil
	}

	if *latencyOnly {
		return printLatency(stdout)
	}

	specs, err := resolveSpecs(fs.Args())
	if err != nil {
		return err
	}

	if err := printParams(stdout, specs); err != nil {
		return err
	}

	if len(fs.Args()) > 0 {
		return nil
	}

	if _, err := fmt.Fprintln(stdout); err != nil {
		return err
	}

	return printLatency(stdout)
}

func resolveSpecs(names []string) ([]param.Spec, error) {
	if len(names) == 0 {
		return param.Specs(), nil
	}

	specs := make([]param.Spec, 0, len(names))

	for _, name := range names {
		id, err := param.Lookup(strings.ToLower(strings.TrimSpace(name)))
		if err != nil {
			return nil, fmt.Errorf("%w (use -list to see available)", err)
		}

		specs = append(specs, id.Spec())
	}

	return specs, nil
}

func printParams(w io.Writer, specs []param.Spec) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintf(tw, "Parameter\tUnit\tMin\tMax\tDefault\tResolution\n"); err != nil {
		return fmt.Errorf("failed to write output header: %w", err)
	}

	if _, err := fmt.Fprintf(tw, "---------\t----\t---\t---\t-------\t----------\n"); err != nil {
		return fmt.Errorf("failed to write output header: %w", err)
	}

	for _, sp := range specs {
		unit := sp.Unit
		if unit == "" {
			unit = "-"
		}

		if _, err := fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%g\t%s\n",
			sp.Name, unit, sp.Min, sp.Max, sp.Default, resolution(sp)); err != nil {
			return fmt.Errorf("failed to write output row: %w", err)
		}
	}

	return tw.Flush()
}

func resolution(sp param.Spec) string {
	switch {
	case len(sp.Choices) > 0:
		parts := make([]string, len(sp.Choices))
		for i, c := range sp.Choices {
			parts[i] = strconv.FormatFloat(c, 'g', -1, 64)
		}

		return "{" + strings.Join(parts, ",") + "}"
	case sp.Step > 0:
		return "step " + strconv.FormatFloat(sp.Step, 'g', -1, 64)
	default:
		return "continuous"
	}
}

func printLatency(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintf(tw, "Shifter\tLatency [samples]\tLatency [ms]\n"); err != nil {
		return fmt.Errorf("failed to write output header: %w", err)
	}

	if _, err := fmt.Fprintf(tw, "-------\t-----------------\t------------\n"); err != nil {
		return fmt.Errorf("failed to write output header: %w", err)
	}

	for _, v := range []pitch.Variant{pitch.Granular, pitch.Spectral} {
		s, err := pitch.New(v, core.LockedSampleRate)
		if err != nil {
			return err
		}

		ms := float64(s.Latency()) / core.LockedSampleRate * 1000
		if _, err := fmt.Fprintf(tw, "%s\t%d\t%.3f\n", v, s.Latency(), ms); err != nil {
			return fmt.Errorf("failed to write output row: %w", err)
		}
	}

	return tw.Flush()
}
