package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"rngbench/adapters/battery"
	"rngbench/adapters/excel"
	"rngbench/adapters/prng"
	"rngbench/adapters/report"
	"rngbench/app"
	"rngbench/domain/run"
	"rngbench/domain/sample"
	"rngbench/ports"

	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	var (
		nBits        int
		seed         string
		bitsPerValue int
		bitOrder     string
		params       map[string]string
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "generate [generator]",
		Short: "Print a bit stream from one generator",
		Long: `Generate n bits from a named generator and print them as a 0/1 string.

Example: rngbench generate pcg32 -n 128 --seed 42,54
         rngbench generate lcg -n 64 --param a=1103515245 --param c=12345 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			s, err := resolveSeed(seed, c.Config.Runner.DefaultSeed)
			if err != nil {
				return err
			}
			p, err := parseGeneratorParams(params)
			if err != nil {
				return err
			}
			order, err := prng.ParseBitOrder(bitOrder)
			if err != nil {
				return err
			}

			gen, err := c.Generators.Generate(cmd.Context(), ports.GenerationRequest{
				Generator:    args[0],
				Seed:         s,
				NBits:        nBits,
				Params:       p,
				BitsPerValue: bitsPerValue,
				LSBFirst:     order == prng.LSBFirst,
			})
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(map[string]interface{}{
					"generator": gen.Generator,
					"seed":      s.String(),
					"bits":      gen.Bits,
					"time":      gen.Elapsed.Seconds(),
				})
			}
			fmt.Println(gen.Bits.String())
			fmt.Fprintf(os.Stderr, "%d bits from %s in %v (mean %.4f)\n", gen.Bits.Len(), gen.Generator, gen.Elapsed, gen.Bits.Mean())
			return nil
		},
	}

	cmd.Flags().IntVarP(&nBits, "bits", "n", 1000, "Number of bits to generate")
	cmd.Flags().StringVar(&seed, "seed", "", "Seed: an integer or a tuple such as 42,54 (default: generator profile)")
	cmd.Flags().IntVar(&bitsPerValue, "bits-per-value", 0, "Bits taken from each generated value (default: generator width)")
	cmd.Flags().StringVar(&bitOrder, "bit-order", "msb", "Bit order within each value: msb|lsb")
	cmd.Flags().StringToStringVar(&params, "param", nil, "Generator parameter overrides, e.g. --param m=2147483647")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a bit string")
	return cmd
}

func newTestCmd() *cobra.Command {
	var (
		samples    int
		seed       string
		params     map[string]string
		testParams []string
		keepBits   bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "test [generator] [test]",
		Short: "Run one statistical test against one generator",
		Long: `Generate a sample, score it with one battery test and store the result.

Test names accept short forms (monobit, runs, rank, ...).

Example: rngbench test splitmix64 runs --samples 100000 --seed 7
         rngbench test lcg block_frequency --test-param m=256`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			s, err := resolveSeed(seed, c.Config.Runner.DefaultSeed)
			if err != nil {
				return err
			}
			p, err := parseGeneratorParams(params)
			if err != nil {
				return err
			}
			tp, err := battery.ParseParams(testParams)
			if err != nil {
				return err
			}
			if samples == 0 {
				samples = c.Config.Runner.DefaultSamples
			}

			result, err := c.TestService.RunTest(cmd.Context(), app.RunTestRequest{
				Generator:    args[0],
				TestName:     args[1],
				SamplesCount: samples,
				Seed:         s,
				Parameters:   p,
				TestParams:   tp,
				KeepBits:     keepBits,
			})
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(result)
			}
			printResult(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&samples, "samples", 0, "Number of bits to test (default: RNG_DEFAULT_SAMPLES)")
	cmd.Flags().StringVar(&seed, "seed", "", "Seed: an integer or a tuple such as 42,54")
	cmd.Flags().StringToStringVar(&params, "param", nil, "Generator parameter overrides")
	cmd.Flags().StringArrayVar(&testParams, "test-param", nil, "Test parameter as key=value (block_size, m, template, L, Q)")
	cmd.Flags().BoolVar(&keepBits, "keep-bits", false, "Store the generated bits with the result")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the stored result as JSON")
	return cmd
}

func newBatteryCmd() *cobra.Command {
	var (
		samples int
		seed    string
		legacy  bool
	)

	cmd := &cobra.Command{
		Use:   "battery [generator]",
		Short: "Run every battery test against one generator",
		Long: `Run the whole battery against one generator with a shared seed and
sample size, storing one result per test.

Example: rngbench battery pcg32 --samples 1000000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			s, err := resolveSeed(seed, c.Config.Runner.DefaultSeed)
			if err != nil {
				return err
			}
			if samples == 0 {
				samples = c.Config.Runner.DefaultSamples
			}

			fmt.Printf("Running battery against %s (%d bits, seed %s)\n\n", args[0], samples, s)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TEST\tSTATUS\tSCORE\tTIME (s)")

			passed, total := 0, 0
			for _, info := range c.Battery.Tests() {
				if info.Legacy && !legacy {
					continue
				}
				result, err := c.TestService.RunTest(cmd.Context(), app.RunTestRequest{
					Generator:    args[0],
					TestName:     info.Name,
					SamplesCount: samples,
					Seed:         s,
				})
				if err != nil {
					return err
				}
				total++
				if result.Passed {
					passed++
				}
				fmt.Fprintf(w, "%s\t%s\t%.4f\t%.3f\n", result.TestName, result.Status, result.Score, result.ExecutionTime)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("\n%d/%d tests passed\n", passed, total)
			return nil
		},
	}

	cmd.Flags().IntVar(&samples, "samples", 0, "Number of bits per test (default: RNG_DEFAULT_SAMPLES)")
	cmd.Flags().StringVar(&seed, "seed", "", "Seed: an integer or a tuple such as 42,54")
	cmd.Flags().BoolVar(&legacy, "legacy", false, "Include the legacy float checks")
	return cmd
}

func newBenchCmd() *cobra.Command {
	var (
		samples int
		seed    string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "bench [generators...]",
		Short: "Time generators producing the same number of bits",
		Long: `Generate the same number of bits from each generator (all when none are
named) and report elapsed time, mean bit and throughput.

Example: rngbench bench lcg pcg32 splitmix64 --samples 1000000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			s, err := resolveSeed(seed, "")
			if err != nil {
				return err
			}
			if samples == 0 {
				samples = c.Config.Runner.DefaultSamples
			}

			rep, err := c.BenchmarkService.Benchmark(cmd.Context(), app.BenchmarkRequest{
				Generators: args,
				Samples:    samples,
				Seed:       s,
			})
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(rep)
			}
			fmt.Print(report.BenchmarkMarkdown(rep))
			return nil
		},
	}

	cmd.Flags().IntVar(&samples, "samples", 0, "Bits per generator (default: RNG_DEFAULT_SAMPLES)")
	cmd.Flags().StringVar(&seed, "seed", "", "Seed shared by every generator (default: each generator's profile)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func newCompareCmd() *cobra.Command {
	var (
		generators []string
		tests      []string
		samples    int
		seed       string
		testParams []string
		xlsxPath   string
		htmlPath   string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Build a generator x test comparison matrix",
		Long: `Run every selected test against every selected generator in parallel and
print the matrix. Empty selections mean everything.

Example: rngbench compare --generators lcg,pcg32 --tests monobit,runs --samples 100000 --xlsx matrix.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			s, err := resolveSeed(seed, "")
			if err != nil {
				return err
			}
			tp, err := battery.ParseParams(testParams)
			if err != nil {
				return err
			}
			if samples == 0 {
				samples = c.Config.Runner.DefaultSamples
			}

			comparison, err := c.BenchmarkService.Compare(cmd.Context(), app.CompareRequest{
				Generators: generators,
				Tests:      tests,
				Samples:    samples,
				Seed:       s,
				TestParams: tp,
			})
			if err != nil {
				return err
			}

			if xlsxPath != "" {
				if err := excel.NewComparisonWriter(excel.DefaultExportConfig()).SaveAs(xlsxPath, comparison); err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "Workbook written to %s\n", xlsxPath)
			}
			if htmlPath != "" {
				if err := os.WriteFile(htmlPath, report.ComparisonHTML(comparison), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", htmlPath, err)
				}
				fmt.Fprintf(os.Stderr, "HTML report written to %s\n", htmlPath)
			}

			if asJSON {
				return printJSON(comparison)
			}
			fmt.Print(report.ComparisonMarkdown(comparison))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&generators, "generators", nil, "Generators to compare (default: all)")
	cmd.Flags().StringSliceVar(&tests, "tests", nil, "Tests to run (default: all)")
	cmd.Flags().IntVar(&samples, "samples", 0, "Bits per generator (default: RNG_DEFAULT_SAMPLES)")
	cmd.Flags().StringVar(&seed, "seed", "", "Seed shared by every generator (default: each generator's profile)")
	cmd.Flags().StringArrayVar(&testParams, "test-param", nil, "Test parameter as key=value, applied to every test")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write the matrix to this xlsx file")
	cmd.Flags().StringVar(&htmlPath, "html", "", "Also write an HTML report to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the comparison as JSON")
	return cmd
}

func newListCmd() *cobra.Command {
	var (
		generator string
		test      string
		limit     int
	)

	cmd := &cobra.Command{
		Use:       "list [generators|tests|results]",
		Short:     "List generators, tests or stored results",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"generators", "tests", "results"},
		RunE: func(cmd *cobra.Command, args []string) error {
			what := "generators"
			if len(args) == 1 {
				what = args[0]
			}

			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			switch what {
			case "generators":
				fmt.Fprintln(w, "NAME\tKIND\tWIDTH\tDEFAULT SEED\tDESCRIPTION")
				for _, g := range c.Generators.Generators() {
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", g.Name, g.Kind, g.DefaultWidth, g.Seed, g.Description)
				}
			case "tests":
				fmt.Fprintln(w, "NAME\tMIN BITS\tLEGACY\tDESCRIPTION")
				for _, t := range c.Battery.Tests() {
					fmt.Fprintf(w, "%s\t%d\t%v\t%s\n", t.Name, t.MinBits, t.Legacy, t.Description)
				}
			case "results":
				results, err := c.TestService.ListResults(cmd.Context(), run.ResultFilter{
					Generator: generator,
					TestName:  test,
					Limit:     limit,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(w, "ID\tGENERATOR\tTEST\tSAMPLES\tSTATUS\tSCORE\tCREATED")
				for _, r := range results {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%.4f\t%s\n", r.ID, r.Generator, r.TestName,
						r.SamplesCount, r.Status, r.Score, r.CreatedAt.Time().Format("2006-01-02 15:04:05"))
				}
			default:
				return fmt.Errorf("unknown listing %q (want generators, tests or results)", what)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&generator, "generator", "", "Only results from this generator")
	cmd.Flags().StringVar(&test, "test", "", "Only results of this test")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum results to show")
	return cmd
}

func printResult(r *run.TestResult) {
	fmt.Printf("Result %s\n", r.ID)
	fmt.Printf("Generator: %s (seed %s, %d bits)\n", r.Generator, r.Seed, r.SamplesCount)
	fmt.Printf("Test:      %s\n", r.TestName)
	fmt.Printf("Status:    %s (passed=%v, score=%.6f)\n", r.Status, r.Passed, r.Score)
	if r.Error != "" {
		fmt.Printf("Error:     %s\n", r.Error)
	}
	for _, name := range r.Statistics.Names() {
		v, _ := r.Statistics.Get(name)
		fmt.Printf("  %-20s %v\n", name, v)
	}
	fmt.Printf("Time:      %.4fs (generation %.4fs)\n", r.ExecutionTime, r.GenerationTime)
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// resolveSeed parses a --seed flag, falling back to def
func resolveSeed(flag, def string) (sample.Seed, error) {
	if strings.TrimSpace(flag) == "" {
		flag = def
	}
	return sample.ParseSeed(flag)
}

func parseGeneratorParams(raw map[string]string) (map[string]uint64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]uint64, len(raw))
	for k, v := range raw {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parameter %s=%q must be a non-negative integer", k, v)
		}
		out[k] = n
	}
	return out, nil
}
