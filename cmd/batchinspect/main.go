// batchinspect builds a record from a YAML plan and reports the shapes
// produced by reshaping, indexing and iterating it.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/robert-malhotra/go-batched/batched"
	"github.com/robert-malhotra/go-batched/internal/plan"
)

var (
	// Global flags
	verbose bool

	// Logger
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "batchinspect",
	Short: "Inspect batched records described by YAML plans",
	Long: `batchinspect builds a record of n-dimensional arrays from a YAML plan,
broadcasts its fields to a common batch shape and reports the shapes produced
by the plan's reshape, flatten, index and broadcast operations.

Run "batchinspect example" for a plan to start from.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run <plan.yaml>",
	Short: "Build the plan's record and apply its operations",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlan,
}

var indexCmd = &cobra.Command{
	Use:   "index <plan.yaml> <expr>",
	Short: "Index the plan's record with an expression such as \"0, ..., 1:3\"",
	Args:  cobra.ExactArgs(2),
	RunE:  runIndex,
}

var iterCmd = &cobra.Command{
	Use:   "iter <plan.yaml>",
	Short: "Iterate the plan's record along its leading batch dimension",
	Args:  cobra.ExactArgs(1),
	RunE:  runIter,
}

var walkCmd = &cobra.Command{
	Use:   "walk <plan.yaml>",
	Short: "List every present field of the plan's record with its shape",
	Args:  cobra.ExactArgs(1),
	RunE:  runWalk,
}

var exampleCmd = &cobra.Command{
	Use:   "example [output.yaml]",
	Short: "Print the example plan, or write it to a file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExample,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(iterCmd)
	rootCmd.AddCommand(walkCmd)
	rootCmd.AddCommand(exampleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildRecord loads the plan at path and builds its record.
func buildRecord(path string) (*plan.Plan, *batched.Record, error) {
	p, err := plan.Load(path)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Plan loaded",
		zap.String("path", path),
		zap.Int("schemas", len(p.Schemas)),
		zap.Int("ops", len(p.Ops)))

	r, err := p.Build(logger)
	if err != nil {
		return nil, nil, err
	}
	return p, r, nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	p, r, err := buildRecord(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "input: %s\n", r)

	stages, err := p.Apply(r)
	for _, st := range stages {
		fmt.Fprintf(out, "%s: %s\n", st.Op, st.Record)
	}
	return err
}

func runIndex(cmd *cobra.Command, args []string) error {
	_, r, err := buildRecord(args[0])
	if err != nil {
		return err
	}

	got, err := r.IndexString(args[1])
	if err != nil {
		return err
	}
	logger.Debug("Record indexed",
		zap.String("expr", args[1]),
		zap.Stringer("from", r.Shape()),
		zap.Stringer("to", got.Shape()))

	fmt.Fprintln(cmd.OutOrStdout(), got)
	return nil
}

func runIter(cmd *cobra.Command, args []string) error {
	_, r, err := buildRecord(args[0])
	if err != nil {
		return err
	}

	rows, err := r.All()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for i, row := range rows {
		fmt.Fprintf(out, "[%d] %s\n", i, row)
	}
	return nil
}

func runWalk(cmd *cobra.Command, args []string) error {
	_, r, err := buildRecord(args[0])
	if err != nil {
		return err
	}
	return printFields(cmd.OutOrStdout(), r)
}

func printFields(out io.Writer, r *batched.Record) error {
	fmt.Fprintf(out, "%s %v\n", r.Schema().Name(), r.Shape())
	return batched.Walk(r, func(path string, v batched.Value) error {
		switch o := v.(type) {
		case *batched.Record:
			fmt.Fprintf(out, "  %s: record %s %v\n", path, o.Schema().Name(), o.Shape())
		case batched.Tensor:
			fmt.Fprintf(out, "  %s: %s (contiguous=%t)\n", path, o, o.IsContiguous())
		}
		return nil
	})
}

func runExample(cmd *cobra.Command, args []string) error {
	p := plan.DefaultPlan()
	if len(args) == 1 {
		if err := p.Save(args[0]); err != nil {
			return err
		}
		logger.Info("Example plan written", zap.String("path", args[0]))
		return nil
	}

	data, err := p.Marshal()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
