// Command pycore is a small inspection CLI over an embedded VM,
// grounded on cmd/hivectl's cobra command tree: a root command with
// global --json/--verbose/--quiet flags, each subcommand a plain RunE
// function, and shared printInfo/printJSON output helpers so every
// subcommand's text and JSON paths stay consistent with each other.
//
// pycore carries no lexer/parser/compiler/bytecode interpreter (out of
// scope, spec.md §1 Non-goals): there is no Python source file to point
// it at. Its subcommands instead inspect and exercise a freshly booted
// VM directly through pkg/capi, the same surface a host embedding the
// core would use.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/embedpy/pycore/vm"
)

var (
	jsonOut     bool
	verbose     bool
	quiet       bool
	configPath  string
	stackSize   int
	gcThreshold int64
)

var rootCmd = &cobra.Command{
	Use:     "pycore",
	Short:   "Inspect and exercise an embedded Python-core runtime",
	Version: "0.1.0",
	Long: `pycore boots a VM (value cells, managed heap, type registry,
attribute stores, dispatch layer) and inspects or exercises it.

It does not parse or run Python source — that layer is out of scope
for this core (see spec.md §1 Non-goals). Use "pycore exec" to run a
fixed demonstration workload through the dispatch layer instead.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "load vm.Options from a TOML file")
	rootCmd.PersistentFlags().IntVar(&stackSize, "stack-size", 0, "override the VM value-stack size")
	rootCmd.PersistentFlags().Int64Var(&gcThreshold, "gc-threshold", 0, "set vm.Options.GCThreshold (bytes); the heap still starts at its default threshold")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildOptions resolves a vm.Options from --config plus any flag
// overrides, the same "file defaults, flags override" layering
// cmd/hivectl's --limits preset flags use.
func buildOptions() (vm.Options, error) {
	opts := vm.NewOptions()
	if configPath != "" {
		loaded, err := vm.LoadOptions(configPath)
		if err != nil {
			return vm.Options{}, fmt.Errorf("loading --config: %w", err)
		}
		opts = loaded
	}
	if stackSize > 0 {
		opts.StackSize = stackSize
	}
	if gcThreshold > 0 {
		opts.GCThreshold = gcThreshold
	}
	return opts, nil
}

func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
