package main

import (
	"github.com/spf13/cobra"

	"github.com/embedpy/pycore/pkg/capi"
	"github.com/embedpy/pycore/typeregistry"
)

func init() {
	rootCmd.AddCommand(newTypesCmd())
}

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List every type registered on a freshly booted VM",
		Long: `The types command boots a VM and lists its type registry in
canonical order (spec.md §4.3): every built-in type's name, base, and
module, confirming the fixed id order ("object=1, type, int, float,
bool, str, ...") a host application's own code would rely on.

Example:
  pycore types
  pycore types --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypes()
		},
	}
}

type typeInfo struct {
	Name   string `json:"name"`
	Module string `json:"module"`
	Base   string `json:"base"`
}

func runTypes() error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}
	ctx, err := capi.NewWithOptions(opts)
	if err != nil {
		return err
	}

	var out []typeInfo
	ctx.VM().Types.EachType(func(t *typeregistry.Type) {
		base := ""
		if t.Base != nil {
			base = t.Base.Name
		}
		out = append(out, typeInfo{Name: t.Name, Module: t.Module, Base: base})
	})

	if jsonOut {
		return printJSON(out)
	}

	printInfo("%-24s %-10s %s\n", "TYPE", "MODULE", "BASE")
	for _, ti := range out {
		mod := ti.Module
		if mod == "" {
			mod = "(builtin)"
		}
		printInfo("%-24s %-10s %s\n", ti.Name, mod, ti.Base)
	}
	return nil
}
