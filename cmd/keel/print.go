package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"keel/internal/diag"
	"keel/internal/diagfmt"
	"keel/internal/irtext"
	"keel/internal/ossa"
	"keel/internal/source"
)

var printCmd = &cobra.Command{
	Use:   "print [flags] <file.kir>",
	Short: "Reprint textual IR in canonical form",
	Long:  `Parse a .kir file and print it back through the canonical printer, renumbering values and normalizing layout`,
	Args:  cobra.ExactArgs(1),
	RunE:  runPrint,
}

func init() {
	printCmd.Flags().Bool("validate", true, "run structural validation before printing")
}

func runPrint(cmd *cobra.Command, args []string) error {
	path := args[0]

	validate, err := cmd.Flags().GetBool("validate")
	if err != nil {
		return fmt.Errorf("failed to get validate flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stderr))

	fileSet := source.NewFileSetWithBase(filepath.Dir(path))
	fileID, err := fileSet.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	bag := diag.NewBag(maxDiagnostics)
	mod := ossa.NewModule()
	ok := irtext.ParseFile(mod, fileSet.Get(fileID), diag.BagReporter{Bag: bag})

	if ok && validate {
		for _, fn := range mod.Funcs {
			if err := ossa.Validate(mod, fn); err != nil {
				name := mod.Strings.MustLookup(fn.Name)
				bag.Add(diag.NewError(diag.ValInfo, fn.Span,
					fmt.Sprintf("@%s is structurally invalid: %v", name, err)))
			}
		}
	}

	if bag.HasErrors() {
		bag.Sort()
		diagfmt.Pretty(os.Stderr, bag, fileSet, diagfmt.PrettyOpts{
			Color:    useColor,
			Context:  1,
			PathMode: diagfmt.PathModeAuto,
		})
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("")
	}

	ossa.NewPrinter(mod, os.Stdout).PrintModule()
	return nil
}
