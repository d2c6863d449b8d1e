package main

import (
	"errors"
	"fmt"
	"io"

	"healmymind_backend/internal/scoring"
	"healmymind_backend/internal/scoring/instruments"
	"healmymind_backend/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [file.yaml...]",
		Short: "Compile instrument definitions and report every defect",
		Long:  "Compile each definition file. Without arguments the built-in instruments are checked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.OutOrStdout(), args)
		},
	}
}

func runCheck(out io.Writer, paths []string) error {
	type source struct {
		label string
		load  func() (*instruments.Instrument, error)
	}

	var sources []source
	if len(paths) == 0 {
		names, err := instruments.Names()
		if err != nil {
			return err
		}
		for _, n := range names {
			n := n
			sources = append(sources, source{label: string(n), load: func() (*instruments.Instrument, error) { return instruments.Load(n) }})
		}
	}
	for _, p := range paths {
		p := p
		sources = append(sources, source{label: p, load: func() (*instruments.Instrument, error) { return instruments.ParseFile(p) }})
	}

	failed := 0
	for _, src := range sources {
		logger.Log.Debug("Checking definition", zap.String("source", src.label))
		in, err := src.load()
		if err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s\n  %v\n", src.label, err)
			continue
		}

		def, err := in.Compile()
		if err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s\n", src.label)
			var derr *scoring.DefinitionError
			if errors.As(err, &derr) {
				for _, p := range derr.Problems() {
					fmt.Fprintf(out, "  %s\n", p)
				}
			} else {
				fmt.Fprintf(out, "  %v\n", err)
			}
			continue
		}
		fmt.Fprintf(out, "ok   %s (%s, %d questions, score %d-%d)\n",
			src.label, def.Type(), len(def.QuestionIDs()), def.MinScore(), def.MaxScore())
	}

	if failed > 0 {
		return exitError(1, "%d of %d definitions failed", failed, len(sources))
	}
	return nil
}
