package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"healmymind_backend/internal/scoring"
	"healmymind_backend/internal/scoring/instruments"

	"github.com/spf13/cobra"
)

type scoreFlags struct {
	instrument string
	file       string
	answers    string
}

func newScoreCmd() *cobra.Command {
	f := &scoreFlags{}
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Validate and score a set of answers",
		Long: `Validate and score answers against a built-in instrument or a definition file.
Answers are a JSON object mapping question id to option value, e.g. {"1": 0, "2": 3}.
Question ids are 1-based in definition order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd.InOrStdin(), cmd.OutOrStdout(), f)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.instrument, "instrument", "", "Built-in instrument: PHQ9, GAD7 or PCL5")
	flags.StringVar(&f.file, "file", "", "Definition file to score against instead of a built-in")
	flags.StringVar(&f.answers, "answers", "-", "Answers JSON file, - for stdin")
	return cmd
}

func runScore(stdin io.Reader, out io.Writer, f *scoreFlags) error {
	var (
		in  *instruments.Instrument
		err error
	)
	switch {
	case f.file != "":
		in, err = instruments.ParseFile(f.file)
	case f.instrument != "":
		in, err = instruments.Load(scoring.InstrumentType(f.instrument))
	default:
		return exitError(2, "one of --instrument or --file is required")
	}
	if err != nil {
		return exitError(2, "%v", err)
	}

	def, err := in.Compile()
	if err != nil {
		return exitError(1, "%v", err)
	}

	r := stdin
	if f.answers != "-" {
		file, err := os.Open(f.answers)
		if err != nil {
			return exitError(2, "%v", err)
		}
		defer file.Close()
		r = file
	}
	var answers scoring.Answers
	if err := json.NewDecoder(r).Decode(&answers); err != nil {
		return exitError(2, "decode answers: %v", err)
	}

	result, err := scoring.Evaluate(answers, def)
	if err != nil {
		var verr *scoring.ValidationError
		if errors.As(err, &verr) {
			for _, v := range verr.Violations {
				fmt.Fprintln(out, v.String())
			}
		}
		return exitError(3, "%v", err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Instrument scoring.InstrumentType `json:"instrument"`
		scoring.Result
	}{def.Type(), result})
}
