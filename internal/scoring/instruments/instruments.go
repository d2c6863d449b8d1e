// Package instruments holds the built-in screening instrument catalog.
package instruments

import (
	"embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"healmymind_backend/internal/scoring"

	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Instrument is the YAML authoring format. Every question shares Scale.
type Instrument struct {
	Name          string                 `yaml:"name"`
	Type          scoring.InstrumentType `yaml:"type"`
	Description   string                 `yaml:"description"`
	Instructions  string                 `yaml:"instructions"`
	EstimatedTime int                    `yaml:"estimated_time"`
	Scale         []ScalePoint           `yaml:"scale"`
	Questions     []string               `yaml:"questions"`
	Ranges        []scoring.ScoringRange `yaml:"ranges"`
}

type ScalePoint struct {
	Text  string `yaml:"text"`
	Value int    `yaml:"value"`
}

// Draft expands the instrument into a scoring draft. Question ids and
// positions are 1-based in file order.
func (in *Instrument) Draft() scoring.Draft {
	d := scoring.Draft{
		Name:   in.Name,
		Type:   in.Type,
		Ranges: append([]scoring.ScoringRange(nil), in.Ranges...),
	}
	for i, text := range in.Questions {
		q := scoring.Question{ID: uint(i + 1), Text: text, Position: i + 1}
		for j, p := range in.Scale {
			q.Options = append(q.Options, scoring.Option{Text: p.Text, Value: p.Value, Position: j + 1})
		}
		d.Questions = append(d.Questions, q)
	}
	return d
}

// Compile expands and compiles the instrument.
func (in *Instrument) Compile() (*scoring.Definition, error) {
	return scoring.Compile(in.Draft())
}

// Parse decodes one instrument document.
func Parse(r io.Reader) (*Instrument, error) {
	var in Instrument
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("instruments.Parse: %w", err)
	}
	return &in, nil
}

// ParseFile reads an instrument from disk.
func ParseFile(path string) (*Instrument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	in, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}

// Load returns the built-in instrument for t.
func Load(t scoring.InstrumentType) (*Instrument, error) {
	name := strings.ToLower(string(t)) + ".yaml"
	f, err := builtinFS.Open("builtin/" + name)
	if err != nil {
		return nil, fmt.Errorf("instruments.Load: unknown instrument %q: %w", t, err)
	}
	defer f.Close()
	return Parse(f)
}

// All loads every built-in instrument ordered by type.
func All() ([]*Instrument, error) {
	names, err := Names()
	if err != nil {
		return nil, err
	}
	out := make([]*Instrument, 0, len(names))
	for _, n := range names {
		in, err := Load(n)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

// Names lists the built-in instrument types.
func Names() ([]scoring.InstrumentType, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, err
	}
	var names []scoring.InstrumentType
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || !strings.HasSuffix(n, ".yaml") {
			continue
		}
		names = append(names, scoring.InstrumentType(strings.ToUpper(strings.TrimSuffix(n, ".yaml"))))
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names, nil
}
