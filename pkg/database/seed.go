package database

import (
	"healmymind_backend/internal/model"
	"healmymind_backend/internal/scoring/instruments"
	applog "healmymind_backend/pkg/logger"

	"go.uber.org/zap"
)

// InstrumentStore is the part of the test repository the seeder needs.
type InstrumentStore interface {
	CountByType(testType string) (int64, error)
	Create(t *model.Test) error
}

// SeedInstruments inserts every built-in instrument whose type has no test
// yet. Each instrument is compiled first so broken catalog data never lands
// in the database.
func SeedInstruments(store InstrumentStore) error {
	all, err := instruments.All()
	if err != nil {
		return err
	}

	for _, in := range all {
		if _, err := in.Compile(); err != nil {
			return err
		}

		count, err := store.CountByType(string(in.Type))
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		t := TestFromInstrument(in)
		if err := store.Create(t); err != nil {
			return err
		}
		applog.Log.Info("Seeded instrument", zap.String("type", string(in.Type)), zap.Uint("testId", t.ID))
	}
	return nil
}

// TestFromInstrument maps a catalog instrument onto database rows.
func TestFromInstrument(in *instruments.Instrument) *model.Test {
	t := &model.Test{
		Name:          in.Name,
		Description:   in.Description,
		TestType:      string(in.Type),
		Instructions:  in.Instructions,
		EstimatedTime: in.EstimatedTime,
		IsPublished:   true,
	}
	for i, text := range in.Questions {
		q := model.Question{Text: text, Order: i + 1}
		for j, p := range in.Scale {
			q.Options = append(q.Options, model.Option{Text: p.Text, Value: p.Value, Order: j + 1})
		}
		t.Questions = append(t.Questions, q)
	}
	for _, r := range in.Ranges {
		t.ScoringRanges = append(t.ScoringRanges, model.ScoringRange{
			MinScore:    r.Min,
			MaxScore:    r.Max,
			Severity:    string(r.Severity),
			Description: r.Description,
		})
	}
	return t
}
