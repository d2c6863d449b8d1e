package database

import (
	"errors"
	"testing"

	"healmymind_backend/internal/config"
	"healmymind_backend/internal/model"
	"healmymind_backend/internal/scoring"
	"healmymind_backend/internal/scoring/instruments"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestFromInstrumentCompiles(t *testing.T) {
	in, err := instruments.Load(scoring.PHQ9)
	require.NoError(t, err)

	row := TestFromInstrument(in)
	require.Len(t, row.Questions, 9)
	require.Len(t, row.ScoringRanges, 4)
	assert.Equal(t, "PHQ9", row.TestType)

	// give the rows ids the way the database would
	for i := range row.Questions {
		row.Questions[i].ID = uint(i + 10)
	}
	def, err := scoring.Compile(row.Draft())
	require.NoError(t, err)
	assert.Equal(t, 27, def.MaxScore())
}

func TestDSN(t *testing.T) {
	dsn := DSN(&config.DatabaseConfig{
		Host: "db", Port: 3306, User: "u", Password: "p", DBName: "hm", Charset: "utf8mb4", ParseTime: true,
	})
	assert.Equal(t, "u:p@tcp(db:3306)/hm?charset=utf8mb4&parseTime=true&loc=Local", dsn)
}

type memInstruments struct {
	rows    []*model.Test
	failOn  string
	lookups []string
}

func (m *memInstruments) CountByType(testType string) (int64, error) {
	m.lookups = append(m.lookups, testType)
	var n int64
	for _, t := range m.rows {
		if t.TestType == testType {
			n++
		}
	}
	return n, nil
}

func (m *memInstruments) Create(t *model.Test) error {
	if t.TestType == m.failOn {
		return errors.New("insert failed")
	}
	m.rows = append(m.rows, t)
	return nil
}

func TestSeedInstrumentsSkipsExistingTypes(t *testing.T) {
	store := &memInstruments{rows: []*model.Test{{TestType: "GAD7", Name: "custom"}}}
	require.NoError(t, SeedInstruments(store))

	assert.ElementsMatch(t, []string{"GAD7", "PCL5", "PHQ9"}, store.lookups)
	var types []string
	for _, row := range store.rows {
		types = append(types, row.TestType)
	}
	assert.ElementsMatch(t, []string{"GAD7", "PCL5", "PHQ9"}, types)

	// a second run finds every type and inserts nothing
	require.NoError(t, SeedInstruments(store))
	assert.Len(t, store.rows, 3)
}

func TestSeedInstrumentsStopsOnInsertError(t *testing.T) {
	store := &memInstruments{failOn: "PCL5"}
	assert.EqualError(t, SeedInstruments(store), "insert failed")
}
