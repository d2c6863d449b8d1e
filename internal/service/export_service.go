package service

import (
	"errors"
	"fmt"
	"io"

	"healmymind_backend/internal/util"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const exportSheet = "Results"

var exportHeader = []interface{}{"Result ID", "User ID", "Score", "Severity", "Started At", "Completed At"}

type ExportService struct {
	TestRepo   TestStore
	ResultRepo ResultStore
}

func NewExportService(tests TestStore, results ResultStore) *ExportService {
	return &ExportService{TestRepo: tests, ResultRepo: results}
}

// ExportResults writes every result of the test as an XLSX workbook and
// returns a suggested file name.
func (s *ExportService) ExportResults(testID uint, w io.Writer) (string, error) {
	t, err := s.TestRepo.FindByID(testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", util.ErrTestNotFound
		}
		return "", err
	}

	results, err := s.ResultRepo.ListByTest(testID)
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return "", err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return "", err
	}
	for i, r := range results {
		started := ""
		if r.StartedAt != nil {
			started = r.StartedAt.Format(util.TimeFormat)
		}
		row := []interface{}{r.ID, r.UserID, r.Score, r.Severity, started, r.CompletedAt.Format(util.TimeFormat)}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return "", err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_results_%d.xlsx", t.TestType, t.ID), nil
}
