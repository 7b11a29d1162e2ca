// Package excel writes the post-session report: every closed trial record
// plus the calibration validation quality, one sheet each. The report is a
// lab artifact for offline analysis; the engine never reads it.
package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"vrtask/app"
	"vrtask/domain/calibration"
	"vrtask/domain/trial"
	"vrtask/internal/errors"
)

const (
	sheetTrials      = "Trials"
	sheetCalibration = "Calibration"
)

// WriteReport renders the session into an .xlsx file at path.
func WriteReport(path string, session *app.Session, quality []calibration.WaypointQuality) error {
	if session == nil {
		return errors.InvalidInput("no session to report")
	}
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetTrials)
	writeTrialSheet(f, session)

	if _, err := f.NewSheet(sheetCalibration); err != nil {
		return errors.Wrap(err, "failed to create calibration sheet")
	}
	writeCalibrationSheet(f, quality)

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "failed to save report to %s", path)
	}
	return nil
}

func writeTrialSheet(f *excelize.File, session *app.Session) {
	headers := []string{
		"phase", "mode", "field", "ordinal", "direction", "coherence",
		"coherence_source", "response_direction", "confidence", "correct",
		"latency_ms", "started_at", "ended_at",
	}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheetTrials, cell, h)
	}

	row := 2
	for _, rec := range append(append(trial.History{}, session.TrainingHistory...), session.MainHistory...) {
		values := []interface{}{
			string(rec.Condition.Phase),
			string(rec.Condition.Mode),
			string(rec.Field),
			rec.Ordinal,
			rec.Direction,
			rec.Coherence,
			string(rec.CoherenceSource),
			rec.Response.Direction,
			string(rec.Response.Confidence),
			rec.Correct,
			float64(rec.Latency.Milliseconds()),
			rec.StartedAt,
			rec.EndedAt,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheetTrials, cell, v)
		}
		row++
	}
}

func writeCalibrationSheet(f *excelize.File, quality []calibration.WaypointQuality) {
	headers := []string{"waypoint", "samples", "mean_error", "std_error"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheetCalibration, cell, h)
	}
	for i, q := range quality {
		row := i + 2
		f.SetCellValue(sheetCalibration, fmt.Sprintf("A%d", row), q.Name)
		f.SetCellValue(sheetCalibration, fmt.Sprintf("B%d", row), q.Samples)
		f.SetCellValue(sheetCalibration, fmt.Sprintf("C%d", row), q.MeanError)
		f.SetCellValue(sheetCalibration, fmt.Sprintf("D%d", row), q.StdError)
	}
}
