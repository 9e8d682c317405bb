package check

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Completions"

// exportTable lays out completions as one row each. Answer columns are the
// union of all answer keys, ordered so q_input_2 sorts before q_input_10.
func exportTable(list []Completion) ([]string, [][]any) {
	cols := answerColumns(list)
	header := append([]string{"id", "participant_id", "wrong_attempts", "completed_at"}, cols...)
	rows := make([][]any, 0, len(list))
	for _, c := range list {
		row := []any{c.ID, c.ParticipantID, c.WrongAttempts, c.CompletedAt.UTC().Format(time.RFC3339)}
		for _, col := range cols {
			row = append(row, c.Answers[col])
		}
		rows = append(rows, row)
	}
	return header, rows
}

func WriteCSV(w io.Writer, list []Completion) error {
	header, rows := exportTable(list)
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	rec := make([]string, len(header))
	for _, row := range rows {
		for i, v := range row {
			switch v := v.(type) {
			case int:
				rec[i] = strconv.Itoa(v)
			default:
				rec[i] = fmt.Sprint(v)
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a workbook with a single Completions sheet.
func WriteXLSX(w io.Writer, list []Completion) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}
	header, rows := exportTable(list)
	hdr := make([]any, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &hdr); err != nil {
		return err
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+2, err)
		}
	}
	return f.Write(w)
}

func answerColumns(list []Completion) []string {
	seen := map[string]bool{}
	var cols []string
	for _, c := range list {
		for k := range c.Answers {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Slice(cols, func(i, j int) bool {
		if len(cols[i]) != len(cols[j]) {
			return len(cols[i]) < len(cols[j])
		}
		return cols[i] < cols[j]
	})
	return cols
}
