package report

import (
	"fmt"
	"io"
	"strconv"

	"f1league-app/internal/model"
	"f1league-app/internal/standings"

	"github.com/xuri/excelize/v2"
)

const (
	SheetDrivers      = "Drivers"
	SheetConstructors = "Constructors"
	SheetPlacements   = "Placements"
)

// WriteStandingsXLSX writes the driver, constructor and placement tables as
// one workbook.
func WriteStandingsXLSX(w io.Writer, table standings.Table, placements []model.PlacementStats) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetDrivers); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetConstructors, SheetPlacements} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	driverHeader := []any{"Pos", "Driver", "Player", "Group", "Points"}
	for _, key := range model.AwardKeys {
		driverHeader = append(driverHeader, key.Label())
	}
	driverRows := make([][]any, len(table.Drivers))
	for i, d := range table.Drivers {
		row := []any{i + 1, d.CompetitorName, d.PlayerName, d.Group, d.Points}
		for _, key := range model.AwardKeys {
			row = append(row, d.Awards.Get(key))
		}
		driverRows[i] = row
	}
	if err := writeSheet(f, SheetDrivers, bold, driverHeader, driverRows); err != nil {
		return err
	}

	constructorRows := make([][]any, len(table.Constructors))
	for i, c := range table.Constructors {
		constructorRows[i] = []any{i + 1, c.Group, c.Points}
	}
	if err := writeSheet(f, SheetConstructors, bold, []any{"Pos", "Group", "Points"}, constructorRows); err != nil {
		return err
	}

	placementHeader := []any{"Driver", "Group"}
	for p := 1; p <= model.ResultSize; p++ {
		placementHeader = append(placementHeader, "P"+strconv.Itoa(p))
	}
	placementHeader = append(placementHeader, "Top 10", "Avg", "Points")
	placementRows := make([][]any, len(placements))
	for i, s := range placements {
		row := []any{s.CompetitorName, s.Group}
		for _, n := range s.Positions {
			row = append(row, n)
		}
		avg := "-"
		if v, ok := s.AveragePosition(); ok {
			avg = strconv.FormatFloat(v, 'f', 2, 64)
		}
		row = append(row, s.Top10, avg, s.Points)
		placementRows[i] = row
	}
	if err := writeSheet(f, SheetPlacements, bold, placementHeader, placementRows); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headerStyle int, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("%s header style: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
