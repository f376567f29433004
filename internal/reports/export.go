package reports

import (
	"bytes"
	"fmt"

	"aeroops/internal/models"

	"github.com/xuri/excelize/v2"
)

var exportHeader = []any{
	"Asset Key", "Type", "Industry", "Status",
	"Completed", "Planned", "Assigned To", "Version", "Last Updated",
}

// ExportGridXLSX renders a site's asset grid as a spreadsheet for offline
// review and client hand-off.
func ExportGridXLSX(siteName string, assets []models.GridAsset) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Asset Grid"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	if err := f.SetCellValue(sheet, "A1", fmt.Sprintf("Site: %s", siteName)); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A2", &exportHeader); err != nil {
		return nil, err
	}

	for i, a := range assets {
		planned := ""
		if a.PlannedCount != nil {
			planned = fmt.Sprintf("%d", *a.PlannedCount)
		}
		lastUpdated := ""
		if a.LastUpdatedAt != nil {
			lastUpdated = a.LastUpdatedAt.Format("2006-01-02 15:04")
		}
		row := []any{
			a.AssetKey, a.AssetType, a.Industry, string(a.Status),
			a.CompletedCount, planned, a.AssignedToName, a.Version, lastUpdated,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	return f.WriteToBuffer()
}
