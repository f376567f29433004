package grid

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"aeroops/internal/models"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

// ImportResult summarizes one inventory import.
type ImportResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// ImportInventory provisions a site's asset inventory from an XLSX sheet.
// Expected header row: asset_key, asset_type, industry, planned_count
// (order free, matched by name). Rows land at version 1 / not_started;
// keys already present on the site are skipped, never overwritten:
// import provisions, it does not mutate.
func (s *Service) ImportInventory(ctx context.Context, siteID uint, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q has no data rows", sheet)
	}

	col := map[string]int{}
	for i, name := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	keyIdx, ok := col["asset_key"]
	if !ok {
		return nil, fmt.Errorf("sheet %q is missing the asset_key column", sheet)
	}

	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	// anything beyond the recognized columns becomes opaque display meta
	known := map[string]bool{"asset_key": true, "asset_type": true, "industry": true, "planned_count": true}
	metaFor := func(row []string) datatypes.JSONMap {
		meta := datatypes.JSONMap{}
		for name, i := range col {
			if known[name] || name == "" || i >= len(row) {
				continue
			}
			if v := strings.TrimSpace(row[i]); v != "" {
				meta[name] = v
			}
		}
		if len(meta) == 0 {
			return nil
		}
		return meta
	}

	res := &ImportResult{}
	for _, row := range rows[1:] {
		if keyIdx >= len(row) || strings.TrimSpace(row[keyIdx]) == "" {
			res.Skipped++
			continue
		}

		asset := models.GridAsset{
			SiteID:    siteID,
			AssetKey:  strings.TrimSpace(row[keyIdx]),
			AssetType: cell(row, "asset_type"),
			Industry:  cell(row, "industry"),
			Status:    models.AssetNotStarted,
			Version:   1,
			Meta:      metaFor(row),
		}
		if planned := cell(row, "planned_count"); planned != "" {
			n, err := strconv.Atoi(planned)
			if err != nil || n < 0 {
				res.Skipped++
				continue
			}
			asset.PlannedCount = &n
		}

		out := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "site_id"}, {Name: "asset_key"}},
			DoNothing: true,
		}).Create(&asset)
		if out.Error != nil {
			return nil, out.Error
		}
		if out.RowsAffected == 0 {
			res.Skipped++
		} else {
			res.Created++
		}
	}

	s.log.Info("inventory import finished",
		zap.Uint("site_id", siteID),
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped))
	return res, nil
}
