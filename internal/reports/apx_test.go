package reports

import (
	"testing"

	"aeroops/internal/models"

	"github.com/stretchr/testify/assert"
)

func asset(status models.AssetStatus, planned *int) models.GridAsset {
	return models.GridAsset{Status: status, PlannedCount: planned}
}

func intPtr(n int) *int { return &n }

func TestAPXEmpty(t *testing.T) {
	assert.Zero(t, APX(nil))
	assert.Zero(t, APX([]models.GridAsset{}))
}

func TestAPXUnweighted(t *testing.T) {
	assets := []models.GridAsset{
		asset(models.AssetComplete, nil),
		asset(models.AssetNotStarted, nil),
	}
	// (1.0 + 0) / 2 = 50%
	assert.InDelta(t, 50.0, APX(assets), 0.01)
}

func TestAPXWeightedByPlannedCount(t *testing.T) {
	assets := []models.GridAsset{
		asset(models.AssetComplete, intPtr(30)),
		asset(models.AssetNotStarted, intPtr(10)),
	}
	// (1.0*30 + 0*10) / 40 = 75%
	assert.InDelta(t, 75.0, APX(assets), 0.01)
}

func TestAPXMixedStatuses(t *testing.T) {
	assets := []models.GridAsset{
		asset(models.AssetComplete, nil),
		asset(models.AssetNeedsReview, nil),
		asset(models.AssetInProgress, nil),
		asset(models.AssetBlocked, nil),
	}
	// (1.0 + 0.75 + 0.5 + 0) / 4 = 56.25 -> 56.3 after rounding
	assert.InDelta(t, 56.3, APX(assets), 0.01)
}

func TestAPXAllComplete(t *testing.T) {
	assets := []models.GridAsset{
		asset(models.AssetComplete, intPtr(5)),
		asset(models.AssetComplete, nil),
	}
	assert.InDelta(t, 100.0, APX(assets), 0.01)
}
