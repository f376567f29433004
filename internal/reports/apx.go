package reports

import (
	"math"

	"aeroops/internal/models"
)

// Axis Performance Index: per-status progress weights averaged over a
// site's assets, weighted by planned count (assets without a planned
// count weigh 1), scaled to 0..100.
var apxWeights = map[models.AssetStatus]float64{
	models.AssetComplete:    1.0,
	models.AssetNeedsReview: 0.75,
	models.AssetInProgress:  0.5,
	models.AssetBlocked:     0,
	models.AssetNotStarted:  0,
}

func APX(assets []models.GridAsset) float64 {
	if len(assets) == 0 {
		return 0
	}

	var weightedSum, totalWeight float64
	for _, a := range assets {
		weight := 1.0
		if a.PlannedCount != nil && *a.PlannedCount > 0 {
			weight = float64(*a.PlannedCount)
		}
		weightedSum += apxWeights[a.Status] * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return 0
	}

	return math.Round(weightedSum/totalWeight*1000) / 10
}
