package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aeroops/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrSiteNotFound = errors.New("site not found")

const dashboardCacheTTL = 30 * time.Second

type Dashboard struct {
	SiteID   uint   `json:"siteId"`
	SiteName string `json:"siteName"`

	AssetTotal      int              `json:"assetTotal"`
	AssetsByStatus  map[string]int   `json:"assetsByStatus"`
	PlannedTotal    int              `json:"plannedTotal"`
	CompletedTotal  int              `json:"completedTotal"`
	CompletionRatio float64          `json:"completionRatio"`
	APX             float64          `json:"apx"`
	Deployments     map[string]int64 `json:"deploymentsByStatus"`

	GeneratedAt time.Time `json:"generatedAt"`
}

// Service builds per-site reporting views. The Redis cache is optional:
// a nil client just recomputes every call.
type Service struct {
	db    *gorm.DB
	cache *redis.Client
	log   *zap.Logger
}

func NewService(db *gorm.DB, cache *redis.Client, log *zap.Logger) *Service {
	return &Service{db: db, cache: cache, log: log}
}

func dashboardKey(siteID uint) string {
	return fmt.Sprintf("aeroops:dashboard:site:%d", siteID)
}

func (s *Service) SiteDashboard(ctx context.Context, siteID uint) (*Dashboard, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, dashboardKey(siteID)).Bytes(); err == nil {
			var d Dashboard
			if json.Unmarshal(raw, &d) == nil {
				return &d, nil
			}
		}
	}

	d, err := s.buildDashboard(ctx, siteID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(d); err == nil {
			if err := s.cache.Set(ctx, dashboardKey(siteID), raw, dashboardCacheTTL).Err(); err != nil {
				s.log.Warn("dashboard cache write failed", zap.Error(err))
			}
		}
	}
	return d, nil
}

func (s *Service) buildDashboard(ctx context.Context, siteID uint) (*Dashboard, error) {
	var site models.Site
	if err := s.db.WithContext(ctx).First(&site, siteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSiteNotFound
		}
		return nil, err
	}

	var assets []models.GridAsset
	if err := s.db.WithContext(ctx).
		Where("site_id = ?", siteID).Find(&assets).Error; err != nil {
		return nil, err
	}

	d := &Dashboard{
		SiteID:         site.ID,
		SiteName:       site.Name,
		AssetTotal:     len(assets),
		AssetsByStatus: map[string]int{},
		Deployments:    map[string]int64{},
		APX:            APX(assets),
		GeneratedAt:    time.Now().UTC(),
	}

	completedAssets := 0
	for _, a := range assets {
		d.AssetsByStatus[string(a.Status)]++
		d.CompletedTotal += a.CompletedCount
		if a.PlannedCount != nil {
			d.PlannedTotal += *a.PlannedCount
		}
		if a.Status == models.AssetComplete {
			completedAssets++
		}
	}
	switch {
	case d.PlannedTotal > 0:
		d.CompletionRatio = float64(d.CompletedTotal) / float64(d.PlannedTotal)
	case d.AssetTotal > 0:
		d.CompletionRatio = float64(completedAssets) / float64(d.AssetTotal)
	}

	type statusCount struct {
		Status string
		N      int64
	}
	var rows []statusCount
	if err := s.db.WithContext(ctx).Model(&models.Deployment{}).
		Select("status as status, count(*) as n").
		Where("site_id = ?", siteID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		d.Deployments[r.Status] = r.N
	}

	return d, nil
}
