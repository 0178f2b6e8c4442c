// Package store persists recommendations through gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopcart-labs/recommendations/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no recommendation has the requested id.
	ErrNotFound = errors.New("recommendation not found")
	// ErrAlreadyActivated is returned by Activate for a recommendation that is already active.
	ErrAlreadyActivated = errors.New("recommendation already activated")
)

// Recommendations reads and writes the recommendations table.
type Recommendations struct {
	db *gorm.DB
}

// NewRecommendations returns a store bound to conn.
func NewRecommendations(conn *gorm.DB) *Recommendations {
	return &Recommendations{db: conn}
}

// Create inserts rec and assigns its generated ID.
func (s *Recommendations) Create(ctx context.Context, rec *models.Recommendation) error {
	if rec == nil {
		return models.NewValidationError("create called with nil recommendation")
	}
	rec.ID = 0
	rec.Reason = rec.Reason.OrDefault()
	if errCreate := s.db.WithContext(ctx).Create(rec).Error; errCreate != nil {
		return fmt.Errorf("create recommendation: %w", errCreate)
	}
	return nil
}

// Update writes every mutable field of rec to the row with rec.ID.
func (s *Recommendations) Update(ctx context.Context, rec *models.Recommendation) error {
	if rec == nil || rec.ID == 0 {
		return models.NewValidationError("update called with empty ID")
	}
	rec.Reason = rec.Reason.OrDefault()
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).
		Model(&models.Recommendation{}).
		Where("id = ?", rec.ID).
		Updates(map[string]any{
			"name":                        rec.Name,
			"original_product_id":         rec.OriginalProductID,
			"recommendation_product_name": rec.RecommendationProductName,
			"recommendation_product_id":   rec.RecommendationProductID,
			"reason":                      rec.Reason,
			"activated":                   rec.Activated,
			"updated_at":                  now,
		})
	if res.Error != nil {
		return fmt.Errorf("update recommendation %d: %w", rec.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update recommendation %d: %w", rec.ID, ErrNotFound)
	}
	rec.UpdatedAt = now
	return nil
}

// Delete removes the recommendation with id.
func (s *Recommendations) Delete(ctx context.Context, id uint64) error {
	res := s.db.WithContext(ctx).Delete(&models.Recommendation{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete recommendation %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete recommendation %d: %w", id, ErrNotFound)
	}
	return nil
}

// Find returns the recommendation with id, or nil when none exists.
func (s *Recommendations) Find(ctx context.Context, id uint64) (*models.Recommendation, error) {
	var rec models.Recommendation
	errFind := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if errFind != nil {
		return nil, fmt.Errorf("find recommendation %d: %w", id, errFind)
	}
	return &rec, nil
}

// FindOrFail is Find but reports a missing row as ErrNotFound.
func (s *Recommendations) FindOrFail(ctx context.Context, id uint64) (*models.Recommendation, error) {
	rec, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("recommendation %d: %w", id, ErrNotFound)
	}
	return rec, nil
}

// All lists every recommendation.
func (s *Recommendations) All(ctx context.Context) ([]models.Recommendation, error) {
	return s.list(ctx, "all", nil)
}

// FindByName lists recommendations whose name equals name.
func (s *Recommendations) FindByName(ctx context.Context, name string) ([]models.Recommendation, error) {
	return s.list(ctx, "name", map[string]any{"name": name})
}

// FindByOriginalProductID lists recommendations for an original product.
func (s *Recommendations) FindByOriginalProductID(ctx context.Context, productID int64) ([]models.Recommendation, error) {
	return s.list(ctx, "original_product_id", map[string]any{"original_product_id": productID})
}

// FindByRecommendationProductID lists recommendations pointing at a recommended product.
func (s *Recommendations) FindByRecommendationProductID(ctx context.Context, productID int64) ([]models.Recommendation, error) {
	return s.list(ctx, "recommendation_product_id", map[string]any{"recommendation_product_id": productID})
}

// FindByRecommendationProductName lists recommendations by recommended product name.
func (s *Recommendations) FindByRecommendationProductName(ctx context.Context, name string) ([]models.Recommendation, error) {
	return s.list(ctx, "recommendation_product_name", map[string]any{"recommendation_product_name": name})
}

// FindByReason lists recommendations with reason. The zero reason matches OTHER.
func (s *Recommendations) FindByReason(ctx context.Context, reason models.Reason) ([]models.Recommendation, error) {
	return s.list(ctx, "reason", map[string]any{"reason": reason.OrDefault()})
}

// FindByActivated lists recommendations by activation state.
func (s *Recommendations) FindByActivated(ctx context.Context, activated bool) ([]models.Recommendation, error) {
	return s.list(ctx, "activated", map[string]any{"activated": activated})
}

func (s *Recommendations) list(ctx context.Context, label string, where map[string]any) ([]models.Recommendation, error) {
	q := s.db.WithContext(ctx).Model(&models.Recommendation{})
	if len(where) > 0 {
		q = q.Where(where)
	}
	rows := make([]models.Recommendation, 0)
	if errFind := q.Order("id ASC").Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("list recommendations by %s: %w", label, errFind)
	}
	return rows, nil
}

// Activate marks the recommendation active and returns the stored row.
// The flip is a single conditional update so concurrent callers see
// exactly one success; the rest get ErrAlreadyActivated.
func (s *Recommendations) Activate(ctx context.Context, id uint64) (*models.Recommendation, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Recommendation{}).
		Where("id = ? AND activated = ?", id, false).
		Updates(map[string]any{"activated": true, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return nil, fmt.Errorf("activate recommendation %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if errCount := s.db.WithContext(ctx).Model(&models.Recommendation{}).Where("id = ?", id).Count(&count).Error; errCount != nil {
			return nil, fmt.Errorf("activate recommendation %d: %w", id, errCount)
		}
		if count == 0 {
			return nil, fmt.Errorf("activate recommendation %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("activate recommendation %d: %w", id, ErrAlreadyActivated)
	}
	return s.FindOrFail(ctx, id)
}

// Ping checks that the database answers.
func (s *Recommendations) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if errPing := sqlDB.PingContext(ctx); errPing != nil {
		return fmt.Errorf("ping: %w", errPing)
	}
	return nil
}
