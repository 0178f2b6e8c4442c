package db

import (
	"fmt"

	"github.com/shopcart-labs/recommendations/internal/models"
	"gorm.io/gorm"
)

// sqliteRecommendationsDDL keeps AUTOINCREMENT on the key so deleted ids are never reissued.
var sqliteRecommendationsDDL = []string{
	`CREATE TABLE IF NOT EXISTS recommendations (
		id integer PRIMARY KEY AUTOINCREMENT,
		name varchar(63) NOT NULL,
		original_product_id integer NOT NULL,
		recommendation_product_name varchar(63) NOT NULL,
		recommendation_product_id integer NOT NULL,
		reason varchar(16) NOT NULL DEFAULT 'OTHER',
		activated boolean NOT NULL DEFAULT 0,
		created_at datetime,
		updated_at datetime
	)`,
	`CREATE INDEX IF NOT EXISTS idx_recommendations_original_product_id ON recommendations (original_product_id)`,
	`CREATE INDEX IF NOT EXISTS idx_recommendations_recommendation_product_id ON recommendations (recommendation_product_id)`,
}

// Migrate creates or updates the schema. It is safe to call repeatedly.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	if IsSQLite(conn) {
		for _, stmt := range sqliteRecommendationsDDL {
			if errExec := conn.Exec(stmt).Error; errExec != nil {
				return fmt.Errorf("db: migrate sqlite: %w", errExec)
			}
		}
		return nil
	}
	if errMigrate := conn.AutoMigrate(&models.Recommendation{}); errMigrate != nil {
		return fmt.Errorf("db: auto migrate: %w", errMigrate)
	}
	return nil
}
