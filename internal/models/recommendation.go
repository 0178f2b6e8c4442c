package models

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
	"unicode/utf8"
)

// MaxNameLength bounds both product name columns.
const MaxNameLength = 63

// Recommendation links an original product to a recommended product.
type Recommendation struct {
	ID                        uint64 `gorm:"primaryKey;autoIncrement"`                  // Primary key, zero until persisted.
	Name                      string `gorm:"type:varchar(63);not null"`                 // Original product label.
	OriginalProductID         int64  `gorm:"not null;index"`                            // Original product identifier.
	RecommendationProductName string `gorm:"type:varchar(63);not null"`                 // Recommended product label.
	RecommendationProductID   int64  `gorm:"not null;index"`                            // Recommended product identifier.
	Reason                    Reason `gorm:"type:varchar(16);not null;default:'OTHER'"` // Pairing justification.
	Activated                 bool   `gorm:"not null;default:false"`                    // Manually confirmed.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// TableName pins the table name used by migrations and raw statements.
func (Recommendation) TableName() string { return "recommendations" }

func (r *Recommendation) String() string {
	return fmt.Sprintf("<Recommendation %q id=[%d]>", r.Name, r.ID)
}

// Serialize converts the recommendation into its wire representation.
func (r *Recommendation) Serialize() map[string]any {
	var id any
	if r.ID != 0 {
		id = r.ID
	}
	return map[string]any{
		"id":                          id,
		"name":                        r.Name,
		"original_product_id":         r.OriginalProductID,
		"recommendation_product_name": r.RecommendationProductName,
		"recommendation_product_id":   r.RecommendationProductID,
		"reason":                      r.Reason.OrDefault().String(),
		"activated":                   r.Activated,
	}
}

// Deserialize populates the recommendation from a decoded JSON object.
// ID is never read; Activated is only changed when the key is present.
func (r *Recommendation) Deserialize(data any) error {
	fields, ok := data.(map[string]any)
	if !ok {
		return NewValidationError("Invalid recommendation: body of request contained bad or no data")
	}
	for _, key := range []string{"name", "original_product_id", "recommendation_product_name", "recommendation_product_id", "reason"} {
		if _, present := fields[key]; !present {
			return NewValidationError("Invalid recommendation: missing " + key)
		}
	}

	name, err := nameField(fields, "name")
	if err != nil {
		return err
	}
	originalID, err := intField(fields, "original_product_id")
	if err != nil {
		return err
	}
	recName, err := nameField(fields, "recommendation_product_name")
	if err != nil {
		return err
	}
	recID, err := intField(fields, "recommendation_product_id")
	if err != nil {
		return err
	}
	rawReason, _ := fields["reason"].(string)
	reason, errReason := ParseReason(rawReason)
	if errReason != nil {
		return NewValidationError(fmt.Sprintf("Invalid attribute: reason %v", fields["reason"]))
	}

	activated := r.Activated
	if raw, present := fields["activated"]; present {
		flag, isBool := raw.(bool)
		if !isBool {
			return NewValidationError("Invalid attribute: activated must be a boolean")
		}
		activated = flag
	}

	r.Name = name
	r.OriginalProductID = originalID
	r.RecommendationProductName = recName
	r.RecommendationProductID = recID
	r.Reason = reason
	r.Activated = activated
	return nil
}

func nameField(fields map[string]any, key string) (string, error) {
	value, ok := fields[key].(string)
	if !ok {
		return "", NewValidationError("Invalid attribute: " + key + " must be a string")
	}
	if value == "" {
		return "", NewValidationError("Invalid attribute: " + key + " must not be empty")
	}
	if utf8.RuneCountInString(value) > MaxNameLength {
		return "", NewValidationError(fmt.Sprintf("Invalid attribute: %s exceeds %d characters", key, MaxNameLength))
	}
	return value, nil
}

func intField(fields map[string]any, key string) (int64, error) {
	bad := NewValidationError("Invalid attribute: " + key + " must be an integer")
	switch v := fields[key].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, bad
		}
		return n, nil
	case float64:
		if v != math.Trunc(v) || v >= math.MaxInt64 || v < math.MinInt64 {
			return 0, bad
		}
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	default:
		return 0, bad
	}
}
