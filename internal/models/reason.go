package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Reason classifies why a product is recommended alongside another.
// The zero value means unspecified and is stored as ReasonOther.
type Reason int

// Supported recommendation reasons.
const (
	// ReasonCrossSell suggests a complementary product.
	ReasonCrossSell Reason = iota + 1
	// ReasonUpSell suggests a higher-end alternative.
	ReasonUpSell
	// ReasonAccessory suggests an add-on for the original product.
	ReasonAccessory
	// ReasonOther covers any other pairing.
	ReasonOther
)

var reasonNames = map[Reason]string{
	ReasonCrossSell: "CROSS_SELL",
	ReasonUpSell:    "UP_SELL",
	ReasonAccessory: "ACCESSORY",
	ReasonOther:     "OTHER",
}

// Reasons returns every defined reason in declaration order.
func Reasons() []Reason {
	return []Reason{ReasonCrossSell, ReasonUpSell, ReasonAccessory, ReasonOther}
}

// ParseReason resolves a symbolic name such as "CROSS_SELL" to a Reason.
func ParseReason(name string) (Reason, error) {
	switch name {
	case "CROSS_SELL":
		return ReasonCrossSell, nil
	case "UP_SELL":
		return ReasonUpSell, nil
	case "ACCESSORY":
		return ReasonAccessory, nil
	case "OTHER":
		return ReasonOther, nil
	default:
		return 0, fmt.Errorf("unknown reason %q", name)
	}
}

// Valid reports whether r is one of the defined reasons.
func (r Reason) Valid() bool {
	_, ok := reasonNames[r]
	return ok
}

// OrDefault returns ReasonOther for the unspecified reason.
func (r Reason) OrDefault() Reason {
	if r == 0 {
		return ReasonOther
	}
	return r
}

func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// MarshalJSON renders the symbolic name.
func (r Reason) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("marshal reason: invalid value %d", int(r))
	}
	return json.Marshal(r.String())
}

// UnmarshalJSON accepts only the symbolic names.
func (r *Reason) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("reason must be a string: %w", err)
	}
	parsed, err := ParseReason(name)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value stores the symbolic name.
func (r Reason) Value() (driver.Value, error) {
	return r.OrDefault().String(), nil
}

// Scan reads a symbolic name written by Value.
func (r *Reason) Scan(value any) error {
	var name string
	switch v := value.(type) {
	case string:
		name = v
	case []byte:
		name = string(v)
	case nil:
		*r = ReasonOther
		return nil
	default:
		return fmt.Errorf("scan reason: unsupported type %T", value)
	}
	parsed, err := ParseReason(name)
	if err != nil {
		return fmt.Errorf("scan reason: %w", err)
	}
	*r = parsed
	return nil
}
