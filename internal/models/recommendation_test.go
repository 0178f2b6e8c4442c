package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeBody(t *testing.T, body string) any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewBufferString(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return v
}

const validBody = `{"name":"iPhone","original_product_id":1,"recommendation_product_name":"Case","recommendation_product_id":2,"reason":"ACCESSORY"}`

func TestDeserializeValid(t *testing.T) {
	var rec Recommendation
	if err := rec.Deserialize(decodeBody(t, validBody)); err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if rec.Name != "iPhone" || rec.OriginalProductID != 1 || rec.RecommendationProductName != "Case" || rec.RecommendationProductID != 2 {
		t.Fatalf("unexpected fields: %+v", rec)
	}
	if rec.Reason != ReasonAccessory {
		t.Fatalf("expected ACCESSORY, got %s", rec.Reason)
	}
	if rec.Activated {
		t.Fatalf("expected activated to default to false")
	}
}

func TestDeserializeIgnoresIDAndKeepsActivated(t *testing.T) {
	rec := Recommendation{ID: 5, Activated: true}
	body := strings.Replace(validBody, "{", `{"id":77,`, 1)
	if err := rec.Deserialize(decodeBody(t, body)); err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if rec.ID != 5 {
		t.Fatalf("expected id to stay 5, got %d", rec.ID)
	}
	if !rec.Activated {
		t.Fatalf("expected activated to be kept when absent")
	}

	body = strings.Replace(validBody, "{", `{"activated":false,`, 1)
	if err := rec.Deserialize(decodeBody(t, body)); err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if rec.Activated {
		t.Fatalf("expected activated to be cleared")
	}
}

func TestDeserializeErrors(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		message string
	}{
		{name: "not an object", body: `[1,2]`, message: "Invalid recommendation: body of request contained bad or no data"},
		{name: "null", body: `null`, message: "Invalid recommendation: body of request contained bad or no data"},
		{name: "missing name", body: `{"original_product_id":1,"recommendation_product_name":"Case","recommendation_product_id":2,"reason":"OTHER"}`, message: "Invalid recommendation: missing name"},
		{name: "missing reason", body: `{"name":"a","original_product_id":1,"recommendation_product_name":"Case","recommendation_product_id":2}`, message: "Invalid recommendation: missing reason"},
		{name: "bad reason", body: strings.Replace(validBody, "ACCESSORY", "FREEBIE", 1), message: "Invalid attribute: reason FREEBIE"},
		{name: "lowercase reason", body: strings.Replace(validBody, "ACCESSORY", "accessory", 1), message: "Invalid attribute: reason accessory"},
		{name: "string id", body: strings.Replace(validBody, `"original_product_id":1`, `"original_product_id":"1"`, 1), message: "Invalid attribute: original_product_id must be an integer"},
		{name: "fractional id", body: strings.Replace(validBody, `"recommendation_product_id":2`, `"recommendation_product_id":2.5`, 1), message: "Invalid attribute: recommendation_product_id must be an integer"},
		{name: "empty name", body: strings.Replace(validBody, `"iPhone"`, `""`, 1), message: "Invalid attribute: name must not be empty"},
		{name: "long name", body: strings.Replace(validBody, `"iPhone"`, `"`+strings.Repeat("x", MaxNameLength+1)+`"`, 1), message: "Invalid attribute: name exceeds 63 characters"},
		{name: "activated not bool", body: strings.Replace(validBody, "{", `{"activated":"yes",`, 1), message: "Invalid attribute: activated must be a boolean"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var rec Recommendation
			err := rec.Deserialize(decodeBody(t, tc.body))
			var valErr *ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if valErr.Message != tc.message {
				t.Fatalf("expected message %q, got %q", tc.message, valErr.Message)
			}
		})
	}
}

func TestDeserializeFloatIntegerBounds(t *testing.T) {
	cases := []struct {
		value string
		ok    bool
	}{
		{value: "9007199254740992", ok: true},
		{value: "-9223372036854775808", ok: true},
		{value: "9223372036854775808", ok: false},
		{value: "1e19", ok: false},
		{value: "-1e19", ok: false},
	}
	for _, tc := range cases {
		var data any
		body := strings.Replace(validBody, `"original_product_id":1`, `"original_product_id":`+tc.value, 1)
		if err := json.Unmarshal([]byte(body), &data); err != nil {
			t.Fatalf("unmarshal %s: %v", body, err)
		}
		var rec Recommendation
		err := rec.Deserialize(data)
		if tc.ok && err != nil {
			t.Fatalf("value %s: expected success, got %v", tc.value, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("value %s: expected validation error, got original_product_id %d", tc.value, rec.OriginalProductID)
		}
	}
}

func TestDeserializeAcceptsMaxLengthName(t *testing.T) {
	var rec Recommendation
	body := strings.Replace(validBody, `"iPhone"`, `"`+strings.Repeat("é", MaxNameLength)+`"`, 1)
	if err := rec.Deserialize(decodeBody(t, body)); err != nil {
		t.Fatalf("deserialize: %v", err)
	}
}

func TestSerialize(t *testing.T) {
	rec := Recommendation{
		ID:                        3,
		Name:                      "iPhone",
		OriginalProductID:         1,
		RecommendationProductName: "Case",
		RecommendationProductID:   2,
		Reason:                    ReasonUpSell,
		Activated:                 true,
	}
	out := rec.Serialize()
	if len(out) != 7 {
		t.Fatalf("expected 7 keys, got %d: %v", len(out), out)
	}
	if out["reason"] != "UP_SELL" {
		t.Fatalf("expected reason UP_SELL, got %v", out["reason"])
	}
	if out["id"] != uint64(3) {
		t.Fatalf("expected id 3, got %v", out["id"])
	}
	if out["activated"] != true {
		t.Fatalf("expected activated true, got %v", out["activated"])
	}

	var fresh Recommendation
	if fresh.Serialize()["id"] != nil {
		t.Fatalf("expected nil id before persistence")
	}
	if fresh.Serialize()["reason"] != "OTHER" {
		t.Fatalf("expected unspecified reason to serialize as OTHER")
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	original := Recommendation{
		ID:                        9,
		Name:                      "Pixel",
		OriginalProductID:         40,
		RecommendationProductName: "Charger",
		RecommendationProductID:   41,
		Reason:                    ReasonCrossSell,
		Activated:                 true,
	}
	raw, err := json.Marshal(original.Serialize())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	copyRec := Recommendation{ID: original.ID}
	if err := copyRec.Deserialize(decodeBody(t, string(raw))); err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	copyRec.CreatedAt, copyRec.UpdatedAt = original.CreatedAt, original.UpdatedAt
	if copyRec != original {
		t.Fatalf("round trip mismatch: %+v vs %+v", copyRec, original)
	}
}

func TestRecommendationString(t *testing.T) {
	rec := Recommendation{ID: 4, Name: "iPhone"}
	if got := rec.String(); got != `<Recommendation "iPhone" id=[4]>` {
		t.Fatalf("unexpected string: %s", got)
	}
}
