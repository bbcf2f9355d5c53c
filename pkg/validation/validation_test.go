package validation

import (
	"strings"
	"testing"

	"futurfounder/internal/core/domain"
)

func TestValidateAction(t *testing.T) {
	if err := ValidateAction("cta_click"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateAction(""); err == nil {
		t.Error("empty action should fail")
	}
	if err := ValidateAction("   "); err == nil {
		t.Error("whitespace action should fail")
	}
	if err := ValidateAction(strings.Repeat("a", 101)); err == nil {
		t.Error("overlong action should fail")
	}
}

func TestValidateTestID(t *testing.T) {
	valid := []string{"hero_headline", "test-1", "ABC123"}
	for _, id := range valid {
		if err := ValidateTestID(id); err != nil {
			t.Errorf("%q should be valid: %v", id, err)
		}
	}

	invalid := []string{"", "has space", "has/slash", "has.dot"}
	for _, id := range invalid {
		if err := ValidateTestID(id); err == nil {
			t.Errorf("%q should be invalid", id)
		}
	}
}

func TestValidateScrollDepth(t *testing.T) {
	for _, pct := range []int{0, 50, 100} {
		if err := ValidateScrollDepth(pct); err != nil {
			t.Errorf("%d should be valid: %v", pct, err)
		}
	}
	for _, pct := range []int{-1, 101} {
		if err := ValidateScrollDepth(pct); err == nil {
			t.Errorf("%d should be invalid", pct)
		}
	}
}

func TestValidateEndpointURL(t *testing.T) {
	if err := ValidateEndpointURL("https://example.com/collect"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, bad := range []string{"", "ftp://example.com", "not a url", "https://"} {
		if err := ValidateEndpointURL(bad); err == nil {
			t.Errorf("%q should be invalid", bad)
		}
	}
}

func TestParseParams(t *testing.T) {
	params, err := ParseParams(map[string]interface{}{
		"section": "hero",
		"count":   float64(3),
		"active":  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if params["section"].Kind != domain.ParamString || params["section"].Str != "hero" {
		t.Error("string param mis-parsed")
	}
	if params["count"].Kind != domain.ParamNumber || params["count"].Num != 3 {
		t.Error("number param mis-parsed")
	}
	if params["active"].Kind != domain.ParamBool || !params["active"].Bool {
		t.Error("bool param mis-parsed")
	}
}

func TestParseParams_RejectsStructuredValues(t *testing.T) {
	cases := map[string]interface{}{
		"nested": map[string]interface{}{"a": 1},
		"list":   []interface{}{1, 2},
		"null":   nil,
	}
	for name, value := range cases {
		if _, err := ParseParams(map[string]interface{}{name: value}); err == nil {
			t.Errorf("%s value should be rejected", name)
		}
	}
}

func TestParseParams_Limits(t *testing.T) {
	big := make(map[string]interface{})
	for i := 0; i < 26; i++ {
		big[strings.Repeat("k", i+1)] = "v"
	}
	if _, err := ParseParams(big); err == nil {
		t.Error("too many params should be rejected")
	}

	if _, err := ParseParams(map[string]interface{}{strings.Repeat("k", 41): "v"}); err == nil {
		t.Error("overlong key should be rejected")
	}

	if _, err := ParseParams(map[string]interface{}{"": "v"}); err == nil {
		t.Error("empty key should be rejected")
	}
}

func TestParseParams_Empty(t *testing.T) {
	params, err := ParseParams(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params != nil {
		t.Error("nil input should produce nil params")
	}
}
