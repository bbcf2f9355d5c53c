package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"futurfounder/internal/core/domain"
)

var (
	// TestIDRegex validates experiment test ID format
	TestIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	// VariantIDRegex validates variant ID format
	VariantIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

const (
	maxActionLength   = 100
	maxCategoryLength = 100
	maxLabelLength    = 200
	maxParamKeyLength = 40
	maxParams         = 25
)

// ValidateAction validates an event action
func ValidateAction(action string) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return fmt.Errorf("action is required")
	}
	if utf8.RuneCountInString(action) > maxActionLength {
		return fmt.Errorf("action is too long (max %d characters)", maxActionLength)
	}
	return nil
}

// ValidateCategory validates an event category
func ValidateCategory(category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return fmt.Errorf("category is required")
	}
	if utf8.RuneCountInString(category) > maxCategoryLength {
		return fmt.Errorf("category is too long (max %d characters)", maxCategoryLength)
	}
	return nil
}

// ValidateLabel validates an optional event label
func ValidateLabel(label string) error {
	if label == "" {
		return nil
	}
	if utf8.RuneCountInString(label) > maxLabelLength {
		return fmt.Errorf("label is too long (max %d characters)", maxLabelLength)
	}
	if !utf8.ValidString(label) {
		return fmt.Errorf("label contains invalid characters")
	}
	return nil
}

// ValidateTestID validates an experiment test ID
func ValidateTestID(testID string) error {
	if testID == "" {
		return fmt.Errorf("test ID is required")
	}
	if len(testID) > 100 {
		return fmt.Errorf("test ID is too long (max 100 characters)")
	}
	if !TestIDRegex.MatchString(testID) {
		return fmt.Errorf("invalid test ID format")
	}
	return nil
}

// ValidateVariantID validates a variant ID
func ValidateVariantID(variantID string) error {
	if variantID == "" {
		return fmt.Errorf("variant ID is required")
	}
	if len(variantID) > 100 {
		return fmt.Errorf("variant ID is too long (max 100 characters)")
	}
	if !VariantIDRegex.MatchString(variantID) {
		return fmt.Errorf("invalid variant ID format")
	}
	return nil
}

// ValidateScrollDepth validates a scroll depth percentage
func ValidateScrollDepth(percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("scroll depth must be between 0 and 100")
	}
	return nil
}

// ValidateEndpointURL validates a sink endpoint URL
func ValidateEndpointURL(urlStr string) error {
	if urlStr == "" {
		return fmt.Errorf("URL is required")
	}
	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme (must be http or https)")
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}

// ParseParams converts a raw JSON parameter bag into the typed closed union,
// rejecting nested objects, arrays and nulls at the boundary.
func ParseParams(raw map[string]interface{}) (domain.Params, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if len(raw) > maxParams {
		return nil, fmt.Errorf("too many custom parameters (max %d)", maxParams)
	}

	params := make(domain.Params, len(raw))
	for key, value := range raw {
		if key == "" {
			return nil, fmt.Errorf("parameter key must not be empty")
		}
		if len(key) > maxParamKeyLength {
			return nil, fmt.Errorf("parameter key %q is too long (max %d characters)", key, maxParamKeyLength)
		}

		switch v := value.(type) {
		case string:
			params[key] = domain.StringParam(v)
		case float64:
			params[key] = domain.NumberParam(v)
		case bool:
			params[key] = domain.BoolParam(v)
		default:
			return nil, fmt.Errorf("parameter %q has unsupported type (only string, number, bool allowed)", key)
		}
	}
	return params, nil
}

// ValidateNonEmptyString validates that string is not empty after trimming
func ValidateNonEmptyString(s, fieldName string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}
