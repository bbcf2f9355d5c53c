package sinks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"futurfounder/internal/core/domain"
	"futurfounder/pkg/validation"
)

// MeasurementSink posts events to the measurement-protocol collection
// endpoint. Delivery is fire-and-forget: the response body is never read
// beyond the status code and nothing is retried.
type MeasurementSink struct {
	measurementID string
	endpoint      string
	client        *http.Client
}

type measurementEvent struct {
	Name   string                 `json:"name"`
	Params map[string]interface{} `json:"params,omitempty"`
}

type measurementPayload struct {
	ClientID string             `json:"client_id"`
	Events   []measurementEvent `json:"events"`
}

// NewMeasurementSink builds the sink, or returns (nil, nil) when the
// measurement ID is absent or still a placeholder — an unconfigured sink is
// skipped, never a failure.
func NewMeasurementSink(measurementID, endpoint string, timeout time.Duration) (*MeasurementSink, error) {
	if !SinkConfigured(measurementID) {
		return nil, nil
	}
	if err := validation.ValidateEndpointURL(endpoint); err != nil {
		return nil, fmt.Errorf("invalid measurement endpoint: %w", err)
	}

	return &MeasurementSink{
		measurementID: measurementID,
		endpoint:      endpoint,
		client:        &http.Client{Timeout: timeout},
	}, nil
}

func (s *MeasurementSink) Name() string { return "measurement" }

func (s *MeasurementSink) Send(ctx context.Context, event domain.Event) error {
	params := map[string]interface{}{
		"event_category": event.Category,
	}
	if event.Label != "" {
		params["event_label"] = event.Label
	}
	if event.Value != nil {
		params["value"] = *event.Value
	}
	for key, p := range event.Params {
		params[key] = p.Interface()
	}

	return s.post(ctx, event.VisitorID, measurementEvent{
		Name:   event.Action,
		Params: params,
	})
}

func (s *MeasurementSink) SendConversion(ctx context.Context, conv domain.Conversion) error {
	params := map[string]interface{}{
		"event_name": conv.Name,
		"currency":   conv.Currency,
	}
	if conv.Value != nil {
		params["value"] = *conv.Value
	}
	if conv.TransactionID != "" {
		params["transaction_id"] = conv.TransactionID
	}
	for key, p := range conv.Params {
		params[key] = p.Interface()
	}

	return s.post(ctx, conv.VisitorID, measurementEvent{
		Name:   "conversion",
		Params: params,
	})
}

func (s *MeasurementSink) post(ctx context.Context, visitorID domain.VisitorID, event measurementEvent) error {
	clientID := string(visitorID)
	if clientID == "" {
		clientID = "anonymous"
	}

	body, err := json.Marshal(measurementPayload{
		ClientID: clientID,
		Events:   []measurementEvent{event},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal measurement payload: %w", err)
	}

	url := fmt.Sprintf("%s?measurement_id=%s", s.endpoint, s.measurementID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build measurement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("measurement request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("measurement endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// SinkConfigured reports whether a sink identifier is real, as opposed to
// empty or a template placeholder left in the config ("G-XXXXXXXXXX").
func SinkConfigured(id string) bool {
	if id == "" {
		return false
	}
	return !strings.Contains(id, "XXXX")
}
