package sinks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"futurfounder/internal/core/domain"
	"futurfounder/pkg/validation"
)

// HeatmapSink tags events on the heatmap/session-replay service. The wire
// contract is just a named event tag; there is no structured payload beyond
// the action string.
type HeatmapSink struct {
	siteID   string
	endpoint string
	client   *http.Client
}

func NewHeatmapSink(siteID, endpoint string, timeout time.Duration) (*HeatmapSink, error) {
	if !SinkConfigured(siteID) {
		return nil, nil
	}
	if err := validation.ValidateEndpointURL(endpoint); err != nil {
		return nil, fmt.Errorf("invalid heatmap endpoint: %w", err)
	}

	return &HeatmapSink{
		siteID:   siteID,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

func (s *HeatmapSink) Name() string { return "heatmap" }

func (s *HeatmapSink) Send(ctx context.Context, event domain.Event) error {
	body, err := json.Marshal(map[string]string{"event": event.Action})
	if err != nil {
		return fmt.Errorf("failed to marshal heatmap payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/events", s.endpoint, s.siteID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build heatmap request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("heatmap request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("heatmap endpoint returned %d", resp.StatusCode)
	}
	return nil
}
