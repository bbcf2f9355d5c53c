package sinks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"futurfounder/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMeasurementSink_PlaceholderSkipped(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"empty", ""},
		{"template placeholder", "G-XXXXXXXXXX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink, err := NewMeasurementSink(tt.id, "https://example.com/collect", time.Second)
			require.NoError(t, err)
			assert.Nil(t, sink, "unconfigured sink must be skipped, not an error")
		})
	}
}

func TestNewMeasurementSink_BadEndpoint(t *testing.T) {
	_, err := NewMeasurementSink("G-REAL123", "not-a-url", time.Second)
	assert.Error(t, err)
}

func TestMeasurementSink_SendPayload(t *testing.T) {
	var got measurementPayload
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	sink, err := NewMeasurementSink("G-REAL123", server.URL, time.Second)
	require.NoError(t, err)

	value := 9.99
	err = sink.Send(context.Background(), domain.Event{
		Action:    "cta_click",
		Category:  "engagement",
		Label:     "join_waitlist",
		Value:     &value,
		VisitorID: "visitor-1",
		Params:    domain.Params{"cta_location": domain.StringParam("hero")},
	})
	require.NoError(t, err)

	assert.Equal(t, "measurement_id=G-REAL123", gotQuery)
	assert.Equal(t, "visitor-1", got.ClientID)
	require.Len(t, got.Events, 1)
	assert.Equal(t, "cta_click", got.Events[0].Name)
	assert.Equal(t, "engagement", got.Events[0].Params["event_category"])
	assert.Equal(t, "hero", got.Events[0].Params["cta_location"])
}

func TestMeasurementSink_SendConversion(t *testing.T) {
	var got measurementPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	sink, err := NewMeasurementSink("G-REAL123", server.URL, time.Second)
	require.NoError(t, err)

	value := 49.0
	err = sink.SendConversion(context.Background(), domain.Conversion{
		Name:          "waitlist_signup",
		Value:         &value,
		Currency:      "USD",
		TransactionID: "txn_1",
		VisitorID:     "visitor-1",
	})
	require.NoError(t, err)

	require.Len(t, got.Events, 1)
	assert.Equal(t, "conversion", got.Events[0].Name)
	assert.Equal(t, "waitlist_signup", got.Events[0].Params["event_name"])
	assert.Equal(t, "txn_1", got.Events[0].Params["transaction_id"])
}

func TestMeasurementSink_ErrorStatusSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	sink, err := NewMeasurementSink("G-REAL123", server.URL, time.Second)
	require.NoError(t, err)

	err = sink.Send(context.Background(), domain.Event{Action: "click", Category: "engagement"})
	assert.Error(t, err)
}

func TestHeatmapSink_EventTagOnly(t *testing.T) {
	var gotPath string
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink, err := NewHeatmapSink("site123", server.URL, time.Second)
	require.NoError(t, err)

	err = sink.Send(context.Background(), domain.Event{
		Action:   "cta_click",
		Category: "engagement",
		Params:   domain.Params{"cta_location": domain.StringParam("hero")},
	})
	require.NoError(t, err)

	assert.Equal(t, "/site123/events", gotPath)
	assert.Equal(t, map[string]string{"event": "cta_click"}, got, "heatmap tag carries the action string only")
}
