package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"PulseAtlas/internal/model"
)

// MetricsFetcher samples current chain metrics (block height, subnet
// mechanism count, emission split) from a JSON endpoint. Samples carry
// a synthetic bt:// URL keyed by block so the windowed dedup can skip
// redundant polls between blocks.
type MetricsFetcher struct {
	Endpoint string
	Netuid   int
	Object   string
	Client   *http.Client
}

func NewMetricsFetcher(endpoint string, netuid int, object, proxyURL string) *MetricsFetcher {
	return &MetricsFetcher{
		Endpoint: endpoint,
		Netuid:   netuid,
		Object:   object,
		Client:   newHTTPClient(proxyURL),
	}
}

func (f *MetricsFetcher) Name() string { return "bittensor/metrics" }

// chainMetrics is the expected JSON shape from the metrics endpoint.
type chainMetrics struct {
	Block          int64     `json:"block"`
	MechanismCount int       `json:"mechanism_count"`
	EmissionSplit  []float64 `json:"emission_split"`
}

func (f *MetricsFetcher) Fetch(ctx context.Context, _ string) ([]model.Envelope, string, error) {
	endpoint := fmt.Sprintf("%s?netuid=%d", f.Endpoint, f.Netuid)
	body, err := fetchBody(ctx, f.Client, endpoint, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, "", fmt.Errorf("metrics netuid=%d: %w", f.Netuid, err)
	}

	var m chainMetrics
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, "", fmt.Errorf("metrics decode: %w", err)
	}

	// Normalize the emission split to fractions of the total.
	var total float64
	for _, v := range m.EmissionSplit {
		total += v
	}
	split := make([]float64, 0, len(m.EmissionSplit))
	if total > 0 {
		for _, v := range m.EmissionSplit {
			split = append(split, round4(v/total))
		}
	}

	metrics := map[string]any{
		"block":           m.Block,
		"mechanism_count": m.MechanismCount,
		"emission_split":  split,
	}
	text, _ := json.MarshalIndent(metrics, "", "  ")

	env := model.Envelope{
		TS:     time.Now().UTC(),
		Source: "bittensor",
		Origin: "bittensor",
		Object: f.Object,
		Kind:   model.KindMetric,
		Title:  fmt.Sprintf("Bittensor metrics (netuid=%d)", f.Netuid),
		Body:   string(text),
		URL:    fmt.Sprintf("bt://metrics/netuid=%d/block=%d", f.Netuid, m.Block),
		Meta:   map[string]any{"netuid": f.Netuid, "metrics": metrics},
		Raw:    string(body),
		Dedup:  model.DedupWindow,
	}
	return []model.Envelope{env}, "", nil
}

func round4(x float64) float64 {
	return float64(int64(x*10000+0.5)) / 10000
}
