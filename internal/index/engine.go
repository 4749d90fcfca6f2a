package index

import (
	"fmt"
	"sort"
	"time"

	"PulseAtlas/internal/model"
)

// Composite weights. They sum to 1, so the index stays in [0,1] for
// any input distribution of scores in [0,1].
const (
	weightRisk    = 0.55
	weightVol     = 0.30
	weightRecency = 0.15
)

// Window abstracts the store operations the engine needs.
type Window interface {
	SignalsSince(since time.Time) ([]model.ScoredSignal, error)
	SaveIndexSnapshots(snaps []model.IndexSnapshot) error
}

// Engine recomputes the rolling per-object risk index.
type Engine struct {
	Store      Window
	Objects    map[string]bool // allow-list of tracked object names
	WindowDays int
	RecentDays int

	now func() time.Time // test hook
}

func NewEngine(st Window, objects []string, windowDays, recentDays int) *Engine {
	allow := make(map[string]bool, len(objects))
	for _, o := range objects {
		allow[o] = true
	}
	return &Engine{
		Store:      st,
		Objects:    allow,
		WindowDays: windowDays,
		RecentDays: recentDays,
		now:        time.Now,
	}
}

// Snapshot recomputes the index for every allow-listed object with at
// least one signal in the window, and upserts one row per object.
// Returns the number of objects written.
//
// Volatility is normalized against the maximum within this run, so
// vol_norm (and therefore the composite) is comparable across objects
// of one snapshot, not across snapshots.
func (e *Engine) Snapshot() (int, error) {
	now := e.now().UTC()
	since := now.AddDate(0, 0, -e.WindowDays)
	recentCut := now.AddDate(0, 0, -e.RecentDays)

	rows, err := e.Store.SignalsSince(since)
	if err != nil {
		return 0, fmt.Errorf("load window: %w", err)
	}

	scores := make(map[string][]float64)
	riskCnt := make(map[string]int)
	recentCnt := make(map[string]int)

	for _, r := range rows {
		if !e.Objects[r.Object] {
			continue
		}
		scores[r.Object] = append(scores[r.Object], r.Score)
		if model.NormColor(r.Color) == model.ColorRed {
			riskCnt[r.Object]++
		}
		if !r.TS.IsZero() && !r.TS.Before(recentCut) {
			recentCnt[r.Object]++
		}
	}
	if len(scores) == 0 {
		return 0, nil
	}

	vol := make(map[string]float64, len(scores))
	maxVol := 0.0
	for obj, vals := range scores {
		v := popStdDev(vals)
		vol[obj] = v
		if v > maxVol {
			maxVol = v
		}
	}
	if maxVol == 0 {
		maxVol = 1.0
	}

	ts := now.Truncate(time.Second).Format(time.RFC3339)

	var snaps []model.IndexSnapshot
	for obj, vals := range scores {
		total := len(vals)
		riskShare := float64(riskCnt[obj]) / float64(total)
		volNorm := vol[obj] / maxVol
		recency := float64(recentCnt[obj]) / float64(total)

		snaps = append(snaps, model.IndexSnapshot{
			TS:         ts,
			WindowDays: e.WindowDays,
			Object:     obj,
			NTotal:     total,
			RiskShare:  riskShare,
			VolNorm:    volNorm,
			Recency:    recency,
			OII:        weightRisk*riskShare + weightVol*volNorm + weightRecency*recency,
		})
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].OII > snaps[j].OII })

	if err := e.Store.SaveIndexSnapshots(snaps); err != nil {
		return 0, fmt.Errorf("save snapshots: %w", err)
	}
	return len(snaps), nil
}
