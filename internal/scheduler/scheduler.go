package scheduler

import (
	"context"
	"log"

	"PulseAtlas/internal/collector"
	"PulseAtlas/internal/decision"
	"PulseAtlas/internal/docs"
	"PulseAtlas/internal/index"
	"PulseAtlas/internal/model"
	"PulseAtlas/internal/notifier"
	"PulseAtlas/internal/scoring"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// StatsReader exposes the run-end summary query.
type StatsReader interface {
	Stats() (model.Stats, error)
}

// Scheduler owns the cron trigger and runs the full pipeline:
// collect -> score -> decide -> index -> notify. Stages are isolated;
// a failing stage is logged and the rest still run.
type Scheduler struct {
	Cron         *cron.Cron
	Collector    *collector.Collector
	Scoring      *scoring.Engine
	Decision     *decision.Engine
	Index        *index.Engine
	Inbox        *docs.Inbox // nil when no inbox dir is configured
	Notifier     notifier.Notifier
	Store        StatsReader
	ScoringLimit int
	Ctx          context.Context
}

func NewScheduler(ctx context.Context, col *collector.Collector, sc *scoring.Engine,
	dec *decision.Engine, idx *index.Engine, inbox *docs.Inbox,
	nt notifier.Notifier, st StatsReader, scoringLimit int) *Scheduler {
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds()),
		Collector:    col,
		Scoring:      sc,
		Decision:     dec,
		Index:        idx,
		Inbox:        inbox,
		Notifier:     nt,
		Store:        st,
		ScoringLimit: scoringLimit,
		Ctx:          ctx,
	}
}

// Register adds the pipeline cron entry.
func (s *Scheduler) Register(pipelineCron string) error {
	_, err := s.Cron.AddFunc(pipelineCron, s.RunPipeline)
	return err
}

func (s *Scheduler) Start() { s.Cron.Start() }

func (s *Scheduler) Stop() { s.Cron.Stop() }

// RunPipeline executes one full run end to end.
func (s *Scheduler) RunPipeline() {
	runID := uuid.NewString()[:8]
	log.Printf("[INFO] run %s: pipeline started", runID)

	if s.Inbox != nil {
		if n, err := s.Inbox.Scan(); err != nil {
			log.Printf("[WARN] run %s: inbox scan: %v", runID, err)
		} else if n > 0 {
			log.Printf("[INFO] run %s: inbox registered %d document(s)", runID, n)
		}
	}

	cs := s.Collector.Run(s.Ctx)
	log.Printf("[INFO] run %s: collect inserted=%d ignored=%d failed=%d",
		runID, cs.Inserted, cs.Ignored, cs.Failed)

	if n, err := s.Scoring.ScorePending(s.ScoringLimit); err != nil {
		log.Printf("[WARN] run %s: scoring: %v", runID, err)
	} else {
		log.Printf("[INFO] run %s: scored %d signal(s)", runID, n)
	}

	ds, actions, err := s.Decision.Run()
	if err != nil {
		log.Printf("[WARN] run %s: decision: %v", runID, err)
	} else {
		log.Printf("[INFO] run %s: decision processed=%d inserted=%d last_id=%d",
			runID, ds.Processed, ds.Inserted, ds.LastID)
		if msg := notifier.FormatActions(actions); msg != "" {
			if err := s.Notifier.Send(s.Ctx, msg); err != nil {
				log.Printf("[WARN] run %s: notify: %v", runID, err)
			}
		}
	}

	if n, err := s.Index.Snapshot(); err != nil {
		log.Printf("[WARN] run %s: index: %v", runID, err)
	} else {
		log.Printf("[INFO] run %s: index snapshot for %d object(s)", runID, n)
	}

	if st, err := s.Store.Stats(); err == nil {
		log.Printf("[INFO] run %s: pipeline done, signals total=%d uniq_url=%d",
			runID, st.Total, st.UniqueURLs)
	} else {
		log.Printf("[INFO] run %s: pipeline done", runID)
	}
}
