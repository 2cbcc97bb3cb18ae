package service

import (
	"context"
	"log"
	"sync"
	"time"

	"ancpricing/internal/port"
	"ancpricing/internal/pricing"
)

// RevalidationConfig holds settings for the revalidation worker.
type RevalidationConfig struct {
	PollInterval time.Duration
	BatchSize    int
	Concurrency  int
}

// RevalidationWorker polls for documents whose stored report was produced by
// another parser version and re-parses them from the archived source.
type RevalidationWorker struct {
	repo    port.PricingRepository
	service PricingService
	cfg     RevalidationConfig
	wg      sync.WaitGroup
}

// NewRevalidationWorker creates a new RevalidationWorker.
func NewRevalidationWorker(repo port.PricingRepository, service PricingService, cfg RevalidationConfig) *RevalidationWorker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = cfg.Concurrency
	}
	return &RevalidationWorker{repo: repo, service: service, cfg: cfg}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight revalidations have finished.
func (w *RevalidationWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("revalidationWorker: started (poll=%s, batch=%d, concurrency=%d, parser=%s)",
		w.cfg.PollInterval, w.cfg.BatchSize, w.cfg.Concurrency, pricing.ParserVersion)

	for {
		select {
		case <-ctx.Done():
			log.Printf("revalidationWorker: shutting down, waiting for in-flight revalidations...")
			w.wg.Wait()
			log.Printf("revalidationWorker: shutdown complete")
			return
		case <-ticker.C:
			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}
			if available > w.cfg.BatchSize {
				available = w.cfg.BatchSize
			}

			recs, err := w.repo.ClaimStale(ctx, pricing.ParserVersion, available)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				log.Printf("revalidationWorker: ClaimStale error: %v", err)
				continue
			}

			for i := range recs {
				rec := recs[i]

				sem <- struct{}{}
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }()

					// Detached from ctx so shutdown lets in-flight work finish.
					runCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
					defer cancel()

					log.Printf("revalidationWorker: revalidating document %s (parser %s)", rec.ID, rec.ParserVersion)
					if _, err := w.service.Revalidate(runCtx, rec.ID); err != nil {
						log.Printf("revalidationWorker: document %s failed: %v", rec.ID, err)
					}
				}()
			}
		}
	}
}
