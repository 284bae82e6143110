package detect

import (
	"context"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/market-intel/internal/model"
	"github.com/sells-group/market-intel/internal/signal"
)

// Fetcher retrieves page text for a URL. Implemented by fetcher.PageFetcher.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// Probe pairs one extractor with the gatherer that supplies its evidence.
type Probe struct {
	Extractor signal.Extractor
	Gather    func(ctx context.Context, b model.Business) model.Evidence
}

// WebsiteProbe checks the business website for ad-script fingerprints.
// A missing website yields empty evidence, which the extractor resolves to
// "no_data"; a fetch failure becomes an explicit error marker so the signal
// count stays fixed across businesses.
func WebsiteProbe(f Fetcher, ex signal.Extractor) Probe {
	return Probe{
		Extractor: ex,
		Gather: func(ctx context.Context, b model.Business) model.Evidence {
			if b.Website == "" {
				return model.Evidence{}
			}
			text, err := f.Fetch(ctx, b.Website)
			if err != nil {
				return model.Evidence{FetchErr: err.Error()}
			}
			return model.Evidence{Text: text}
		},
	}
}

// SearchProbe checks the search results page for the business name for
// sponsored-result markers.
func SearchProbe(f Fetcher, ex signal.Extractor, searchBaseURL string) Probe {
	return Probe{
		Extractor: ex,
		Gather: func(ctx context.Context, b model.Business) model.Evidence {
			if b.Name == "" {
				return model.Evidence{}
			}
			text, err := f.Fetch(ctx, searchBaseURL+"?q="+url.QueryEscape(b.Name))
			if err != nil {
				return model.Evidence{FetchErr: err.Error()}
			}
			return model.Evidence{Text: text}
		},
	}
}

// MetricsProbe feeds the rating/review pair already present on the business
// record. It never fails.
func MetricsProbe(ex signal.Extractor) Probe {
	return Probe{
		Extractor: ex,
		Gather: func(_ context.Context, b model.Business) model.Evidence {
			return model.Evidence{Rating: b.Rating, ReviewCount: b.ReviewCount, HasMetrics: true}
		},
	}
}

// Detector runs a fixed, ordered probe list against businesses. The order is
// stable run-to-run so reason text and any persisted audit trail are
// reproducible.
type Detector struct {
	probes []Probe
}

// NewDetector creates a Detector with the given probes.
func NewDetector(probes ...Probe) *Detector {
	return &Detector{probes: probes}
}

// Detect evaluates every probe for one business and aggregates the results.
// Probes that cannot gather evidence contribute a negative signal rather
// than being omitted, keeping N fixed so confidence tiers stay comparable.
func (d *Detector) Detect(ctx context.Context, b model.Business) model.DetectionVerdict {
	signals := make([]model.SignalResult, 0, len(d.probes))
	for _, p := range d.probes {
		ev := p.Gather(ctx, b)
		signals = append(signals, p.Extractor.Check(ev))
	}
	return Aggregate(signals)
}

// DetectAll scores businesses concurrently, up to the given limit. Results
// are positionally aligned with the input; one business's failure never
// blocks the rest. Concurrency <= 0 defaults to 1.
func (d *Detector) DetectAll(ctx context.Context, businesses []model.Business, concurrency int) []model.DetectionVerdict {
	if concurrency <= 0 {
		concurrency = 1
	}

	verdicts := make([]model.DetectionVerdict, len(businesses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, b := range businesses {
		g.Go(func() error {
			verdicts[i] = d.Detect(gctx, b)
			return nil
		})
	}
	// Workers never return errors; Wait only observes context cancellation.
	_ = g.Wait()

	flagged := 0
	for i := range verdicts {
		if verdicts[i].HasSignal {
			flagged++
		}
	}
	zap.L().Info("detect: batch complete",
		zap.Int("businesses", len(businesses)),
		zap.Int("flagged", flagged),
	)

	return verdicts
}
