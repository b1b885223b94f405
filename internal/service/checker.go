package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pricewatcher/internal/models"
	"pricewatcher/internal/notifier"
	"pricewatcher/internal/repository"
	"pricewatcher/internal/tracker"
)

// Fetcher returns the current price for a product page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (decimal.Decimal, error)
}

// Notifier delivers one alert message.
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// CheckService runs one full pass over the configured products: fetch,
// record, evaluate, notify. Products are processed sequentially to keep the
// scrape rate low; no single product's failure aborts the cycle.
type CheckService struct {
	Repo      repository.Repository
	Fetcher   Fetcher
	Notifier  Notifier
	Dedup     *tracker.Dedup
	Evaluator tracker.Evaluator
	Products  []tracker.Product
	Logger    *zap.Logger

	// ProductPause spaces out fetches within a cycle.
	ProductPause time.Duration
}

type CycleResult struct {
	Products      int
	FetchErrors   int
	StorageErrors int
	Alerts        int
	Notified      int
	NotifyErrors  int
}

func (s *CheckService) RunCycle(ctx context.Context) CycleResult {
	if s == nil || s.Repo == nil || s.Fetcher == nil {
		return CycleResult{}
	}
	res := CycleResult{Products: len(s.Products)}
	for i, p := range s.Products {
		if ctx.Err() != nil {
			break
		}
		s.checkProduct(ctx, p, &res)
		if s.ProductPause > 0 && i < len(s.Products)-1 {
			select {
			case <-ctx.Done():
			case <-time.After(s.ProductPause):
			}
		}
	}
	if s.Logger != nil {
		s.Logger.Info("check cycle done",
			zap.Int("products", res.Products),
			zap.Int("fetch_errors", res.FetchErrors),
			zap.Int("storage_errors", res.StorageErrors),
			zap.Int("alerts", res.Alerts),
			zap.Int("notified", res.Notified),
			zap.Int("notify_errors", res.NotifyErrors),
		)
	}
	return res
}

func (s *CheckService) checkProduct(ctx context.Context, p tracker.Product, res *CycleResult) {
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("checking product", zap.String("name", p.Name), zap.String("url", p.URL))

	price, err := s.Fetcher.Fetch(ctx, p.URL)
	if err != nil {
		// Fetch failures are expected noise (timeouts, layout changes); the
		// next cycle is the retry mechanism.
		log.Warn("fetch failed", zap.String("name", p.Name), zap.Error(err))
		res.FetchErrors++
		return
	}

	obs := &models.Observation{
		ProductURL: p.URL,
		Price:      price,
		ObservedAt: time.Now().UTC(),
	}
	if err := s.Repo.InsertObservation(ctx, obs); err != nil {
		// Without a durable write we cannot safely evaluate.
		log.Error("record observation failed", zap.String("name", p.Name), zap.Error(err))
		res.StorageErrors++
		return
	}

	history, err := s.Repo.ListObservations(ctx, p.URL)
	if err != nil {
		log.Error("load history failed", zap.String("name", p.Name), zap.Error(err))
		res.StorageErrors++
		return
	}
	prior := excludeObservation(history, obs.ID)

	baseline := tracker.Baseline(prior)
	dec := s.Evaluator.Evaluate(p, price, baseline, len(prior), obs.ObservedAt)

	fields := []zap.Field{
		zap.String("name", p.Name),
		zap.String("price", price.StringFixed(2)),
		zap.String("decision", string(dec.Kind)),
	}
	if baseline != nil {
		fields = append(fields, zap.String("baseline", baseline.StringFixed(2)))
	}
	log.Info("evaluated", fields...)
	if dec.Alert() {
		res.Alerts++
	}

	notify, err := s.Dedup.ShouldNotify(ctx, p.URL, dec)
	if err != nil {
		log.Error("alert state read failed", zap.String("name", p.Name), zap.Error(err))
		res.StorageErrors++
		return
	}

	if notify && s.Notifier != nil {
		subject, body := notifier.DealMessage(p, dec)
		if err := s.Notifier.Notify(ctx, subject, body); err != nil {
			// Leave the dedup state untouched so the next cycle retries the
			// notification instead of silently swallowing the deal.
			log.Error("notify failed", zap.String("name", p.Name), zap.Error(err))
			res.NotifyErrors++
			return
		}
		res.Notified++
	}

	if err := s.Dedup.Mark(ctx, p.URL, dec); err != nil {
		log.Error("alert state write failed", zap.String("name", p.Name), zap.Error(err))
		res.StorageErrors++
	}
}

// excludeObservation drops the just-recorded row so the baseline covers only
// prior history; the first observation of a product yields no baseline.
func excludeObservation(history []models.Observation, id uint64) []models.Observation {
	out := history[:0:0]
	for _, obs := range history {
		if obs.ID == id {
			continue
		}
		out = append(out, obs)
	}
	return out
}
