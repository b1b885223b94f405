package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"pricewatcher/internal/models"
)

// stubRepo is a test-only in-memory implementation of repository.Repository
// with optional fault injection.
type stubRepo struct {
	nextID       uint64
	observations map[string][]models.Observation
	states       map[string]models.AlertState
	insertErr    error
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		observations: map[string][]models.Observation{},
		states:       map[string]models.AlertState{},
	}
}

func (r *stubRepo) InsertObservation(ctx context.Context, item *models.Observation) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.nextID++
	item.ID = r.nextID
	if item.ObservedAt.IsZero() {
		item.ObservedAt = time.Now().UTC()
	}
	r.observations[item.ProductURL] = append(r.observations[item.ProductURL], *item)
	return nil
}

func (r *stubRepo) ListObservations(ctx context.Context, productURL string) ([]models.Observation, error) {
	out := make([]models.Observation, len(r.observations[productURL]))
	copy(out, r.observations[productURL])
	return out, nil
}

func (r *stubRepo) LatestObservation(ctx context.Context, productURL string) (*models.Observation, error) {
	items := r.observations[productURL]
	if len(items) == 0 {
		return nil, nil
	}
	last := items[len(items)-1]
	return &last, nil
}

func (r *stubRepo) GetAlertState(ctx context.Context, productURL string) (*models.AlertState, error) {
	state, ok := r.states[productURL]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (r *stubRepo) SaveAlertState(ctx context.Context, item *models.AlertState) error {
	r.states[item.ProductURL] = *item
	return nil
}

func (r *stubRepo) ListAlertStates(ctx context.Context) ([]models.AlertState, error) {
	out := make([]models.AlertState, 0, len(r.states))
	for _, s := range r.states {
		out = append(out, s)
	}
	return out, nil
}

// scriptedFetcher plays back a per-URL price sequence, one entry per call,
// repeating the last entry once exhausted.
type scriptedFetcher struct {
	prices map[string][]string
	errs   map[string]error
	calls  map[string]int
}

func newScriptedFetcher() *scriptedFetcher {
	return &scriptedFetcher{
		prices: map[string][]string{},
		errs:   map[string]error{},
		calls:  map[string]int{},
	}
}

func (f *scriptedFetcher) Fetch(ctx context.Context, url string) (decimal.Decimal, error) {
	if err := f.errs[url]; err != nil {
		return decimal.Decimal{}, err
	}
	seq := f.prices[url]
	if len(seq) == 0 {
		return decimal.Decimal{}, errors.New("no scripted price")
	}
	i := f.calls[url]
	f.calls[url]++
	if i >= len(seq) {
		i = len(seq) - 1
	}
	return decimal.RequireFromString(seq[i]), nil
}

// recordingNotifier records sent subjects and can fail its first N calls.
type recordingNotifier struct {
	sent     []string
	failures int
	calls    int
}

func (n *recordingNotifier) Notify(ctx context.Context, subject, body string) error {
	n.calls++
	if n.calls <= n.failures {
		return errors.New("smtp: transient send failure")
	}
	n.sent = append(n.sent, subject)
	return nil
}
