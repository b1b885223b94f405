package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"pricewatcher/internal/models"
	"pricewatcher/internal/tracker"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newChecker(repo *stubRepo, fetcher *scriptedFetcher, mailer *recordingNotifier, products ...tracker.Product) *CheckService {
	return &CheckService{
		Repo:     repo,
		Fetcher:  fetcher,
		Notifier: mailer,
		Dedup:    &tracker.Dedup{Repo: repo},
		Products: products,
	}
}

func TestRunCycle_TargetSequenceNotifiesOnce(t *testing.T) {
	const url = "https://example.com/dp/A"
	repo := newStubRepo()
	fetcher := newScriptedFetcher()
	fetcher.prices[url] = []string{"25", "22", "19.99", "21"}
	mailer := &recordingNotifier{}
	checker := newChecker(repo, fetcher, mailer,
		tracker.Product{Name: "laptop", URL: url, TargetPrice: decPtr("20.00")})

	ctx := context.Background()
	for cycle := 1; cycle <= 4; cycle++ {
		checker.RunCycle(ctx)
		switch cycle {
		case 2:
			if len(mailer.sent) != 0 {
				t.Fatalf("cycle %d: sent=%d want 0", cycle, len(mailer.sent))
			}
		case 3:
			if len(mailer.sent) != 1 {
				t.Fatalf("cycle %d: sent=%d want 1", cycle, len(mailer.sent))
			}
			if repo.states[url].Status != models.AlertStatusAlerted {
				t.Fatalf("cycle %d: status=%s want alerted", cycle, repo.states[url].Status)
			}
		case 4:
			if repo.states[url].Status != models.AlertStatusQuiet {
				t.Fatalf("cycle %d: status=%s want quiet", cycle, repo.states[url].Status)
			}
		}
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("total sent=%d want 1", len(mailer.sent))
	}
	if len(repo.observations[url]) != 4 {
		t.Fatalf("observations=%d want 4", len(repo.observations[url]))
	}
}

func TestRunCycle_RedropAfterRecoveryNotifiesAgain(t *testing.T) {
	const url = "https://example.com/dp/A"
	repo := newStubRepo()
	fetcher := newScriptedFetcher()
	fetcher.prices[url] = []string{"19.99", "21", "19"}
	mailer := &recordingNotifier{}
	checker := newChecker(repo, fetcher, mailer,
		tracker.Product{Name: "laptop", URL: url, TargetPrice: decPtr("20.00")})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		checker.RunCycle(ctx)
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("sent=%d want 2 (initial dip + redrop)", len(mailer.sent))
	}
}

func TestRunCycle_SustainedDipSuppressed(t *testing.T) {
	const url = "https://example.com/dp/A"
	repo := newStubRepo()
	fetcher := newScriptedFetcher()
	fetcher.prices[url] = []string{"19", "18", "17"}
	mailer := &recordingNotifier{}
	checker := newChecker(repo, fetcher, mailer,
		tracker.Product{Name: "ssd", URL: url, TargetPrice: decPtr("20")})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		checker.RunCycle(ctx)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("sent=%d want 1", len(mailer.sent))
	}
}

func TestRunCycle_FetchFailureIsolatedPerProduct(t *testing.T) {
	const urlA = "https://example.com/dp/A"
	const urlB = "https://example.com/dp/B"
	repo := newStubRepo()
	fetcher := newScriptedFetcher()
	fetcher.errs[urlA] = errors.New("timeout")
	fetcher.prices[urlB] = []string{"10"}
	mailer := &recordingNotifier{}
	checker := newChecker(repo, fetcher, mailer,
		tracker.Product{Name: "a", URL: urlA, TargetPrice: decPtr("20")},
		tracker.Product{Name: "b", URL: urlB, TargetPrice: decPtr("20")})

	res := checker.RunCycle(context.Background())
	if res.FetchErrors != 1 {
		t.Fatalf("fetch_errors=%d want 1", res.FetchErrors)
	}
	if len(repo.observations[urlA]) != 0 {
		t.Fatalf("product A observations=%d want 0", len(repo.observations[urlA]))
	}
	if len(repo.observations[urlB]) != 1 {
		t.Fatalf("product B observations=%d want 1", len(repo.observations[urlB]))
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("sent=%d want 1 (product B deal)", len(mailer.sent))
	}
}

func TestRunCycle_StorageFailureSkipsEvaluation(t *testing.T) {
	const url = "https://example.com/dp/A"
	repo := newStubRepo()
	repo.insertErr = errors.New("disk full")
	fetcher := newScriptedFetcher()
	fetcher.prices[url] = []string{"10"}
	mailer := &recordingNotifier{}
	checker := newChecker(repo, fetcher, mailer,
		tracker.Product{Name: "a", URL: url, TargetPrice: decPtr("20")})

	res := checker.RunCycle(context.Background())
	if res.StorageErrors != 1 {
		t.Fatalf("storage_errors=%d want 1", res.StorageErrors)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("sent=%d want 0 (cannot evaluate without durable history)", len(mailer.sent))
	}
}

func TestRunCycle_NotifyFailureRetriesNextCycle(t *testing.T) {
	const url = "https://example.com/dp/A"
	repo := newStubRepo()
	fetcher := newScriptedFetcher()
	fetcher.prices[url] = []string{"19", "18"}
	mailer := &recordingNotifier{failures: 1}
	checker := newChecker(repo, fetcher, mailer,
		tracker.Product{Name: "a", URL: url, TargetPrice: decPtr("20")})

	ctx := context.Background()
	res := checker.RunCycle(ctx)
	if res.NotifyErrors != 1 || len(mailer.sent) != 0 {
		t.Fatalf("cycle 1: notify_errors=%d sent=%d want 1/0", res.NotifyErrors, len(mailer.sent))
	}
	// State must not have advanced to alerted on a failed delivery.
	if state, ok := repo.states[url]; ok && state.Status == models.AlertStatusAlerted {
		t.Fatalf("cycle 1: state advanced despite failed notify")
	}

	checker.RunCycle(ctx)
	if len(mailer.sent) != 1 {
		t.Fatalf("cycle 2: sent=%d want 1 (retry)", len(mailer.sent))
	}
	if repo.states[url].Status != models.AlertStatusAlerted {
		t.Fatalf("cycle 2: status=%s want alerted", repo.states[url].Status)
	}
}

func TestRunCycle_BothRulesSingleNotification(t *testing.T) {
	const url = "https://example.com/dp/A"
	repo := newStubRepo()
	fetcher := newScriptedFetcher()
	fetcher.prices[url] = []string{"100", "100", "89"}
	mailer := &recordingNotifier{}
	checker := newChecker(repo, fetcher, mailer,
		tracker.Product{Name: "a", URL: url, TargetPrice: decPtr("95"), MinDiscount: decPtr("10")})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		checker.RunCycle(ctx)
	}
	// baseline after two cycles is 100; 89 is both below target 95 and at
	// least 10% below baseline.
	if len(mailer.sent) != 1 {
		t.Fatalf("sent=%d want exactly 1", len(mailer.sent))
	}
}

func TestRunCycle_FirstObservationSkipsDiscount(t *testing.T) {
	const url = "https://example.com/dp/A"
	repo := newStubRepo()
	fetcher := newScriptedFetcher()
	fetcher.prices[url] = []string{"50"}
	mailer := &recordingNotifier{}
	checker := newChecker(repo, fetcher, mailer,
		tracker.Product{Name: "a", URL: url, MinDiscount: decPtr("10")})

	checker.RunCycle(context.Background())
	if len(mailer.sent) != 0 {
		t.Fatalf("sent=%d want 0 (no baseline on first observation)", len(mailer.sent))
	}
	if len(repo.observations[url]) != 1 {
		t.Fatalf("observations=%d want 1", len(repo.observations[url]))
	}
}
