package scraper

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gocolly/colly"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pricewatcher/internal/config"
)

// ErrPriceNotFound means the page loaded but no selector yielded a parseable
// price — usually a layout change or a blocked/captcha response.
var ErrPriceNotFound = errors.New("price not found on page")

// price selectors in priority order; Amazon swaps these around between page
// templates and deal states.
var priceSelectors = []string{
	".a-price-whole",
	"#priceblock_ourprice",
	"#priceblock_dealprice",
	".a-offscreen",
}

// AmazonScraper extracts the current price from an Amazon product page.
type AmazonScraper struct {
	UserAgent string
	Timeout   time.Duration
	Logger    *zap.Logger
}

func NewAmazonScraper(cfg config.ScraperConfig, logger *zap.Logger) *AmazonScraper {
	return &AmazonScraper{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
		Logger:    logger,
	}
}

func (s *AmazonScraper) Fetch(ctx context.Context, url string) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Decimal{}, err
	}

	c := colly.NewCollector(colly.UserAgent(s.UserAgent))
	if s.Timeout > 0 {
		c.SetRequestTimeout(s.Timeout)
	}
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	})

	found := make([]*decimal.Decimal, len(priceSelectors))
	for i, sel := range priceSelectors {
		i := i
		c.OnHTML(sel, func(e *colly.HTMLElement) {
			if found[i] != nil {
				return
			}
			price, err := ParsePrice(e.Text)
			if err != nil {
				return
			}
			found[i] = &price
		})
	}

	if err := c.Visit(url); err != nil {
		return decimal.Decimal{}, fmt.Errorf("fetch %s: %w", url, err)
	}

	for _, price := range found {
		if price != nil {
			return *price, nil
		}
	}
	if s.Logger != nil {
		s.Logger.Warn("no price selector matched", zap.String("url", url))
	}
	return decimal.Decimal{}, fmt.Errorf("%s: %w", url, ErrPriceNotFound)
}

var nonPriceChars = regexp.MustCompile(`[^\d.]`)

// ParsePrice converts a scraped price string (e.g. "$1,299.90") to a decimal.
// Extra dots left over after stripping separators are treated as thousands
// separators, keeping only the last as the decimal point.
func ParsePrice(text string) (decimal.Decimal, error) {
	digits := nonPriceChars.ReplaceAllString(text, "")
	if parts := strings.Split(digits, "."); len(parts) > 2 {
		digits = strings.Join(parts[:len(parts)-1], "") + "." + parts[len(parts)-1]
	}
	digits = strings.TrimSuffix(digits, ".")
	if strings.HasPrefix(digits, ".") {
		digits = "0" + digits
	}
	if digits == "" {
		return decimal.Decimal{}, fmt.Errorf("no digits in price text %q", text)
	}
	price, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse price %q: %w", text, err)
	}
	if price.Sign() <= 0 {
		return decimal.Decimal{}, fmt.Errorf("non-positive price %q", text)
	}
	return price, nil
}
