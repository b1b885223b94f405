package notifier

import (
	"fmt"
	"html"
	"strings"

	"pricewatcher/internal/tracker"
)

// DealMessage renders the alert email for a fired decision. Prices are
// rounded to two places for display only; comparisons upstream stay exact.
func DealMessage(p tracker.Product, dec tracker.Decision) (subject, body string) {
	subject = fmt.Sprintf("Price Watcher — deal on %s", p.Name)

	var b strings.Builder
	b.WriteString("<html><body>")
	b.WriteString("<h1>Price Watcher — Deal Alert!</h1>")
	fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(p.Name))
	fmt.Fprintf(&b, "<p><strong>Current price:</strong> $%s</p>", dec.CurrentPrice.StringFixed(2))

	if dec.Kind == tracker.KindTargetMet || dec.Kind == tracker.KindBothMet {
		fmt.Fprintf(&b, "<p>Below target price! $%s &lt; $%s</p>",
			dec.CurrentPrice.StringFixed(2), dec.TargetPrice.StringFixed(2))
	}
	if (dec.Kind == tracker.KindDiscountMet || dec.Kind == tracker.KindBothMet) && dec.Baseline != nil && dec.DiscountPct != nil {
		fmt.Fprintf(&b, "<p>%s%% below historical average! (was $%s, now $%s)</p>",
			dec.DiscountPct.StringFixed(1), dec.Baseline.StringFixed(2), dec.CurrentPrice.StringFixed(2))
	}

	fmt.Fprintf(&b, `<p><a href="%s">View product</a></p>`, p.URL)
	fmt.Fprintf(&b, `<p style="color:gray;font-size:12px">Checked on %s</p>`,
		dec.ObservedAt.UTC().Format("2006-01-02 at 15:04"))
	b.WriteString("</body></html>")
	return subject, b.String()
}
