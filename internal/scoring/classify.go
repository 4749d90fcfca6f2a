package scoring

import (
	"net/url"
	"strings"

	"PulseAtlas/internal/model"
)

// Classification is the outcome of the keyword rules for one text blob.
type Classification struct {
	KeywordScore float64
	Color        string
	Label        string
	Rule         string
	RiskHits     int
	HypeHits     int
	WatchHits    int
}

func countHits(t string, vocab []string) int {
	n := 0
	for _, w := range vocab {
		if strings.Contains(t, w) {
			n++
		}
	}
	return n
}

// Classify applies the keyword rules in priority order. Risk takes
// priority over hype on tie-or-greater hit counts.
func Classify(text string) Classification {
	t := strings.ToLower(text)

	risk := countHits(t, riskWords)
	hype := countHits(t, hypeWords)
	watch := countHits(t, watchWords)

	c := Classification{RiskHits: risk, HypeHits: hype, WatchHits: watch}

	switch {
	case risk >= 1 && risk >= hype:
		c.KeywordScore, c.Color, c.Label, c.Rule = scoreRisk, model.ColorRed, "risk", "risk"
	case hype >= 2 && hype > risk:
		c.KeywordScore, c.Color, c.Label, c.Rule = scoreHype, model.ColorGreen, "hype", "hype"
	case risk >= 1 && hype >= 1:
		// Unreachable while the rules are pure hit counts (hype > risk >= 1
		// implies hype >= 2). Kept so a weighted variant of the counts
		// lands on mixed instead of falling through to watch.
		c.KeywordScore, c.Color, c.Label, c.Rule = scoreMixed, model.ColorYellow, "mixed", "mixed"
	case watch >= 1:
		c.KeywordScore, c.Color, c.Label, c.Rule = scoreWatch, model.ColorYellow, "watch", "watch"
	default:
		c.KeywordScore, c.Color, c.Label, c.Rule = scoreNeutral, model.ColorYellow, "neutral", "neutral"
	}
	return c
}

// DomainScore returns the reputation prior for a URL's host. Subdomain
// matches count: "docs.github.com" inherits the "github.com" prior.
func DomainScore(raw string) float64 {
	if strings.TrimSpace(raw) == "" {
		return priorUnparseable
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return priorUnparseable
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	for d, sc := range domainPriors {
		if host == d || strings.HasSuffix(host, "."+d) {
			return sc
		}
	}
	return priorUnknown
}

// NormText joins non-empty parts into one lowercased blob.
func NormText(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.ToLower(strings.Join(kept, " "))
}

func clamp(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
