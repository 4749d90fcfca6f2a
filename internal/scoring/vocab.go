package scoring

// Hand-tuned vocabularies and thresholds. Treat as configuration:
// changing these lists changes classification, nothing else does.

var riskWords = []string{
	"ban", "banned", "regulation", "regulator", "sec", "fine", "lawsuit", "court", "sanction",
	"breach", "leak", "hack", "hacked", "ransom", "exploit", "vulnerability", "cve", "critical",
	"surveillance", "blocked", "shutdown", "arrest", "fraud", "scam", "malware",
	"investigation", "panic", "crash", "attack",
}

var hypeWords = []string{
	"release", "released", "launch", "launched", "introducing", "announcing", "open source",
	"benchmark", "paper", "improves", "performance", "funding", "partnership", "integration",
	"upgrade", "stable", "milestone", "record", "surge", "breakthrough", "adoption",
	"tool", "sdk", "api", "security fix", "patch", "mitigation",
}

var watchWords = []string{
	"rumor", "report", "preview", "beta", "maybe", "analysis", "opinion", "thoughts", "discussion",
}

// Fixed domain-reputation priors. Unknown hosts get 0.45, unparseable
// URLs 0.40.
var domainPriors = map[string]float64{
	"openai.com":          0.78,
	"blog.cloudflare.com": 0.72,
	"schneier.com":        0.70,
	"lwn.net":             0.68,
	"arstechnica.com":     0.65,
	"github.com":          0.62,
	"theverge.com":        0.58,
}

const (
	scoreRisk    = 0.72
	scoreHype    = 0.66
	scoreMixed   = 0.60
	scoreWatch   = 0.52
	scoreNeutral = 0.48

	priorUnknown     = 0.45
	priorUnparseable = 0.40
)
