package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// Decision is the relevance verdict for an incoming item.
type Decision string

const (
	Drop         Decision = "DROP"
	Keep         Decision = "KEEP"
	KeepPriority Decision = "KEEP_PRIORITY"
)

// Tracked project slugs. ProjectObject maps them to the object names
// used in the signal store.
const (
	ProjectBittensor = "bittensor"
	ProjectAkash     = "akash"
	ProjectGaea      = "gaea"
	ProjectUnknown   = "unknown"
)

// ProjectObject maps a detected project slug to its tracked object name.
var ProjectObject = map[string]string{
	ProjectBittensor: "Bittensor",
	ProjectAkash:     "Akash",
	ProjectGaea:      "GAEA",
}

// Result holds the verdict plus the reasons and features that produced it.
type Result struct {
	Decision Decision
	Project  string
	Reasons  []string
	Features map[string]any
}

var anchors = map[string][]*regexp.Regexp{
	ProjectBittensor: compile(`\bbittensor\b`, `\btao\b`, `\bsubnet\b`),
	ProjectAkash:     compile(`\bakash\b`, `\bakt\b`, `\bprovider\b`),
	ProjectGaea:      compile(`\bgaea\b`),
}

var dropPatterns = compile(
	`\bairdrop\b`,
	`\bwhitelist\b`,
	`\bgiveaway\b`,
	`\bjoin now\b`,
	`\bdiscount\b`,
)

const minLen = 40

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// DetectProject returns the first project whose anchor pattern matches
// the text, or ProjectUnknown.
func DetectProject(text string) string {
	t := strings.ToLower(text)
	for _, proj := range []string{ProjectBittensor, ProjectAkash, ProjectGaea} {
		for _, p := range anchors[proj] {
			if p.MatchString(t) {
				return proj
			}
		}
	}
	return ProjectUnknown
}

// Evaluate decides whether an item is worth keeping. Promo patterns
// and very short texts are dropped; anchor matches are kept with
// priority and a detected project.
func Evaluate(text, source, author string) Result {
	t := strings.TrimSpace(text)
	tlow := strings.ToLower(t)

	res := Result{
		Project:  ProjectUnknown,
		Features: map[string]any{"len": len(t), "source": source, "author": author},
	}

	for _, p := range dropPatterns {
		if p.MatchString(tlow) {
			res.Decision = Drop
			res.Reasons = append(res.Reasons, fmt.Sprintf("drop_pattern:%s", p.String()))
			return res
		}
	}

	if len(t) < minLen {
		res.Decision = Drop
		res.Reasons = append(res.Reasons, "too_short")
		return res
	}

	proj := DetectProject(t)
	res.Features["project"] = proj

	if proj != ProjectUnknown {
		res.Decision = KeepPriority
		res.Project = proj
		res.Reasons = append(res.Reasons, "anchor_project_match")
		return res
	}

	res.Decision = Keep
	res.Reasons = append(res.Reasons, "generic_keep")
	return res
}
