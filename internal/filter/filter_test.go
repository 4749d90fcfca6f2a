package filter

import "testing"

const filler = ", a longer body of text so the length floor does not interfere with the case"

func TestEvaluate_DropPatterns(t *testing.T) {
	for _, text := range []string{
		"massive airdrop for early users" + filler,
		"get on the whitelist today" + filler,
		"token giveaway, join now" + filler,
	} {
		res := Evaluate(text, "rss", "")
		if res.Decision != Drop {
			t.Errorf("expected DROP for %q, got %s", text, res.Decision)
		}
	}
}

func TestEvaluate_TooShort(t *testing.T) {
	res := Evaluate("short note", "", "")
	if res.Decision != Drop {
		t.Fatalf("expected DROP, got %s", res.Decision)
	}
	if len(res.Reasons) == 0 || res.Reasons[0] != "too_short" {
		t.Errorf("expected too_short reason, got %v", res.Reasons)
	}
}

func TestEvaluate_AnchorMatch(t *testing.T) {
	res := Evaluate("Bittensor subnet emissions changed again this epoch"+filler, "rss", "")
	if res.Decision != KeepPriority {
		t.Fatalf("expected KEEP_PRIORITY, got %s", res.Decision)
	}
	if res.Project != ProjectBittensor {
		t.Errorf("expected bittensor, got %q", res.Project)
	}
}

func TestEvaluate_GenericKeep(t *testing.T) {
	res := Evaluate("An unrelated but sufficiently long technology article about databases"+filler, "rss", "")
	if res.Decision != Keep {
		t.Fatalf("expected KEEP, got %s", res.Decision)
	}
	if res.Project != ProjectUnknown {
		t.Errorf("expected unknown project, got %q", res.Project)
	}
}

func TestDetectProject_WordBoundaries(t *testing.T) {
	// "akt" must match as a word, not inside another word.
	if got := DetectProject("the AKT token moved"); got != ProjectAkash {
		t.Errorf("expected akash, got %q", got)
	}
	if got := DetectProject("traktor sales are up"); got != ProjectUnknown {
		t.Errorf("expected unknown, got %q", got)
	}
}

func TestProjectObject(t *testing.T) {
	if ProjectObject[ProjectGaea] != "GAEA" {
		t.Errorf("unexpected object name: %q", ProjectObject[ProjectGaea])
	}
	if _, ok := ProjectObject[ProjectUnknown]; ok {
		t.Error("unknown must not map to an object")
	}
}
