// Package signal implements the independent heuristic checks that feed the
// ad-detection aggregator. Extractors are pure: evidence in, result out,
// no I/O and no shared state.
package signal

import (
	"fmt"
	"strings"

	"github.com/sells-group/market-intel/internal/model"
)

// ReasonNoData is returned when an extractor receives no usable evidence.
const ReasonNoData = "no_data"

// Extractor is one independent check against a single evidence source.
type Extractor interface {
	// Name identifies the extractor in logs and audit trails.
	Name() string
	// Check evaluates the evidence. It never returns an error: missing
	// evidence resolves to a negative result with reason "no_data", and a
	// fetch failure to "error:<cause>".
	Check(ev model.Evidence) model.SignalResult
}

// resolveUnusable handles the evidence states shared by all extractors.
// The second return is false when the evidence is usable.
func resolveUnusable(ev model.Evidence) (model.SignalResult, bool) {
	if ev.FetchErr != "" {
		return model.SignalResult{Positive: false, Reason: "error:" + ev.FetchErr}, true
	}
	if ev.Empty() {
		return model.SignalResult{Positive: false, Reason: ReasonNoData}, true
	}
	return model.SignalResult{}, false
}

// KeywordExtractor flags evidence whose text contains any of a fixed list of
// target substrings, case-insensitively.
type KeywordExtractor struct {
	name     string
	keywords []string
}

// NewKeywordExtractor creates a keyword extractor. The keyword list is
// captured as-is; callers pass an immutable configuration slice.
func NewKeywordExtractor(name string, keywords []string) *KeywordExtractor {
	return &KeywordExtractor{name: name, keywords: keywords}
}

// Name returns the extractor name.
func (k *KeywordExtractor) Name() string { return k.name }

// Check matches the configured keywords against the evidence text.
func (k *KeywordExtractor) Check(ev model.Evidence) model.SignalResult {
	if res, done := resolveUnusable(ev); done {
		return res
	}

	matched := matchKeywords(k.keywords, ev.Text)
	if len(matched) == 0 {
		return model.SignalResult{Positive: false, Reason: "no indicators found"}
	}

	shown := matched
	if len(shown) > 3 {
		shown = shown[:3]
	}
	return model.SignalResult{
		Positive: true,
		Reason:   fmt.Sprintf("matched %d indicator(s): %s", len(matched), strings.Join(shown, ", ")),
	}
}

// matchKeywords returns the keywords that appear (case-insensitive) in text,
// preserving configuration order so reasons are reproducible run-to-run.
func matchKeywords(keywords []string, text string) []string {
	lower := strings.ToLower(text)
	var matched []string
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	return matched
}
