package dictionary

import (
	"fmt"
	"strings"

	"loom/internal/services"
	"loom/internal/timeline"
)

// MissingWordsError reports transcript tokens absent from the dictionary.
// It unwraps to services.ErrVocabulary so the CLI maps it to its own exit
// code.
type MissingWordsError struct {
	Words []string
}

func (e *MissingWordsError) Error() string {
	if len(e.Words) == 1 {
		return fmt.Sprintf("1 word not in dictionary: %s", e.Words[0])
	}
	return fmt.Sprintf("%d words not in dictionary: %s", len(e.Words), strings.Join(e.Words, ", "))
}

func (e *MissingWordsError) Unwrap() error {
	return services.ErrVocabulary
}

// FindMissingWords normalizes every non-empty label on the given tiers and
// returns the tokens the dictionary lacks, deduplicated, in first-seen
// order. First-seen order keeps the report stable across runs and puts the
// earliest problem first, which is where a fix usually starts.
func FindMissingWords(tiers []*timeline.Tier, d *Dictionary) []string {
	var missing []string
	seen := make(map[string]struct{})
	for _, tier := range tiers {
		for _, label := range tier.Labels {
			if label.IsEmpty() {
				continue
			}
			for _, token := range Normalize(label.Text) {
				if d.Contains(token) {
					continue
				}
				if _, dup := seen[token]; dup {
					continue
				}
				seen[token] = struct{}{}
				missing = append(missing, token)
			}
		}
	}
	return missing
}

// Check runs FindMissingWords and converts a non-empty result into a
// *MissingWordsError.
func Check(tiers []*timeline.Tier, d *Dictionary) error {
	if missing := FindMissingWords(tiers, d); len(missing) > 0 {
		return &MissingWordsError{Words: missing}
	}
	return nil
}
