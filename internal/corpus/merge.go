package corpus

import (
	"strings"

	"github.com/ppiankov/intentbot/internal/ierrors"
)

// Merge folds incoming into base and returns base.
//
// An intent already in base gains only the incoming examples it does not have
// yet (exact match), skipping blank ones; order is preserved and new examples go
// at the end. An intent not in base is appended as-is. Merging the same batch
// twice adds nothing the second time.
//
// Every incoming intent must carry an examples field; base is left untouched
// when one does not.
func Merge(base, incoming *Corpus) (*Corpus, error) {
	if base == nil || incoming == nil {
		return nil, ierrors.Newf(ierrors.KindTypeError, "merge corpus", "", "both corpora are required")
	}

	for _, in := range incoming.Intents {
		if in.Examples == nil {
			return nil, ierrors.Newf(ierrors.KindMissingExamples, "merge corpus", "", "intent %q has no examples field", in.Name)
		}
	}

	for _, in := range incoming.Intents {
		idx := base.index(in.Name)
		if idx < 0 {
			base.Intents = append(base.Intents, in.clone())
			continue
		}

		existing := &base.Intents[idx]
		have := make(map[string]bool, len(existing.Examples))
		for _, ex := range existing.Examples {
			have[ex] = true
		}
		for _, ex := range in.Examples {
			if have[ex] || strings.TrimSpace(ex) == "" {
				continue
			}
			existing.Examples = append(existing.Examples, ex)
			have[ex] = true
		}
	}

	return base, nil
}
