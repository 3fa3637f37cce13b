package modutok

import (
	"encoding/json"
	"sort"

	"github.com/pkg/errors"

	"github.com/fusedrug/go-modular-tokenizer/tokenizers/api"
)

// AddSpecialTokens is the Dynamic Special-Token Extension (C8): it adds new
// shared special tokens to every sub-tokenizer under the configured ID
// budgets, per spec.md §4.8. On any failure the tokenizer's previous state
// is left untouched (the new state is built into scratch structures and
// only swapped in once every sub-step has succeeded).
func (t *Tokenizer) AddSpecialTokens(texts []string) (int, error) {
	// Step 1: drop texts already present as specials.
	existing := make(map[string]bool, len(t.commonSpecials))
	for _, s := range t.commonSpecials {
		existing[s.Content] = true
	}
	fresh := make([]string, 0, len(texts))
	for _, text := range texts {
		if existing[text] {
			continue
		}
		fresh = append(fresh, text)
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	// Step 2: fail if any remaining text is a regular token anywhere.
	var collisions []string
	for _, text := range fresh {
		for _, sub := range t.subs {
			if _, ok := sub.doc.Model.Vocab[text]; ok {
				if special := addedTokenMap(sub); !special[text] {
					collisions = append(collisions, text)
					break
				}
			}
		}
	}
	if len(collisions) > 0 {
		return 0, newNameCollisionError(collisions)
	}

	// Step 3: compute start and check budget.
	start, err := t.nextSpecialStart(len(fresh))
	if err != nil {
		return 0, err
	}

	// Step 4: build new records.
	newRecords := make([]SpecialTokenRecord, len(fresh))
	for i, text := range fresh {
		newRecords[i] = SpecialTokenRecord{ID: start + i, Content: text, Special: true}
	}

	// Step 5: rebuild every sub-tokenizer against the extended special set.
	updatedSpecials := append(append([]SpecialTokenRecord{}, t.commonSpecials...), newRecords...)
	newSubs := make([]*subTokenizer, len(t.subs))
	for i, sub := range t.subs {
		doc := *sub.doc
		doc.AddedTokens = append(append([]AddedToken{}, doc.AddedTokens...), recordsToAddedTokens(newRecords)...)
		sort.SliceStable(doc.AddedTokens, func(a, b int) bool { return doc.AddedTokens[a].ID < doc.AddedTokens[b].ID })

		vocab := make(map[string]int, len(doc.Model.Vocab)+len(newRecords))
		for text, id := range doc.Model.Vocab {
			vocab[text] = id
		}
		for _, r := range newRecords {
			vocab[r.Content] = r.ID
		}
		doc.Model.Vocab = vocab

		content, err := marshalDoc(&doc)
		if err != nil {
			return 0, err
		}
		engine, err := t.engineConstructor(content)
		if err != nil {
			return 0, errors.Wrapf(err, "failed to re-instantiate sub-tokenizer %q", sub.descriptor.Name)
		}
		if sub.descriptor.MaxLen != nil {
			if err := engine.EnableTruncation(int(*sub.descriptor.MaxLen), api.Right); err != nil {
				return 0, errors.Wrapf(err, "failed to re-apply truncation for sub-tokenizer %q", sub.descriptor.Name)
			}
		}
		roundTripped, err := engine.Serialize()
		if err != nil {
			return 0, errors.Wrapf(err, "failed to serialize sub-tokenizer %q", sub.descriptor.Name)
		}
		var finalDoc tokenizerDoc
		if err := json.Unmarshal(roundTripped, &finalDoc); err != nil {
			return 0, errors.Wrapf(err, "failed to round-trip sub-tokenizer %q", sub.descriptor.Name)
		}
		newSubs[i] = &subTokenizer{descriptor: sub.descriptor, doc: &finalDoc, engine: engine}
	}

	scratch := &Tokenizer{
		names:              t.names,
		index:              t.index,
		subs:               newSubs,
		commonSpecials:     updatedSpecials,
		maxPossibleTokenID: t.maxPossibleTokenID,
		maxSpecialTokenID:  t.maxSpecialTokenID,
		maxLen:             t.maxLen,
		padToken:           t.padToken,
		padTokenID:         t.padTokenID,
		padTokenTypeID:     t.padTokenTypeID,
		engineConstructor:  t.engineConstructor,
	}

	// Step 6: C4 must pass, then rebuild C5.
	if err := runConsistencyCheck(scratch); err != nil {
		return 0, err
	}
	buildReverseIndex(scratch)

	*t = *scratch
	return len(newRecords), nil
}

// nextSpecialStart implements the two-regime start computation of C8 step 3.
func (t *Tokenizer) nextSpecialStart(count int) (int, error) {
	maxExistingSpecial := -1
	for _, s := range t.commonSpecials {
		if s.ID > maxExistingSpecial {
			maxExistingSpecial = s.ID
		}
	}

	if t.maxSpecialTokenID != nil {
		limit := int(*t.maxSpecialTokenID)
		start := maxExistingSpecial + 1
		if limit+1-start < count {
			return 0, newBudgetExceededError("max_special_token_id", start+count-1, limit)
		}
		return start, nil
	}

	maxExistingID := maxObservedID(t)
	start := maxExistingID + 1
	if t.maxPossibleTokenID != nil {
		limit := int(*t.maxPossibleTokenID)
		if limit+1-start < count {
			return 0, newBudgetExceededError("max_possible_token_id", start+count-1, limit)
		}
	}
	return start, nil
}
