package modutok

import "sort"

// remapVocabulary is the Vocabulary Remapper (C2): a pure function from a
// raw text->id vocab plus the shared specials to a new vocab where specials
// keep their given IDs and regulars are renumbered contiguously from start,
// preserving their original relative order (I6).
//
// A vocab entry whose text is also a special token's content is dropped
// from the regulars: specials own that text now, and silently removing the
// stale regular entry (rather than failing) is what lets a sub-tokenizer's
// own previously-added specials be replaced by the shared block during a
// fresh build.
func remapVocabulary(vocab map[string]int, specials []SpecialTokenRecord, start *int) (map[string]int, int) {
	specialTexts := make(map[string]bool, len(specials))
	maxSpecialID := -1
	for _, s := range specials {
		specialTexts[s.Content] = true
		if s.ID > maxSpecialID {
			maxSpecialID = s.ID
		}
	}

	st := maxSpecialID + 1
	if start != nil {
		st = *start
	}

	type regular struct {
		text string
		id   int
	}
	regulars := make([]regular, 0, len(vocab))
	for text, id := range vocab {
		if specialTexts[text] {
			continue
		}
		regulars = append(regulars, regular{text: text, id: id})
	}
	sort.SliceStable(regulars, func(i, j int) bool {
		return regulars[i].id < regulars[j].id
	})

	newVocab := make(map[string]int, len(regulars)+len(specials))
	for _, s := range specials {
		newVocab[s.Content] = s.ID
	}
	next := st
	for _, r := range regulars {
		newVocab[r.text] = next
		next++
	}

	return newVocab, next
}
