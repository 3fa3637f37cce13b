package modutok

import (
	"fmt"
	"strings"

	"k8s.io/klog/v2"
)

// buildReverseIndex is the Reverse Index (C5): a global id -> (token text,
// is_special) map. The first sub-tokenizer contributes its specials and its
// regulars; every later one contributes only its regulars, since I5
// guarantees those never collide once C4 has passed. A collision reaching
// here means an invariant broke somewhere upstream; it is logged and the
// first entry wins rather than failing, since decode has no other way to
// report it.
func buildReverseIndex(t *Tokenizer) {
	index := make(map[int]decoderEntry)

	for i, sub := range t.subs {
		if i == 0 {
			for _, at := range sub.doc.AddedTokens {
				if _, exists := index[at.ID]; exists {
					klog.Warningf("modutok: decoder_index collision on id %d while registering specials from %q, keeping first entry", at.ID, sub.descriptor.Name)
					continue
				}
				index[at.ID] = decoderEntry{Text: at.Content, Special: true}
			}
		}
		special := addedTokenMap(sub)
		for text, id := range sub.doc.Model.Vocab {
			if _, ok := special[text]; ok {
				continue
			}
			if _, exists := index[id]; exists {
				klog.Warningf("modutok: decoder_index collision on id %d while registering regulars from %q, keeping first entry", id, sub.descriptor.Name)
				continue
			}
			index[id] = decoderEntry{Text: text, Special: false}
		}
	}

	t.decoderIndex = index
}

// Decode renders a sequence of ids back to text. An id with no entry in the
// reverse index becomes the sentinel "<@TOKEN_MISSING-{id}>"; skipSpecial
// drops special-token entries from the output instead of rendering them.
func (t *Tokenizer) Decode(ids []int, skipSpecial bool) string {
	var b strings.Builder
	for _, id := range ids {
		entry, ok := t.decoderIndex[id]
		if !ok {
			b.WriteString(fmt.Sprintf("<@TOKEN_MISSING-%d>", id))
			continue
		}
		if skipSpecial && entry.Special {
			continue
		}
		b.WriteString(entry.Text)
	}
	return b.String()
}

// IDToToken looks up an id's token text through the reverse index.
func (t *Tokenizer) IDToToken(id int) (string, bool) {
	entry, ok := t.decoderIndex[id]
	if !ok {
		return "", false
	}
	return entry.Text, true
}
