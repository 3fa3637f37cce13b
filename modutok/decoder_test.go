package modutok

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildReverseIndex_S6(t *testing.T) {
	tok := &Tokenizer{subs: []*subTokenizer{
		makeSub("AA", []AddedToken{
			{ID: 0, Content: "<PAD>", Special: true},
			{ID: 1, Content: "<UNK>", Special: true},
			{ID: 2, Content: "<EOS>", Special: true},
		}, map[string]int{"<PAD>": 0, "<UNK>": 1, "<EOS>": 2, "A": 3, "C": 4, "G": 5}),
	}}
	buildReverseIndex(tok)

	assert.Equal(t, "<PAD>ACG<EOS>", tok.Decode([]int{0, 3, 4, 5, 2}, false))
	assert.Equal(t, "ACG", tok.Decode([]int{0, 3, 4, 5, 2}, true))
}

func TestBuildReverseIndex_MissingID(t *testing.T) {
	tok := &Tokenizer{subs: []*subTokenizer{
		makeSub("AA", commonAdded(), map[string]int{"<PAD>": 0, "<UNK>": 1, "A": 2}),
	}}
	buildReverseIndex(tok)

	assert.Equal(t, "<@TOKEN_MISSING-999>", tok.Decode([]int{999}, false))
}

func TestBuildReverseIndex_IDToToken(t *testing.T) {
	tok := &Tokenizer{subs: []*subTokenizer{
		makeSub("AA", commonAdded(), map[string]int{"<PAD>": 0, "<UNK>": 1, "A": 2}),
	}}
	buildReverseIndex(tok)

	text, ok := tok.IDToToken(2)
	assert.True(t, ok)
	assert.Equal(t, "A", text)

	_, ok = tok.IDToToken(404)
	assert.False(t, ok)
}

func TestBuildReverseIndex_SecondSubContributesOnlyRegulars(t *testing.T) {
	tok := &Tokenizer{subs: []*subTokenizer{
		makeSub("AA", commonAdded(), map[string]int{"<PAD>": 0, "<UNK>": 1, "A": 2}),
		makeSub("SMILES", commonAdded(), map[string]int{"<PAD>": 0, "<UNK>": 1, "C": 3}),
	}}
	buildReverseIndex(tok)

	assert.Len(t, tok.decoderIndex, 4)
	entry, ok := tok.decoderIndex[3]
	assert.True(t, ok)
	assert.False(t, entry.Special)
}
