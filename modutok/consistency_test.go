package modutok

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fusedrug/go-modular-tokenizer/tokenizers/hftokenizer"
)

func makeSub(name string, added []AddedToken, vocab map[string]int) *subTokenizer {
	return &subTokenizer{
		descriptor: SubTokenizerDescriptor{Name: name},
		doc: &tokenizerDoc{
			AddedTokens: added,
			Model:       hftokenizer.Model{Vocab: vocab},
		},
	}
}

func commonAdded() []AddedToken {
	return []AddedToken{
		{ID: 0, Content: "<PAD>", Special: true},
		{ID: 1, Content: "<UNK>", Special: true},
	}
}

func TestCheckConsistency_Passes(t *testing.T) {
	tok := &Tokenizer{subs: []*subTokenizer{
		makeSub("AA", commonAdded(), map[string]int{"<PAD>": 0, "<UNK>": 1, "A": 2, "C": 3}),
		makeSub("SMILES", commonAdded(), map[string]int{"<PAD>": 0, "<UNK>": 1, "C": 4, "N": 5}),
	}}
	report := checkConsistency(tok)
	assert.True(t, report.IsConsistent())
	assert.Empty(t, report.SpecialOffenders)
	assert.Empty(t, report.CollisionOffenders)
}

func TestCheckConsistency_SpecialMismatch(t *testing.T) {
	tok := &Tokenizer{subs: []*subTokenizer{
		makeSub("AA", commonAdded(), map[string]int{"<PAD>": 0, "<UNK>": 1, "A": 2}),
		makeSub("SMILES", []AddedToken{{ID: 0, Content: "<PAD>", Special: true}}, map[string]int{"<PAD>": 0, "C": 4}),
	}}
	report := checkConsistency(tok)
	assert.False(t, report.IsConsistent())
	assert.False(t, report.SpecialsConsistent)
	assert.Contains(t, report.SpecialOffenders, "SMILES")
}

func TestCheckConsistency_CrossSubCollision(t *testing.T) {
	tok := &Tokenizer{subs: []*subTokenizer{
		makeSub("AA", commonAdded(), map[string]int{"<PAD>": 0, "<UNK>": 1, "A": 2}),
		makeSub("SMILES", commonAdded(), map[string]int{"<PAD>": 0, "<UNK>": 1, "C": 2}),
	}}
	report := checkConsistency(tok)
	assert.False(t, report.IsConsistent())
	assert.False(t, report.NoCrossCollisions)
	assert.Contains(t, report.CollisionOffenders, "SMILES")
}

func TestCheckConsistency_IntraSubDuplicate(t *testing.T) {
	tok := &Tokenizer{subs: []*subTokenizer{
		makeSub("AA", commonAdded(), map[string]int{"<PAD>": 0, "<UNK>": 1, "A": 2}),
		makeSub("SMILES", commonAdded(), map[string]int{"<PAD>": 0, "<UNK>": 1, "C": 3, "N": 3}),
	}}
	report := checkConsistency(tok)
	assert.False(t, report.IsConsistent())
	assert.False(t, report.NoIntraDuplicates)
}

func TestCheckConsistency_RegularCollidesWithSpecial(t *testing.T) {
	tok := &Tokenizer{subs: []*subTokenizer{
		makeSub("AA", commonAdded(), map[string]int{"<PAD>": 0, "<UNK>": 1, "A": 2}),
		makeSub("SMILES", commonAdded(), map[string]int{"<PAD>": 0, "<UNK>": 1, "C": 1}),
	}}
	report := checkConsistency(tok)
	assert.False(t, report.IsConsistent())
	assert.False(t, report.NoCrossCollisions)
	assert.Contains(t, report.CollisionOffenders, "<specials>")
}

func TestCheckConsistency_FewerThanTwoSubsTriviallyPasses(t *testing.T) {
	tok := &Tokenizer{subs: []*subTokenizer{
		makeSub("AA", commonAdded(), map[string]int{"<PAD>": 0, "<UNK>": 1, "A": 2}),
	}}
	assert.True(t, checkConsistency(tok).IsConsistent())
}
