package modutok

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemapVocabulary_S1(t *testing.T) {
	specials := []SpecialTokenRecord{
		{ID: 0, Content: "<PAD>", Special: true},
		{ID: 1, Content: "<UNK>", Special: true},
		{ID: 2, Content: "<EOS>", Special: true},
	}

	vocab := map[string]int{"A": 0, "C": 1, "G": 2}
	newVocab, next := remapVocabulary(vocab, specials, nil)

	assert.Equal(t, map[string]int{
		"<PAD>": 0, "<UNK>": 1, "<EOS>": 2,
		"A": 3, "C": 4, "G": 5,
	}, newVocab)
	assert.Equal(t, 6, next)
}

func TestRemapVocabulary_S2_MaxSpecialTokenID(t *testing.T) {
	specials := []SpecialTokenRecord{
		{ID: 0, Content: "<PAD>", Special: true},
		{ID: 1, Content: "<UNK>", Special: true},
		{ID: 2, Content: "<EOS>", Special: true},
	}
	start := 10
	vocab := map[string]int{"A": 0, "C": 1, "G": 2}
	newVocab, next := remapVocabulary(vocab, specials, &start)

	assert.Equal(t, 10, newVocab["A"])
	assert.Equal(t, 11, newVocab["C"])
	assert.Equal(t, 12, newVocab["G"])
	assert.Equal(t, 13, next)
}

func TestRemapVocabulary_PreservesOriginalOrder(t *testing.T) {
	vocab := map[string]int{"z": 5, "a": 1, "m": 3}
	newVocab, next := remapVocabulary(vocab, nil, nil)

	assert.Equal(t, 0, newVocab["a"])
	assert.Equal(t, 1, newVocab["m"])
	assert.Equal(t, 2, newVocab["z"])
	assert.Equal(t, 3, next)
}

func TestRemapVocabulary_DropsRegularEntryMatchingSpecialContent(t *testing.T) {
	specials := []SpecialTokenRecord{{ID: 0, Content: "[UNK]", Special: true}}
	vocab := map[string]int{"[UNK]": 7, "hello": 0}
	newVocab, _ := remapVocabulary(vocab, specials, nil)

	assert.Equal(t, 0, newVocab["[UNK]"])
	assert.Equal(t, 1, newVocab["hello"])
	assert.Len(t, newVocab, 2)
}

func TestRemapVocabulary_EmptySpecials(t *testing.T) {
	vocab := map[string]int{"x": 0}
	newVocab, next := remapVocabulary(vocab, nil, nil)
	assert.Equal(t, 0, newVocab["x"])
	assert.Equal(t, 1, next)
}
