package modutok

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fusedrug/go-modular-tokenizer/tokenizers/api"
)

func TestTokenToID_S4_AmbiguousWithoutDomain(t *testing.T) {
	tok := buildS1Tokenizer(t)

	_, _, err := tok.TokenToID("C", "")
	require.Error(t, err)
	var ate *AmbiguousTokenError
	require.ErrorAs(t, err, &ate)
}

func TestTokenToID_S4_UnambiguousWithDomain(t *testing.T) {
	tok := buildS1Tokenizer(t)

	id, ok, err := tok.TokenToID("C", "AA")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 4, id)
}

func TestTokenToID_UnknownDomain(t *testing.T) {
	tok := buildS1Tokenizer(t)

	_, _, err := tok.TokenToID("A", "PROTEIN")
	require.Error(t, err)
	var ude *UnknownDomainError
	require.ErrorAs(t, err, &ude)
}

func TestTokenToID_NotFoundAnywhere(t *testing.T) {
	tok := buildS1Tokenizer(t)

	_, ok, err := tok.TokenToID("Z", "")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTokenToID_SharedSpecialIsUnambiguous(t *testing.T) {
	tok := buildS1Tokenizer(t)

	id, ok, err := tok.TokenToID("<EOS>", "")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, id)
}

func TestGetMaxTokenID_And_GetMaxID_NoCeiling(t *testing.T) {
	tok := buildS1Tokenizer(t)

	// S1 layout: specials 0-2, AA regulars 3-5, SMILES regulars 6-8.
	require.Equal(t, 8, tok.GetMaxTokenID())
	require.Equal(t, 8, tok.GetMaxID())
}

func TestGetMaxID_ConfiguredCeilingAboveRealMax(t *testing.T) {
	dir := t.TempDir()
	aaPath := writeTokenizerJSON(t, dir, "aa_src", map[string]int{"A": 0, "C": 1, "G": 2})
	smilesPath := writeTokenizerJSON(t, dir, "smiles_src", map[string]int{"C": 0, "N": 1, "O": 2})

	ceiling := uint32(20)
	tok, err := New(AssemblerConfig{
		SpecialTokens: []SpecialTokenRecord{
			{Content: "<PAD>", Special: true},
			{Content: "<UNK>", Special: true},
		},
		MaxPossibleTokenID: &ceiling,
		TokenizerDescriptors: []SubTokenizerDescriptor{
			{Name: "AA", JSONPath: aaPath, ModularJSONPath: filepath.Join(dir, "aa_modular.json")},
			{Name: "SMILES", JSONPath: smilesPath, ModularJSONPath: filepath.Join(dir, "smiles_modular.json")},
		},
	})
	require.NoError(t, err)

	real := tok.GetMaxTokenID()
	require.Less(t, real, int(ceiling))
	require.Equal(t, int(ceiling), tok.GetMaxID())
}

func TestGetMinMaxSentinels_FindsDigitsAfterPrefix(t *testing.T) {
	tok := &Tokenizer{
		commonSpecials: []SpecialTokenRecord{
			{ID: 0, Content: "<PAD>", Special: true},
			{ID: 1, Content: "<SENTINEL_ID_101>", Special: true},
			{ID: 2, Content: "<SENTINEL_ID_5>", Special: true},
			{ID: 3, Content: "<SENTINEL_ID_42>", Special: true},
		},
	}

	min, max, err := tok.GetMinMaxSentinels("<SENTINEL_ID_")
	require.NoError(t, err)
	require.Equal(t, 5, min)
	require.Equal(t, 101, max)
}

func TestGetMinMaxSentinels_NoneFound(t *testing.T) {
	tok := &Tokenizer{
		commonSpecials: []SpecialTokenRecord{
			{ID: 0, Content: "<PAD>", Special: true},
			{ID: 1, Content: "<UNK>", Special: true},
		},
	}

	_, _, err := tok.GetMinMaxSentinels("<SENTINEL_ID_")
	require.Error(t, err)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
}

func TestEnablePadding_SetsDefaults(t *testing.T) {
	tok := buildS1Tokenizer(t)

	padID := tok.GetAddedVocab()["<PAD>"]
	padToken := "<PAD>"
	length := 6
	require.NoError(t, tok.EnablePadding(api.Right, &padID, 0, &padToken, &length))

	require.NotNil(t, tok.padTokenID)
	require.Equal(t, uint32(padID), *tok.padTokenID)
	require.NotNil(t, tok.padToken)
	require.Equal(t, padToken, *tok.padToken)
	require.NotNil(t, tok.maxLen)
	require.Equal(t, uint32(length), *tok.maxLen)

	enc, err := tok.Encode("<@TOKENIZER-TYPE=AA>A C", EncodeOptions{})
	require.NoError(t, err)
	require.Len(t, enc.IDs, 6)
}

func TestEnablePadding_RejectsLeftDirection(t *testing.T) {
	tok := buildS1Tokenizer(t)

	err := tok.EnablePadding(api.Left, nil, 0, nil, nil)
	require.Error(t, err)
	var ue *UnsupportedError
	require.ErrorAs(t, err, &ue)
}

func TestEnableTruncation_SetsDefaultMaxLen(t *testing.T) {
	tok := buildS1Tokenizer(t)

	require.NoError(t, tok.EnableTruncation(2, 0, "longest_first", api.Right))
	require.NotNil(t, tok.maxLen)
	require.Equal(t, uint32(2), *tok.maxLen)

	enc, err := tok.Encode("<@TOKENIZER-TYPE=AA>A C G", EncodeOptions{})
	require.NoError(t, err)
	require.Len(t, enc.IDs, 2)
}

func TestEnableTruncation_RejectsNonZeroStride(t *testing.T) {
	tok := buildS1Tokenizer(t)

	err := tok.EnableTruncation(2, 1, "longest_first", api.Right)
	require.Error(t, err)
	var ue *UnsupportedError
	require.ErrorAs(t, err, &ue)
}

func TestEnableTruncation_RejectsNonDefaultStrategy(t *testing.T) {
	tok := buildS1Tokenizer(t)

	err := tok.EnableTruncation(2, 0, "only_first", api.Right)
	require.Error(t, err)
	var ue *UnsupportedError
	require.ErrorAs(t, err, &ue)
}

func TestEnableTruncation_RejectsLeftDirection(t *testing.T) {
	tok := buildS1Tokenizer(t)

	err := tok.EnableTruncation(2, 0, "longest_first", api.Left)
	require.Error(t, err)
	var ue *UnsupportedError
	require.ErrorAs(t, err, &ue)
}

func TestValidateEndsWith_Succeeds(t *testing.T) {
	require.NoError(t, ValidateEndsWith("A C G <EOS>", "<EOS>"))
}

func TestValidateEndsWith_FailsWhenMissing(t *testing.T) {
	err := ValidateEndsWith("A C G", "<EOS>")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestValidateEndsWith_FailsWhenTextShorterThanSuffix(t *testing.T) {
	err := ValidateEndsWith("A", "<EOS>")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}
