package modutok

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveLoad_P5_RoundTrip(t *testing.T) {
	tok := buildS1Tokenizer(t)

	outDir := filepath.Join(t.TempDir(), "saved")
	require.NoError(t, tok.Save(outDir))

	loaded, err := Load(outDir)
	require.NoError(t, err)

	for _, text := range []string{"<@TOKENIZER-TYPE=AA>A C G <EOS>"} {
		before, err := tok.Encode(text, EncodeOptions{})
		require.NoError(t, err)
		after, err := loaded.Encode(text, EncodeOptions{})
		require.NoError(t, err)
		require.Equal(t, before.IDs, after.IDs)
	}

	require.Equal(t, tok.GetAddedVocab(), loaded.GetAddedVocab())
	require.Equal(t, tok.SubTokenizerNames(), loaded.SubTokenizerNames())
}

func TestSave_CreatesManifestAndJSONFiles(t *testing.T) {
	tok := buildS1Tokenizer(t)
	outDir := filepath.Join(t.TempDir(), "saved")
	require.NoError(t, tok.Save(outDir))

	require.FileExists(t, filepath.Join(outDir, "config.yaml"))
	require.FileExists(t, filepath.Join(outDir, "aa_modular.json"))
	require.FileExists(t, filepath.Join(outDir, "smiles_modular.json"))
}

func TestFromFile_RejectsNonDirectory(t *testing.T) {
	tok := buildS1Tokenizer(t)
	outDir := filepath.Join(t.TempDir(), "saved")
	require.NoError(t, tok.Save(outDir))

	_, err := FromFile(filepath.Join(outDir, "config.yaml"))
	require.Error(t, err)
	var ue *UnsupportedError
	require.ErrorAs(t, err, &ue)
}

func TestFromFile_LoadsDirectory(t *testing.T) {
	tok := buildS1Tokenizer(t)
	outDir := filepath.Join(t.TempDir(), "saved")
	require.NoError(t, tok.Save(outDir))

	loaded, err := FromFile(outDir)
	require.NoError(t, err)
	require.Equal(t, tok.GetAddedVocab(), loaded.GetAddedVocab())
}
