package modutok

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirectives_S3(t *testing.T) {
	input := "<@TOKENIZER-TYPE=AA>ACG<EOS><@TOKENIZER-TYPE=SMILES>CNO<EOS>"
	segs, err := parseDirectives(input)
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, segment{Domain: "AA", Text: "ACG<EOS>"}, segs[0])
	assert.Equal(t, segment{Domain: "SMILES", Text: "CNO<EOS>"}, segs[1])
}

func TestParseDirectives_Empty(t *testing.T) {
	segs, err := parseDirectives("")
	require.NoError(t, err)
	assert.Nil(t, segs)
}

func TestParseDirectives_TextBeforeFirstDirective(t *testing.T) {
	_, err := parseDirectives("hello<@TOKENIZER-TYPE=AA>ACG")
	require.Error(t, err)
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestParseDirectives_NoDirectivesAtAll(t *testing.T) {
	_, err := parseDirectives("plain text, no directive")
	require.Error(t, err)
}

func TestParseDirectives_SingleDirectiveEmptyBody(t *testing.T) {
	segs, err := parseDirectives("<@TOKENIZER-TYPE=AA>")
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, "AA", segs[0].Domain)
	assert.Equal(t, "", segs[0].Text)
}

func TestParseDirectives_ThreeSegments(t *testing.T) {
	segs, err := parseDirectives("<@TOKENIZER-TYPE=A>x<@TOKENIZER-TYPE=B>y<@TOKENIZER-TYPE=C>z")
	require.NoError(t, err)
	require.Len(t, segs, 3)
	assert.Equal(t, "x", segs[0].Text)
	assert.Equal(t, "y", segs[1].Text)
	assert.Equal(t, "z", segs[2].Text)
}
