package modutok

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/fusedrug/go-modular-tokenizer/tokenizers/api"
	"github.com/fusedrug/go-modular-tokenizer/tokenizers/hftokenizer"
)

// tokenizerDoc is the raw tokenizer.json document a sub-tokenizer's
// descriptor points at. The assembler and C8 mutate it directly (added
// tokens, model vocab) before handing it to an EngineConstructor; outside
// of that seam, modutok only ever talks to a sub-tokenizer through
// tokenizers/api.Tokenizer. Reusing hftokenizer's document type here,
// instead of inventing a second schema, is a deliberate scope limit: this
// module ships exactly one engine family.
type tokenizerDoc = hftokenizer.TokenizerJSON

// AddedToken is a raw tokenizer.json added-token entry, reused verbatim
// from hftokenizer for the same reason as tokenizerDoc above.
type AddedToken = hftokenizer.AddedToken

func readDoc(path string) (*tokenizerDoc, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sub-tokenizer json %q", path)
	}
	var doc tokenizerDoc
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, errors.Wrapf(err, "failed to parse sub-tokenizer json %q", path)
	}
	return &doc, nil
}

func marshalDoc(doc *tokenizerDoc) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal sub-tokenizer json")
	}
	return data, nil
}

// defaultEngineConstructor builds a hftokenizer.Tokenizer, the only engine
// family this module ships.
func defaultEngineConstructor(content []byte) (api.Tokenizer, error) {
	return hftokenizer.NewFromContent(content)
}
