// Package modutok assembles a set of independently trained sub-tokenizer
// engines (package tokenizers/hftokenizer, behind the tokenizers/api.Tokenizer
// contract) into one modular tokenizer with a single disjoint ID space:
// shared special tokens at the bottom of the range, then one contiguous
// regular-token band per sub-tokenizer.
package modutok

import "github.com/fusedrug/go-modular-tokenizer/tokenizers/api"

// SpecialTokenRecord is a special token shared, byte-for-byte, across every
// sub-tokenizer of a modular tokenizer.
type SpecialTokenRecord = api.SpecialToken

// SubTokenizerDescriptor is the configuration half of a sub-tokenizer: its
// name, a numeric id kept in the manifest, and the JSON paths persistence
// reads from and writes to. Encoding does not read TokenizerID: EncodeList
// stamps each segment's sequence id with its 1-based position.
type SubTokenizerDescriptor struct {
	Name            string  `yaml:"name"`
	TokenizerID     uint32  `yaml:"tokenizer_id"`
	JSONPath        string  `yaml:"json_path,omitempty"`
	ModularJSONPath string  `yaml:"modular_json_path"`
	MaxLen          *uint32 `yaml:"max_len,omitempty"`
}

// EngineConstructor builds a sub-tokenizer engine from a tokenizer.json
// document. Tests and alternative engines can supply their own; New and
// Load default to the hftokenizer package.
type EngineConstructor func(content []byte) (api.Tokenizer, error)

// subTokenizer is the runtime state of one sub-tokenizer: the descriptor
// plus its JSON document and live engine. The two are kept in lockstep by
// every mutation path (assembler, C8): write JSON, rebuild the engine, then
// round-trip the engine's own serialization back into the JSON document.
type subTokenizer struct {
	descriptor SubTokenizerDescriptor
	doc        *tokenizerDoc
	engine     api.Tokenizer
}

// decoderEntry is one entry of the global ID -> token reverse index (C5).
type decoderEntry struct {
	Text    string
	Special bool
}

// Tokenizer is the assembled modular tokenizer (spec: ModularTokenizer).
// Mutating operations (New, Load, AddSpecialTokens, Save) require exclusive
// caller access; Encode, EncodeList and Decode are pure reads safe to call
// concurrently once construction has returned.
type Tokenizer struct {
	names []string
	index map[string]int
	subs  []*subTokenizer

	commonSpecials []SpecialTokenRecord

	maxPossibleTokenID *uint32
	maxSpecialTokenID  *uint32

	maxLen         *uint32
	padToken       *string
	padTokenID     *uint32
	padTokenTypeID uint32

	decoderIndex map[int]decoderEntry

	engineConstructor EngineConstructor
}

// SubTokenizerNames returns the sub-tokenizer names in descriptor order —
// the same order that governs first-match token_to_id search and
// save/load round-trips.
func (t *Tokenizer) SubTokenizerNames() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

func (t *Tokenizer) lookup(name string) (*subTokenizer, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.subs[i], true
}

// CommonSpecials returns the shared special-token block, in assignment order.
func (t *Tokenizer) CommonSpecials() []SpecialTokenRecord {
	out := make([]SpecialTokenRecord, len(t.commonSpecials))
	copy(out, t.commonSpecials)
	return out
}
