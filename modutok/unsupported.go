package modutok

import "github.com/fusedrug/go-modular-tokenizer/tokenizers/api"

// The operations below are inherited surface from the original system that
// was already stubbed there (spec.md §9 design notes, Q3). They are kept
// here, named, so a caller reaching for them gets a documented
// UnsupportedError instead of a missing method.

// AddTokens would add non-special regular tokens to an existing
// sub-tokenizer's vocabulary after construction. The original stubs this
// with "not implemented"; AddSpecialTokens (C8) is the only supported
// runtime mutation.
func (t *Tokenizer) AddTokens(domain string, tokens []string) (int, error) {
	return 0, newUnsupportedError("add_tokens")
}

// AddTokenizers would append whole new sub-tokenizers to an already-built
// modular tokenizer. Not supported: every sub-tokenizer must be known at
// Assembler time so the unified ID space can be computed once.
func (t *Tokenizer) AddTokenizers(descriptors []SubTokenizerDescriptor) error {
	return newUnsupportedError("add_tokenizers")
}

// EncodeBatch would encode multiple inputs in one call. Callers needing
// batching can loop over Encode; no batching optimization is implemented.
func (t *Tokenizer) EncodeBatch(texts []string, opts EncodeOptions) ([]api.Encoding, error) {
	return nil, newUnsupportedError("encode_batch")
}

// DecodeBatch would decode multiple ID sequences in one call.
func (t *Tokenizer) DecodeBatch(idsList [][]int, skipSpecialTokens bool) ([]string, error) {
	return nil, newUnsupportedError("decode_batch")
}

// Train would fit a sub-tokenizer's merges/vocab from a corpus. Training is
// explicitly out of scope (spec.md §1 Non-goals): sub-tokenizers arrive
// pre-trained as serialized JSON.
func (t *Tokenizer) Train(domain string, files []string) error {
	return newUnsupportedError("train")
}

// TrainFromIterator is Train's streaming-corpus variant; same exclusion.
func (t *Tokenizer) TrainFromIterator(domain string, corpus func() (string, bool)) error {
	return newUnsupportedError("train_from_iterator")
}

// FromBuffer would construct a tokenizer from an in-memory serialized
// manifest rather than a directory. Not implemented: Load/FromFile require
// a real directory so sub-tokenizer JSON paths can be resolved relative to
// it.
func FromBuffer(data []byte) (*Tokenizer, error) {
	return nil, newUnsupportedError("from_buffer")
}

// FromPretrained would fetch a published tokenizer by name from a model
// hub. Out of scope: this module has no network/hub collaborator (spec.md
// §1 Non-goals).
func FromPretrained(name string) (*Tokenizer, error) {
	return nil, newUnsupportedError("from_pretrained")
}

// FromStr would parse a tokenizer from a raw manifest string. Not
// implemented for the same reason as FromBuffer.
func FromStr(data string) (*Tokenizer, error) {
	return nil, newUnsupportedError("from_str")
}
