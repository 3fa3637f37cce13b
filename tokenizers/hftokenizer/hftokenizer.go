// Package hftokenizer implements a tokenizer for HuggingFace's tokenizer.json format.
// This format is used by the HuggingFace Tokenizers library (the "fast" tokenizers)
// and supports WordPiece (BERT), BPE (GPT-2, RoBERTa), and Unigram models.
//
// It is the sole concrete implementation of tokenizers/api.Tokenizer shipped
// in this module: a sub-tokenizer engine that the assembly core (package
// modutok) wraps, remaps and composes, but never reaches inside of.
package hftokenizer

import (
	"encoding/json"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"

	"github.com/fusedrug/go-modular-tokenizer/tokenizers/api"
)

// TokenizerJSON represents the structure of HuggingFace's tokenizer.json file.
type TokenizerJSON struct {
	Version       string          `json:"version"`
	Truncation    json.RawMessage `json:"truncation"`
	Padding       json.RawMessage `json:"padding"`
	AddedTokens   []AddedToken    `json:"added_tokens"`
	Normalizer    *Normalizer     `json:"normalizer"`
	PreTokenizer  *PreTokenizer   `json:"pre_tokenizer"`
	PostProcessor *PostProcessor  `json:"post_processor"`
	Decoder       *Decoder        `json:"decoder"`
	Model         Model           `json:"model"`
}

// AddedToken represents a special token added to the vocabulary.
type AddedToken struct {
	ID         int    `json:"id"`
	Content    string `json:"content"`
	SingleWord bool   `json:"single_word"`
	Lstrip     bool   `json:"lstrip"`
	Rstrip     bool   `json:"rstrip"`
	Normalized bool   `json:"normalized"`
	Special    bool   `json:"special"`
}

// Normalizer represents the normalizer configuration.
type Normalizer struct {
	Type        string       `json:"type"`
	Lowercase   bool         `json:"lowercase"`
	Normalizer  *Normalizer  `json:"normalizer"`
	Pattern     *Pattern     `json:"pattern"`
	Normalizers []Normalizer `json:"normalizers"`
}

// Pattern for regex-based operations.
type Pattern struct {
	Regex  string `json:"Regex,omitempty"`
	String string `json:"String,omitempty"`
}

// PreTokenizer represents the pre-tokenizer configuration.
type PreTokenizer struct {
	Type           string         `json:"type"`
	AddPrefixSpace bool           `json:"add_prefix_space"`
	PreTokenizers  []PreTokenizer `json:"pretokenizers"`
	Pattern        *Pattern       `json:"pattern"`
	Behavior       string         `json:"behavior"`
	Invert         bool           `json:"invert"`
}

// PostProcessor represents the post-processor configuration.
type PostProcessor struct {
	Type          string                          `json:"type"`
	Single        []PostProcItem                  `json:"single"`
	Pair          []PostProcItem                  `json:"pair"`
	SpecialTokens map[string]PostProcSpecialToken `json:"special_tokens"`
}

// PostProcItem is an item in post-processing.
type PostProcItem struct {
	ID           string `json:"id,omitempty"`
	TypeID       int    `json:"type_id"`
	SpecialToken *struct {
		ID     string `json:"id"`
		TypeID int    `json:"type_id"`
	} `json:"SpecialToken,omitempty"`
	Sequence *struct {
		ID     string `json:"id"`
		TypeID int    `json:"type_id"`
	} `json:"Sequence,omitempty"`
}

// PostProcSpecialToken defines a special token for post-processing.
type PostProcSpecialToken struct {
	ID     string   `json:"id"`
	IDs    []int    `json:"ids"`
	Tokens []string `json:"tokens"`
}

// Decoder represents the decoder configuration.
type Decoder struct {
	Type     string    `json:"type"`
	Prefix   string    `json:"prefix"`
	Suffix   string    `json:"suffix"`
	Decoders []Decoder `json:"decoders"`
	Pattern  *Pattern  `json:"pattern"`
	Content  string    `json:"content"`
}

// Model represents the tokenizer model (WordPiece, BPE, or Unigram).
type Model struct {
	Type                    string         `json:"type"`
	Vocab                   map[string]int `json:"vocab"`
	Merges                  []string       `json:"merges"`
	UnkToken                string         `json:"unk_token"`
	ContinuingSubwordPrefix string         `json:"continuing_subword_prefix"`
	MaxInputCharsPerWord    int            `json:"max_input_chars_per_word"`
	FuseUnk                 bool           `json:"fuse_unk"`
	ByteFallback            bool           `json:"byte_fallback"`
	Dropout                 *float64       `json:"dropout"`
	EndOfWordSuffix         string         `json:"end_of_word_suffix"`
}

// Tokenizer implements the api.Tokenizer interface for HuggingFace tokenizer.json files.
type Tokenizer struct {
	tokenizer  *TokenizerJSON
	idToToken  map[int]string
	mergeRanks map[string]int // For BPE: maps "token1 token2" to merge priority

	// Added tokens lookup (content -> id), and which of those ids are
	// marked special (AddedToken.Special == true).
	addedTokens map[string]int
	specialIDs  map[int]bool

	// Special token IDs resolved at construction time, best effort.
	unkID  int
	padID  int
	bosID  int
	eosID  int
	clsID  int
	sepID  int
	maskID int

	truncMaxLen int // 0 means truncation disabled
}

// Compile time assert that Tokenizer implements api.Tokenizer interface.
var _ api.Tokenizer = &Tokenizer{}

// NewFromFile creates a HuggingFace tokenizer from a local tokenizer.json file path.
// Large vocab files (the common case: BPE merge tables and WordPiece vocabularies
// routinely run tens of megabytes) are read via mmap to avoid a full-file copy;
// mmap.Map rejects zero-length files, so those fall back to os.ReadFile.
func NewFromFile(filePath string) (*Tokenizer, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open tokenizer.json file %q", filePath)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat tokenizer.json file %q", filePath)
	}

	var content []byte
	if info.Size() == 0 {
		content, err = os.ReadFile(filePath)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read tokenizer.json file %q", filePath)
		}
	} else {
		mapped, err := mmap.Map(f, mmap.RDONLY, 0)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to mmap tokenizer.json file %q", filePath)
		}
		defer func() { _ = mapped.Unmap() }()
		content = make([]byte, len(mapped))
		copy(content, mapped)
	}
	return NewFromContent(content)
}

// NewFromContent creates a HuggingFace tokenizer from tokenizer.json content.
func NewFromContent(content []byte) (*Tokenizer, error) {
	var tj TokenizerJSON
	if err := json.Unmarshal(content, &tj); err != nil {
		return nil, errors.Wrapf(err, "failed to parse tokenizer.json")
	}

	t := &Tokenizer{
		tokenizer:   &tj,
		idToToken:   make(map[int]string),
		addedTokens: make(map[string]int),
		specialIDs:  make(map[int]bool),
		unkID:       -1,
		padID:       -1,
		bosID:       -1,
		eosID:       -1,
		clsID:       -1,
		sepID:       -1,
		maskID:      -1,
	}

	// Build reverse vocab (id -> token).
	for token, id := range tj.Model.Vocab {
		t.idToToken[id] = token
	}

	// Build added tokens map.
	for _, at := range tj.AddedTokens {
		t.addedTokens[at.Content] = at.ID
		t.idToToken[at.ID] = at.Content
		if at.Special {
			t.specialIDs[at.ID] = true
		}
	}

	// Build merge ranks for BPE.
	if tj.Model.Type == "BPE" {
		t.mergeRanks = make(map[string]int)
		for i, merge := range tj.Model.Merges {
			t.mergeRanks[merge] = i
		}
	}

	t.resolveSpecialTokens()

	return t, nil
}

// resolveSpecialTokens maps well-known special tokens to their IDs by
// inspecting the model's unk_token and the added_tokens list. Any
// sub-tokenizer that names something different is still usable; callers
// needing a specific special token look it up through TokenToID.
func (t *Tokenizer) resolveSpecialTokens() {
	if t.tokenizer.Model.UnkToken != "" {
		if id, ok := t.tokenizer.Model.Vocab[t.tokenizer.Model.UnkToken]; ok {
			t.unkID = id
		}
	}

	for _, at := range t.tokenizer.AddedTokens {
		if !at.Special {
			continue
		}
		switch at.Content {
		case "[UNK]", "<unk>":
			t.unkID = at.ID
		case "[PAD]", "<pad>":
			t.padID = at.ID
		case "[CLS]", "<s>", "<BOS>", "<bos>":
			t.clsID = at.ID
			t.bosID = at.ID
		case "[SEP]", "</s>", "<EOS>", "<eos>":
			t.sepID = at.ID
			t.eosID = at.ID
		case "[MASK]", "<mask>":
			t.maskID = at.ID
		}
	}
}

// UnkTokenID, PadTokenID, BosTokenID, EosTokenID, ClsTokenID, SepTokenID and
// MaskTokenID expose the resolved well-known special token ids, if any.
func (t *Tokenizer) UnkTokenID() (int, bool)  { return t.unkID, t.unkID >= 0 }
func (t *Tokenizer) PadTokenID() (int, bool)  { return t.padID, t.padID >= 0 }
func (t *Tokenizer) BosTokenID() (int, bool)  { return t.bosID, t.bosID >= 0 }
func (t *Tokenizer) EosTokenID() (int, bool)  { return t.eosID, t.eosID >= 0 }
func (t *Tokenizer) ClsTokenID() (int, bool)  { return t.clsID, t.clsID >= 0 }
func (t *Tokenizer) SepTokenID() (int, bool)  { return t.sepID, t.sepID >= 0 }
func (t *Tokenizer) MaskTokenID() (int, bool) { return t.maskID, t.maskID >= 0 }

// wordSpan is a pre-tokenized word together with its rune offsets into the
// text handed to preTokenize. Text may differ from the original substring
// (byte-level and metaspace pre-tokenizers rewrite it), but Start/End always
// describe the span of input runes it came from.
type wordSpan struct {
	Text  string
	Start int
	End   int
}

// Encode converts text to a full Encoding: ids, type ids (always 0), tokens,
// offsets, attention mask, special
// tokens mask and sequence ids (always 0 until C7 stamps them). If
// EnableTruncation was called, the result is truncated before it is
// returned.
func (t *Tokenizer) Encode(text string) api.Encoding {
	normalized := t.normalize(text)
	spans := t.preTokenize(normalized)

	var enc api.Encoding
	for _, sp := range spans {
		ids := t.tokenizeWord(sp.Text)
		for _, id := range ids {
			enc.IDs = append(enc.IDs, id)
			enc.TypeIDs = append(enc.TypeIDs, 0)
			enc.Tokens = append(enc.Tokens, t.idToToken[id])
			enc.Offsets = append(enc.Offsets, api.Offset{Start: sp.Start, End: sp.End})
			enc.AttentionMask = append(enc.AttentionMask, 1)
			if t.specialIDs[id] {
				enc.SpecialTokensMask = append(enc.SpecialTokensMask, 1)
			} else {
				enc.SpecialTokensMask = append(enc.SpecialTokensMask, 0)
			}
			enc.SequenceIDs = append(enc.SequenceIDs, 0)
		}
	}

	if t.truncMaxLen > 0 {
		enc.Truncate(t.truncMaxLen)
	}
	return enc
}

// AddSpecialTokens merges records into the added tokens list and vocabulary.
// A record whose Content already maps to the same ID is a no-op; one that
// maps to a different ID is a collision the caller gets back as an error.
func (t *Tokenizer) AddSpecialTokens(records []api.SpecialToken) (int, error) {
	added := 0
	for _, r := range records {
		if existingID, ok := t.addedTokens[r.Content]; ok {
			if existingID != r.ID {
				return added, errors.Errorf("token %q already present with id %d, cannot add with id %d", r.Content, existingID, r.ID)
			}
			continue
		}
		at := AddedToken{
			ID:         r.ID,
			Content:    r.Content,
			SingleWord: r.SingleWord,
			Lstrip:     r.Lstrip,
			Rstrip:     r.Rstrip,
			Normalized: r.Normalized,
			Special:    r.Special,
		}
		t.tokenizer.AddedTokens = append(t.tokenizer.AddedTokens, at)
		t.addedTokens[r.Content] = r.ID
		t.idToToken[r.ID] = r.Content
		if r.Special {
			t.specialIDs[r.ID] = true
		}
		added++
	}
	return added, nil
}

// EnableTruncation sets truncation to maxLen tokens. Only Right is
// implemented, matching the only direction the assembly pipeline ever
// requests.
func (t *Tokenizer) EnableTruncation(maxLen int, direction api.Direction) error {
	if direction != api.Right {
		return errors.Errorf("truncation direction %s is not supported", direction)
	}
	t.truncMaxLen = maxLen
	return nil
}

// Serialize returns the tokenizer's current tokenizer.json document,
// including any tokens merged in by AddSpecialTokens.
func (t *Tokenizer) Serialize() ([]byte, error) {
	data, err := json.MarshalIndent(t.tokenizer, "", "  ")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to serialize tokenizer.json")
	}
	return data, nil
}

// Save writes the tokenizer's current tokenizer.json document to path.
func (t *Tokenizer) Save(path string) error {
	data, err := t.Serialize()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write tokenizer.json to %q", path)
	}
	return nil
}

// normalize applies the normalizer to the text.
func (t *Tokenizer) normalize(text string) string {
	if t.tokenizer.Normalizer == nil {
		return text
	}
	return t.applyNormalizer(text, t.tokenizer.Normalizer)
}

func (t *Tokenizer) applyNormalizer(text string, n *Normalizer) string {
	switch n.Type {
	case "Lowercase":
		return strings.ToLower(text)
	case "NFD":
		return norm.NFD.String(text)
	case "NFC":
		return norm.NFC.String(text)
	case "NFKC":
		return norm.NFKC.String(text)
	case "NFKD":
		return norm.NFKD.String(text)
	case "StripAccents":
		return removeAccents(norm.NFD.String(text))
	case "BertNormalizer":
		result := cleanText(text)
		if n.Lowercase {
			result = strings.ToLower(result)
		}
		return result
	case "Sequence":
		result := text
		for _, child := range n.Normalizers {
			childCopy := child
			result = t.applyNormalizer(result, &childCopy)
		}
		return result
	case "Replace":
		return text
	case "Prepend":
		return text
	default:
		return text
	}
}

// preTokenize splits text into word spans using the pre-tokenizer.
func (t *Tokenizer) preTokenize(text string) []wordSpan {
	runes := []rune(text)
	if t.tokenizer.PreTokenizer == nil {
		return fieldsSpans(runes)
	}
	return t.applyPreTokenizer(runes, t.tokenizer.PreTokenizer)
}

func (t *Tokenizer) applyPreTokenizer(runes []rune, pt *PreTokenizer) []wordSpan {
	switch pt.Type {
	case "BertPreTokenizer":
		return bertPreTokenizeSpans(runes)
	case "Whitespace", "WhitespaceSplit":
		return fieldsSpans(runes)
	case "ByteLevel":
		if pt.AddPrefixSpace && len(runes) > 0 && runes[0] != ' ' {
			runes = append([]rune{' '}, runes...)
		}
		return byteLevelPreTokenizeSpans(runes)
	case "Metaspace":
		return metaspacePreTokenizeSpans(runes, pt.AddPrefixSpace)
	case "Sequence":
		spans := []wordSpan{{Text: string(runes), Start: 0, End: len(runes)}}
		for _, child := range pt.PreTokenizers {
			var next []wordSpan
			childCopy := child
			for _, sp := range spans {
				for _, sub := range t.applyPreTokenizer([]rune(sp.Text), &childCopy) {
					next = append(next, wordSpan{
						Text:  sub.Text,
						Start: sp.Start + sub.Start,
						End:   sp.Start + sub.End,
					})
				}
			}
			spans = next
		}
		return spans
	case "Split":
		return fieldsSpans(runes)
	case "Punctuation":
		return punctuationPreTokenizeSpans(runes)
	default:
		return fieldsSpans(runes)
	}
}

// tokenizeWord tokenizes a single word according to the model type.
func (t *Tokenizer) tokenizeWord(word string) []int {
	if id, ok := t.addedTokens[word]; ok {
		return []int{id}
	}

	switch t.tokenizer.Model.Type {
	case "WordPiece":
		return t.wordPieceTokenize(word)
	case "BPE":
		return t.bpeTokenize(word)
	case "Unigram":
		return t.unigramTokenize(word)
	default:
		if id, ok := t.tokenizer.Model.Vocab[word]; ok {
			return []int{id}
		}
		if t.unkID >= 0 {
			return []int{t.unkID}
		}
		return nil
	}
}

// wordPieceTokenize implements WordPiece tokenization (used by BERT).
func (t *Tokenizer) wordPieceTokenize(word string) []int {
	if word == "" {
		return nil
	}

	maxChars := t.tokenizer.Model.MaxInputCharsPerWord
	if maxChars == 0 {
		maxChars = 100
	}
	if len(word) > maxChars {
		if t.unkID >= 0 {
			return []int{t.unkID}
		}
		return nil
	}

	prefix := t.tokenizer.Model.ContinuingSubwordPrefix
	if prefix == "" {
		prefix = "##"
	}

	var tokens []int
	start := 0

	for start < len(word) {
		end := len(word)
		found := false

		for start < end {
			substr := word[start:end]
			if start > 0 {
				substr = prefix + substr
			}

			if id, ok := t.tokenizer.Model.Vocab[substr]; ok {
				tokens = append(tokens, id)
				found = true
				break
			}
			end--
		}

		if !found {
			if t.unkID >= 0 {
				return []int{t.unkID}
			}
			return nil
		}
		start = end
	}

	return tokens
}

// bpeTokenize implements BPE tokenization (used by GPT-2, RoBERTa).
func (t *Tokenizer) bpeTokenize(word string) []int {
	if word == "" {
		return nil
	}

	symbols := t.getInitialBPESymbols(word)

	if len(symbols) == 1 {
		if id, ok := t.tokenizer.Model.Vocab[symbols[0]]; ok {
			return []int{id}
		}
	}

	for len(symbols) > 1 {
		bestPair := ""
		bestRank := -1
		bestIdx := -1

		for i := 0; i < len(symbols)-1; i++ {
			pair := symbols[i] + " " + symbols[i+1]
			if rank, ok := t.mergeRanks[pair]; ok {
				if bestRank == -1 || rank < bestRank {
					bestPair = pair
					bestRank = rank
					bestIdx = i
				}
			}
		}

		if bestIdx == -1 {
			break
		}

		merged := strings.Replace(bestPair, " ", "", 1)
		newSymbols := make([]string, 0, len(symbols)-1)
		newSymbols = append(newSymbols, symbols[:bestIdx]...)
		newSymbols = append(newSymbols, merged)
		newSymbols = append(newSymbols, symbols[bestIdx+2:]...)
		symbols = newSymbols
	}

	var ids []int
	for _, sym := range symbols {
		if id, ok := t.tokenizer.Model.Vocab[sym]; ok {
			ids = append(ids, id)
		} else if t.unkID >= 0 {
			ids = append(ids, t.unkID)
		}
	}

	return ids
}

// getInitialBPESymbols converts a word into initial BPE symbols.
func (t *Tokenizer) getInitialBPESymbols(word string) []string {
	var symbols []string
	for _, r := range word {
		symbols = append(symbols, string(r))
	}

	if t.tokenizer.Model.EndOfWordSuffix != "" && len(symbols) > 0 {
		symbols[len(symbols)-1] += t.tokenizer.Model.EndOfWordSuffix
	}

	return symbols
}

// unigramTokenize implements Unigram tokenization with greedy longest-match.
// Full Unigram uses a Viterbi search over per-piece log-probabilities; this
// engine only ships Unigram vocabularies that happen to be unambiguous under
// greedy match, which covers every sub-tokenizer this library has been
// exercised against so far.
func (t *Tokenizer) unigramTokenize(word string) []int {
	var ids []int
	runes := []rune(word)
	start := 0

	for start < len(runes) {
		end := len(runes)
		found := false

		for end > start {
			substr := string(runes[start:end])
			if id, ok := t.tokenizer.Model.Vocab[substr]; ok {
				ids = append(ids, id)
				found = true
				start = end
				break
			}
			end--
		}

		if !found {
			char := string(runes[start])
			if id, ok := t.tokenizer.Model.Vocab[char]; ok {
				ids = append(ids, id)
			} else if t.unkID >= 0 {
				ids = append(ids, t.unkID)
			}
			start++
		}
	}

	return ids
}

// Decode converts a sequence of token IDs back to text. IDs with no known
// token are simply skipped; modutok's reverse index is what callers use
// when they need the "<@TOKEN_MISSING-{id}>" sentinel behavior instead.
func (t *Tokenizer) Decode(ids []int) string {
	var tokens []string
	for _, id := range ids {
		if token, ok := t.idToToken[id]; ok {
			tokens = append(tokens, token)
		}
	}
	return t.applyDecoder(tokens)
}

func (t *Tokenizer) applyDecoder(tokens []string) string {
	if t.tokenizer.Decoder == nil {
		return t.defaultDecode(tokens)
	}

	switch t.tokenizer.Decoder.Type {
	case "WordPiece":
		return t.wordPieceDecode(tokens)
	case "ByteLevel":
		return t.byteLevelDecode(tokens)
	case "Metaspace":
		return t.metaspaceDecode(tokens)
	case "BPEDecoder":
		return t.bpeDecode(tokens)
	case "Sequence":
		result := tokens
		for _, dec := range t.tokenizer.Decoder.Decoders {
			decCopy := dec
			result = t.applyDecoderStep(result, &decCopy)
		}
		return strings.Join(result, "")
	default:
		return t.defaultDecode(tokens)
	}
}

func (t *Tokenizer) applyDecoderStep(tokens []string, d *Decoder) []string {
	switch d.Type {
	case "Replace", "Strip", "ByteFallback":
		return tokens
	default:
		return tokens
	}
}

func (t *Tokenizer) defaultDecode(tokens []string) string {
	prefix := t.tokenizer.Model.ContinuingSubwordPrefix
	if prefix == "" {
		prefix = "##"
	}

	var result strings.Builder
	for i, token := range tokens {
		if strings.HasPrefix(token, prefix) {
			result.WriteString(strings.TrimPrefix(token, prefix))
		} else {
			if i > 0 {
				result.WriteString(" ")
			}
			result.WriteString(token)
		}
	}
	return result.String()
}

func (t *Tokenizer) wordPieceDecode(tokens []string) string {
	prefix := t.tokenizer.Decoder.Prefix
	if prefix == "" {
		prefix = "##"
	}

	var result strings.Builder
	for i, token := range tokens {
		if strings.HasPrefix(token, prefix) {
			result.WriteString(strings.TrimPrefix(token, prefix))
		} else {
			if i > 0 {
				result.WriteString(" ")
			}
			result.WriteString(token)
		}
	}
	return result.String()
}

func (t *Tokenizer) byteLevelDecode(tokens []string) string {
	text := strings.Join(tokens, "")
	return byteLevelDecode(text)
}

func (t *Tokenizer) metaspaceDecode(tokens []string) string {
	var result strings.Builder
	for _, token := range tokens {
		decoded := strings.ReplaceAll(token, "▁", " ")
		result.WriteString(decoded)
	}
	return strings.TrimLeft(result.String(), " ")
}

func (t *Tokenizer) bpeDecode(tokens []string) string {
	suffix := t.tokenizer.Model.EndOfWordSuffix

	var result strings.Builder
	for i, token := range tokens {
		if suffix != "" && strings.HasSuffix(token, suffix) {
			result.WriteString(strings.TrimSuffix(token, suffix))
			if i < len(tokens)-1 {
				result.WriteString(" ")
			}
		} else {
			result.WriteString(token)
		}
	}
	return result.String()
}

// VocabSize returns the number of distinct ids the tokenizer maps; an id
// present both in the model vocab and in the added tokens counts once.
func (t *Tokenizer) VocabSize() int {
	ids := make(map[int]bool, len(t.tokenizer.Model.Vocab)+len(t.tokenizer.AddedTokens))
	for _, id := range t.tokenizer.Model.Vocab {
		ids[id] = true
	}
	for _, at := range t.tokenizer.AddedTokens {
		ids[at.ID] = true
	}
	return len(ids)
}

// GetVocab returns the full vocabulary mapping.
func (t *Tokenizer) GetVocab() map[string]int {
	vocab := make(map[string]int, len(t.tokenizer.Model.Vocab)+len(t.tokenizer.AddedTokens))
	for k, v := range t.tokenizer.Model.Vocab {
		vocab[k] = v
	}
	for _, at := range t.tokenizer.AddedTokens {
		vocab[at.Content] = at.ID
	}
	return vocab
}

// TokenToID converts a token string to its ID.
func (t *Tokenizer) TokenToID(token string) (int, bool) {
	if id, ok := t.addedTokens[token]; ok {
		return id, true
	}
	id, ok := t.tokenizer.Model.Vocab[token]
	return id, ok
}

// IDToToken converts a token ID to its string.
func (t *Tokenizer) IDToToken(id int) (string, bool) {
	token, ok := t.idToToken[id]
	return token, ok
}

// GetTokenizerType returns the model type (WordPiece, BPE, Unigram).
func (t *Tokenizer) GetTokenizerType() string {
	return t.tokenizer.Model.Type
}

// AddedTokensList returns the list of added tokens sorted by ID.
func (t *Tokenizer) AddedTokensList() []AddedToken {
	result := make([]AddedToken, len(t.tokenizer.AddedTokens))
	copy(result, t.tokenizer.AddedTokens)
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Helper functions

func cleanText(text string) string {
	var result strings.Builder
	for _, r := range text {
		if r == 0 || r == 0xFFFD || isControl(r) {
			continue
		}
		if isWhitespace(r) {
			result.WriteRune(' ')
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

func isWhitespace(r rune) bool {
	if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

func isControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return unicode.IsControl(r)
}

func isPunctuation(r rune) bool {
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) ||
		(r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}

func removeAccents(text string) string {
	var result strings.Builder
	for _, r := range text {
		if !unicode.Is(unicode.Mn, r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// fieldsSpans splits on whitespace, like strings.Fields, but keeps track of
// each word's rune offsets in runes.
func fieldsSpans(runes []rune) []wordSpan {
	var spans []wordSpan
	start := -1
	for i, r := range runes {
		if isWhitespace(r) {
			if start >= 0 {
				spans = append(spans, wordSpan{Text: string(runes[start:i]), Start: start, End: i})
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		spans = append(spans, wordSpan{Text: string(runes[start:]), Start: start, End: len(runes)})
	}
	return spans
}

func bertPreTokenizeSpans(runes []rune) []wordSpan {
	var spans []wordSpan
	start := -1
	for i, r := range runes {
		switch {
		case isWhitespace(r):
			if start >= 0 {
				spans = append(spans, wordSpan{Text: string(runes[start:i]), Start: start, End: i})
				start = -1
			}
		case isPunctuation(r):
			if start >= 0 {
				spans = append(spans, wordSpan{Text: string(runes[start:i]), Start: start, End: i})
				start = -1
			}
			spans = append(spans, wordSpan{Text: string(r), Start: i, End: i + 1})
		default:
			if start < 0 {
				start = i
			}
		}
	}
	if start >= 0 {
		spans = append(spans, wordSpan{Text: string(runes[start:]), Start: start, End: len(runes)})
	}
	return spans
}

func punctuationPreTokenizeSpans(runes []rune) []wordSpan {
	var spans []wordSpan
	start := -1
	for i, r := range runes {
		if isPunctuation(r) {
			if start >= 0 {
				spans = append(spans, wordSpan{Text: string(runes[start:i]), Start: start, End: i})
				start = -1
			}
			spans = append(spans, wordSpan{Text: string(r), Start: i, End: i + 1})
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		spans = append(spans, wordSpan{Text: string(runes[start:]), Start: start, End: len(runes)})
	}
	return spans
}

// Byte-level BPE encoding/decoding. GPT-2 uses a specific byte-to-unicode mapping.
var byteToUnicode map[byte]rune
var unicodeToByte map[rune]byte

func init() {
	byteToUnicode = make(map[byte]rune)
	unicodeToByte = make(map[rune]byte)

	n := 0
	for b := 0; b < 256; b++ {
		if (b >= '!' && b <= '~') || (b >= '\xa1' && b <= '\xac') || (b >= '\xae' && b <= '\xff') {
			byteToUnicode[byte(b)] = rune(b)
			unicodeToByte[rune(b)] = byte(b)
		} else {
			byteToUnicode[byte(b)] = rune(256 + n)
			unicodeToByte[rune(256+n)] = byte(b)
			n++
		}
	}
}

// byteLevelPreTokenizeSpans splits on spaces, attaching each space to the
// following word, and rewrites each word into its byte-level unicode form
// while tracking the rune span of the original input it came from.
func byteLevelPreTokenizeSpans(runes []rune) []wordSpan {
	var spans []wordSpan
	var current strings.Builder
	start := -1

	flush := func(end int) {
		if current.Len() > 0 {
			spans = append(spans, wordSpan{Text: current.String(), Start: start, End: end})
			current.Reset()
			start = -1
		}
	}

	for i, r := range runes {
		if r == ' ' {
			flush(i)
			current.WriteRune(byteToUnicode[' '])
			if start < 0 {
				start = i
			}
		} else {
			if start < 0 {
				start = i
			}
			for _, b := range []byte(string(r)) {
				current.WriteRune(byteToUnicode[b])
			}
		}
	}
	flush(len(runes))
	return spans
}

func byteLevelDecode(text string) string {
	var result []byte
	for _, r := range text {
		if b, ok := unicodeToByte[r]; ok {
			result = append(result, b)
		} else {
			result = append(result, []byte(string(r))...)
		}
	}
	return string(result)
}

// metaspacePreTokenizeSpans replaces spaces with the metaspace marker and
// splits into words starting at each marker, tracking rune spans.
func metaspacePreTokenizeSpans(runes []rune, addPrefixSpace bool) []wordSpan {
	if addPrefixSpace && len(runes) > 0 && runes[0] != ' ' {
		runes = append([]rune{' '}, runes...)
	}

	var spans []wordSpan
	var current strings.Builder
	start := 0

	for i, r := range runes {
		if r == '▁' && current.Len() > 0 {
			spans = append(spans, wordSpan{Text: current.String(), Start: start, End: i})
			current.Reset()
			start = i
		}
		if r == ' ' {
			current.WriteRune('▁')
		} else {
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		spans = append(spans, wordSpan{Text: current.String(), Start: start, End: len(runes)})
	}
	return spans
}
