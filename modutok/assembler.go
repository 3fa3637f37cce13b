package modutok

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/fusedrug/go-modular-tokenizer/tokenizers/api"
)

// AssemblerConfig is the entry point parameter set of the Modular Assembler
// (C3): the sub-tokenizer descriptors plus the two construction modes
// (fresh build vs. already-remapped load) and the two ID-budget ceilings.
type AssemblerConfig struct {
	TokenizerDescriptors []SubTokenizerDescriptor
	LoadAdjusted         bool
	SpecialTokens        []SpecialTokenRecord
	AdditionalTokens     []SpecialTokenRecord
	MaxPossibleTokenID   *uint32
	MaxSpecialTokenID    *uint32

	// EngineConstructor overrides the sub-tokenizer engine family; tests
	// supply fakes here. Defaults to hftokenizer.NewFromContent.
	EngineConstructor EngineConstructor
}

// New builds a ModularTokenizer from descriptors, per spec.md §4.3.
func New(cfg AssemblerConfig) (*Tokenizer, error) {
	if len(cfg.TokenizerDescriptors) == 0 {
		return nil, newConfigError("tokenizer_descriptors must not be empty")
	}
	ctor := cfg.EngineConstructor
	if ctor == nil {
		ctor = defaultEngineConstructor
	}

	if cfg.LoadAdjusted {
		return assembleLoadAdjusted(cfg, ctor)
	}
	return assembleFresh(cfg, ctor)
}

func assembleFresh(cfg AssemblerConfig, ctor EngineConstructor) (*Tokenizer, error) {
	names := make([]string, 0, len(cfg.TokenizerDescriptors))
	index := make(map[string]int, len(cfg.TokenizerDescriptors))
	docs := make([]*tokenizerDoc, len(cfg.TokenizerDescriptors))
	sourcePaths := make([]string, len(cfg.TokenizerDescriptors))

	for i, d := range cfg.TokenizerDescriptors {
		if d.Name == "" {
			return nil, newConfigError("sub-tokenizer descriptor %d has no name", i)
		}
		if _, exists := index[d.Name]; exists {
			return nil, newConfigError("duplicate sub-tokenizer name %q", d.Name)
		}
		path := d.JSONPath
		if path == "" {
			path = d.ModularJSONPath
		}
		if path == "" {
			return nil, newConfigError("sub-tokenizer %q has neither json_path nor modular_json_path", d.Name)
		}
		doc, err := readDoc(path)
		if err != nil {
			return nil, err
		}
		names = append(names, d.Name)
		index[d.Name] = i
		docs[i] = doc
		sourcePaths[i] = path
	}

	// Step 1: gather common_specials in order.
	commonSpecials := make([]SpecialTokenRecord, 0)
	seen := make(map[string]bool)
	appendSpecial := func(s SpecialTokenRecord) {
		if seen[s.Content] {
			return
		}
		seen[s.Content] = true
		commonSpecials = append(commonSpecials, s)
	}
	for _, s := range cfg.SpecialTokens {
		appendSpecial(s)
	}
	for _, s := range cfg.AdditionalTokens {
		appendSpecial(s)
	}
	for _, doc := range docs {
		for _, at := range doc.AddedTokens {
			appendSpecial(addedTokenToRecord(at))
		}
	}

	// Step 2: assign sequential IDs 0, 1, ... to common_specials.
	for i := range commonSpecials {
		commonSpecials[i].ID = i
	}
	next := len(commonSpecials)

	// Step 3: enforce max_special_token_id.
	if cfg.MaxSpecialTokenID != nil {
		limit := int(*cfg.MaxSpecialTokenID)
		if next > limit+1 {
			return nil, newConfigError("max_special_token_id=%d cannot hold %d common specials", limit, len(commonSpecials))
		}
		next = limit + 1
	}

	// Step 4: per sub-tokenizer, overwrite added_tokens, remap regular vocab.
	for _, doc := range docs {
		doc.AddedTokens = recordsToAddedTokens(commonSpecials)
		remapped, nextFree := remapVocabulary(doc.Model.Vocab, commonSpecials, &next)
		doc.Model.Vocab = remapped
		next = nextFree
	}

	t := &Tokenizer{
		names:             names,
		index:             index,
		subs:              make([]*subTokenizer, len(docs)),
		commonSpecials:    commonSpecials,
		maxPossibleTokenID: cfg.MaxPossibleTokenID,
		maxSpecialTokenID:  cfg.MaxSpecialTokenID,
		engineConstructor: ctor,
	}

	if err := instantiateAndRoundTrip(t, cfg.TokenizerDescriptors, docs, ctor); err != nil {
		return nil, err
	}

	// Step 6: C4.
	if err := runConsistencyCheck(t); err != nil {
		return nil, err
	}

	// Step 7: C5.
	buildReverseIndex(t)

	// Step 8: budget check against max_possible_token_id.
	if err := enforceMaxPossibleTokenID(t); err != nil {
		return nil, err
	}

	return t, nil
}

func assembleLoadAdjusted(cfg AssemblerConfig, ctor EngineConstructor) (*Tokenizer, error) {
	if len(cfg.SpecialTokens) > 0 || len(cfg.AdditionalTokens) > 0 {
		return nil, newConfigError("special_tokens/additional_tokens must not be given when load_adjusted=true")
	}

	names := make([]string, 0, len(cfg.TokenizerDescriptors))
	index := make(map[string]int, len(cfg.TokenizerDescriptors))
	docs := make([]*tokenizerDoc, len(cfg.TokenizerDescriptors))

	for i, d := range cfg.TokenizerDescriptors {
		if d.Name == "" {
			return nil, newConfigError("sub-tokenizer descriptor %d has no name", i)
		}
		if _, exists := index[d.Name]; exists {
			return nil, newConfigError("duplicate sub-tokenizer name %q", d.Name)
		}
		if d.ModularJSONPath == "" {
			return nil, newConfigError("sub-tokenizer %q has no modular_json_path", d.Name)
		}
		doc, err := readDoc(d.ModularJSONPath)
		if err != nil {
			return nil, err
		}
		names = append(names, d.Name)
		index[d.Name] = i
		docs[i] = doc
	}

	var commonSpecials []SpecialTokenRecord
	if len(docs) > 0 {
		commonSpecials = make([]SpecialTokenRecord, 0, len(docs[0].AddedTokens))
		for _, at := range docs[0].AddedTokens {
			commonSpecials = append(commonSpecials, addedTokenToRecord(at))
		}
	}

	t := &Tokenizer{
		names:             names,
		index:             index,
		subs:              make([]*subTokenizer, len(docs)),
		commonSpecials:    commonSpecials,
		maxPossibleTokenID: cfg.MaxPossibleTokenID,
		maxSpecialTokenID:  cfg.MaxSpecialTokenID,
		engineConstructor: ctor,
	}

	if err := instantiateAndRoundTrip(t, cfg.TokenizerDescriptors, docs, ctor); err != nil {
		return nil, err
	}
	if err := runConsistencyCheck(t); err != nil {
		return nil, err
	}
	buildReverseIndex(t)
	if err := enforceMaxPossibleTokenID(t); err != nil {
		return nil, err
	}
	return t, nil
}

// instantiateAndRoundTrip is step 5, shared by both construction paths:
// build the engine from the mutated document, apply per-domain truncation,
// then round-trip the engine's own serialization back into the document so
// the two views can never silently drift apart.
func instantiateAndRoundTrip(t *Tokenizer, descriptors []SubTokenizerDescriptor, docs []*tokenizerDoc, ctor EngineConstructor) error {
	for i, doc := range docs {
		content, err := marshalDoc(doc)
		if err != nil {
			return err
		}
		engine, err := ctor(content)
		if err != nil {
			return errors.Wrapf(err, "failed to instantiate sub-tokenizer %q", descriptors[i].Name)
		}
		if descriptors[i].MaxLen != nil {
			if err := engine.EnableTruncation(int(*descriptors[i].MaxLen), api.Right); err != nil {
				return errors.Wrapf(err, "failed to enable truncation for sub-tokenizer %q", descriptors[i].Name)
			}
		}
		roundTripped, err := engine.Serialize()
		if err != nil {
			return errors.Wrapf(err, "failed to serialize sub-tokenizer %q", descriptors[i].Name)
		}
		var finalDoc tokenizerDoc
		if err := json.Unmarshal(roundTripped, &finalDoc); err != nil {
			return errors.Wrapf(err, "failed to round-trip sub-tokenizer %q", descriptors[i].Name)
		}
		t.subs[i] = &subTokenizer{descriptor: descriptors[i], doc: &finalDoc, engine: engine}
	}
	return nil
}

func runConsistencyCheck(t *Tokenizer) error {
	report := checkConsistency(t)
	if report.IsConsistent() {
		return nil
	}
	switch {
	case !report.SpecialsConsistent:
		return newInconsistentError("special", report.SpecialOffenders)
	case !report.NoIntraDuplicates:
		return newInconsistentError("intra-sub duplicate ids", report.DuplicateOffenders)
	default:
		return newInconsistentError("cross-sub id collision", report.CollisionOffenders)
	}
}

func enforceMaxPossibleTokenID(t *Tokenizer) error {
	if t.maxPossibleTokenID == nil {
		return nil
	}
	limit := int(*t.maxPossibleTokenID)
	observed := maxObservedID(t)
	if observed > limit {
		return newBudgetExceededError("max_possible_token_id", observed, limit)
	}
	return nil
}

func maxObservedID(t *Tokenizer) int {
	max := -1
	for _, s := range t.commonSpecials {
		if s.ID > max {
			max = s.ID
		}
	}
	for _, sub := range t.subs {
		for _, id := range sub.doc.Model.Vocab {
			if id > max {
				max = id
			}
		}
	}
	return max
}

func addedTokenToRecord(a AddedToken) SpecialTokenRecord {
	return SpecialTokenRecord{
		ID:         a.ID,
		Content:    a.Content,
		SingleWord: a.SingleWord,
		Lstrip:     a.Lstrip,
		Rstrip:     a.Rstrip,
		Normalized: a.Normalized,
		Special:    a.Special,
	}
}

func recordToAddedToken(s SpecialTokenRecord) AddedToken {
	return AddedToken{
		ID:         s.ID,
		Content:    s.Content,
		SingleWord: s.SingleWord,
		Lstrip:     s.Lstrip,
		Rstrip:     s.Rstrip,
		Normalized: s.Normalized,
		Special:    true,
	}
}

func recordsToAddedTokens(records []SpecialTokenRecord) []AddedToken {
	out := make([]AddedToken, len(records))
	for i, r := range records {
		out[i] = recordToAddedToken(r)
	}
	return out
}
