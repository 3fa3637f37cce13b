package modutok

import (
	"regexp"
	"strconv"

	"k8s.io/klog/v2"

	"github.com/fusedrug/go-modular-tokenizer/tokenizers/api"
)

// TokenToID looks up a token's ID. With domain given, it asks only that
// sub-tokenizer. Without one, it searches every sub-tokenizer and the
// common specials; more than one distinct ID for the same text fails
// AmbiguousToken (spec.md §6, S4).
func (t *Tokenizer) TokenToID(text string, domain string) (int, bool, error) {
	if domain != "" {
		sub, ok := t.lookup(domain)
		if !ok {
			return 0, false, newUnknownDomainError(domain)
		}
		id, ok := sub.engine.TokenToID(text)
		return id, ok, nil
	}

	candidates := make(map[string]int)
	for _, sub := range t.subs {
		if id, ok := sub.engine.TokenToID(text); ok {
			candidates[sub.descriptor.Name] = id
		}
	}
	if len(candidates) == 0 {
		return 0, false, nil
	}

	var first = -1
	ambiguous := false
	for _, id := range candidates {
		if first == -1 {
			first = id
		} else if id != first {
			ambiguous = true
		}
	}
	if ambiguous {
		return 0, false, newAmbiguousTokenError(text, candidates)
	}
	return first, true, nil
}

// GetAddedVocab returns the shared special-token vocabulary as a flat
// content -> id map.
func (t *Tokenizer) GetAddedVocab() map[string]int {
	out := make(map[string]int, len(t.commonSpecials))
	for _, s := range t.commonSpecials {
		out[s.Content] = s.ID
	}
	return out
}

// GetVocabSize returns the total size of the decoder index: common
// specials plus every sub-tokenizer's regular vocabulary.
func (t *Tokenizer) GetVocabSize() int {
	return len(t.decoderIndex)
}

// GetTokenizerTypes returns the sub-tokenizer names in insertion order.
func (t *Tokenizer) GetTokenizerTypes() []string {
	return t.SubTokenizerNames()
}

// GetMaxTokenID always returns the highest ID actually mapped in the
// decoder index, regardless of any configured max_possible_token_id
// ceiling. It is the building block get_max_id is defined in terms of.
func (t *Tokenizer) GetMaxTokenID() int {
	max := -1
	for id := range t.decoderIndex {
		if id > max {
			max = id
		}
	}
	return max
}

// GetMaxID returns max_possible_token_id when configured, else the highest
// ID actually mapped. When the configured ceiling sits above the last ID
// actually assigned, the returned value is a placeholder upper bound with
// no token behind it; callers relying on it to mean "highest real id"
// should use GetMaxTokenID instead.
func (t *Tokenizer) GetMaxID() int {
	if t.maxPossibleTokenID != nil {
		limit := int(*t.maxPossibleTokenID)
		if real := t.GetMaxTokenID(); real < limit {
			klog.Warningf("modutok: GetMaxID returning configured max_possible_token_id=%d, which is above the highest id actually mapped (%d)", limit, real)
		}
		return limit
	}
	return t.GetMaxTokenID()
}

var sentinelPattern = regexp.MustCompile(`\d+`)

// GetMinMaxSentinels scans the common-special vocabulary for tokens shaped
// like <prefix><digits> (e.g. "<SENTINEL_ID_101>") and returns the smallest
// and largest digit run found among them. The digit run is found anywhere
// after the prefix, not anchored to the end of the token, since the
// canonical shape has trailing characters (the closing ">") after it.
func (t *Tokenizer) GetMinMaxSentinels(prefix string) (int, int, error) {
	min, max := -1, -1
	found := false
	for _, s := range t.commonSpecials {
		if len(s.Content) <= len(prefix) {
			continue
		}
		if s.Content[:len(prefix)] != prefix {
			continue
		}
		digits := sentinelPattern.FindString(s.Content[len(prefix):])
		if digits == "" {
			continue
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			continue
		}
		if !found || n < min {
			min = n
		}
		if !found || n > max {
			max = n
		}
		found = true
	}
	if !found {
		return 0, 0, newConfigError("no sentinel tokens found with prefix %q", prefix)
	}
	return min, max, nil
}

// EnablePadding configures the tokenizer-level default padding parameters
// used by Encode/EncodeList when no call-site override is given.
// Non-"right" directions are Unsupported (spec.md §6).
func (t *Tokenizer) EnablePadding(direction api.Direction, padID *int, padTypeID int, padToken *string, length *int) error {
	if direction != api.Right {
		return newUnsupportedError("padding direction %q", direction)
	}
	if padID != nil {
		v := uint32(*padID)
		t.padTokenID = &v
	}
	if padToken != nil {
		t.padToken = padToken
	}
	t.padTokenTypeID = uint32(padTypeID)
	if length != nil {
		v := uint32(*length)
		t.maxLen = &v
	}
	return nil
}

// EnableTruncation sets the tokenizer-level default max_len used when an
// Encode/EncodeList call doesn't override it. Only the default stride (0),
// strategy ("longest_first") and direction ("right") are supported;
// anything else is Unsupported (spec.md §6).
func (t *Tokenizer) EnableTruncation(maxLength int, stride int, strategy string, direction api.Direction) error {
	if stride != 0 {
		return newUnsupportedError("truncation stride %d", stride)
	}
	if strategy != "" && strategy != "longest_first" {
		return newUnsupportedError("truncation strategy %q", strategy)
	}
	if direction != api.Right {
		return newUnsupportedError("truncation direction %q", direction)
	}
	v := uint32(maxLength)
	t.maxLen = &v
	return nil
}

// ValidateEndsWith rejects input that doesn't end with the given
// terminator (typically an end-of-sequence marker such as "<EOS>"), for
// callers that want to enforce it before encoding. It needs no tokenizer
// state, so it is a standalone function rather than a method.
func ValidateEndsWith(text, suffix string) error {
	if len(text) < len(suffix) || text[len(text)-len(suffix):] != suffix {
		return newParseError("text does not end with required suffix " + strconv.Quote(suffix))
	}
	return nil
}
