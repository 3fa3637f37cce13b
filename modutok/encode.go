package modutok

import (
	"k8s.io/klog/v2"

	"github.com/fusedrug/go-modular-tokenizer/tokenizers/api"
)

// SegmentInput is one entry of the ordered list encode_list accepts: a
// domain, the text to tokenize in it, and an optional per-segment
// truncation cap.
type SegmentInput struct {
	Domain       string
	Text         string
	PerSegmentMaxLen *int
}

// EncodeOptions are the call-site overrides encode/encode_list accept; nil
// fields fall back to the tokenizer's own configured state.
type EncodeOptions struct {
	MaxLen     *int
	PadTokenID *int
	PadToken   *string
	PadTypeID  *int
}

// Encode parses text for <@TOKENIZER-TYPE=NAME> directives (C6) and runs
// the resulting segments through EncodeList (C7).
func (t *Tokenizer) Encode(text string, opts EncodeOptions) (api.Encoding, error) {
	segs, err := parseDirectives(text)
	if err != nil {
		return api.Encoding{}, err
	}
	inputs := make([]SegmentInput, len(segs))
	for i, s := range segs {
		inputs[i] = SegmentInput{Domain: s.Domain, Text: s.Text}
	}
	return t.EncodeList(inputs, opts)
}

// EncodeList is the Encoding Pipeline (C7): each segment is encoded by its
// domain's adapter, optionally truncated to its own cap, then stamped with
// a 1-based sequence id. The per-segment encodings are merged in order,
// globally truncated, and finally padded if a pad token can be resolved.
func (t *Tokenizer) EncodeList(segments []SegmentInput, opts EncodeOptions) (api.Encoding, error) {
	parts := make([]api.Encoding, 0, len(segments))
	for k, seg := range segments {
		sub, ok := t.lookup(seg.Domain)
		if !ok {
			return api.Encoding{}, newUnknownDomainError(seg.Domain)
		}

		enc := sub.engine.Encode(seg.Text)
		if seg.PerSegmentMaxLen != nil {
			enc.Truncate(*seg.PerSegmentMaxLen)
		}
		// The underlying engine's set-sequence-id only behaves reliably
		// for a monotonic sequence of calls; stamping once here with the
		// final value achieves the same observable per-token layout
		// without depending on prior intermediate stamps.
		enc.SetSequenceIDs(k + 1)

		if len(enc.Overflowing) > 0 {
			klog.Warningf("modutok: segment %d (domain=%s) truncated; original length=%d chars, effective max_len=%v",
				k, seg.Domain, len([]rune(seg.Text)), seg.PerSegmentMaxLen)
		}

		parts = append(parts, enc)
	}

	merged := api.Merge(parts)

	effectiveMaxLen := opts.MaxLen
	if effectiveMaxLen == nil {
		effectiveMaxLen = uint32PtrToIntPtr(t.maxLen)
	}
	if effectiveMaxLen != nil {
		merged.Truncate(*effectiveMaxLen)
		if len(merged.Overflowing) > 0 {
			var totalChars int
			for _, seg := range segments {
				totalChars += len([]rune(seg.Text))
			}
			klog.Warningf("modutok: encoding truncated; original length=%d chars, effective max_len=%d", totalChars, *effectiveMaxLen)
		}
	}

	padID, padTok := t.resolvePadding(opts)
	if effectiveMaxLen != nil && padID != nil && padTok != nil {
		padTypeID := int(t.padTokenTypeID)
		if opts.PadTypeID != nil {
			padTypeID = *opts.PadTypeID
		}
		merged.Pad(*effectiveMaxLen, *padID, *padTok, padTypeID)
	}

	return merged, nil
}

// resolvePadding implements the padding-identifier resolution rule of C7:
// derive whichever of (id, token) is missing from the other via the
// reverse index, fall back to tokenizer state if neither is given, and
// warn + skip padding if either side is still unresolved.
func (t *Tokenizer) resolvePadding(opts EncodeOptions) (*int, *string) {
	id := opts.PadTokenID
	tok := opts.PadToken

	switch {
	case id != nil && tok == nil:
		if text, ok := t.IDToToken(*id); ok {
			tok = &text
		}
	case tok != nil && id == nil:
		if i, ok, err := t.TokenToID(*tok, ""); err == nil && ok {
			id = &i
		}
	case id == nil && tok == nil:
		id = uint32PtrToIntPtr(t.padTokenID)
		tok = t.padToken
	}

	if id == nil || tok == nil {
		klog.Warningf("modutok: padding skipped: could not resolve both pad_token_id and pad_token")
		return nil, nil
	}
	return id, tok
}

func uint32PtrToIntPtr(p *uint32) *int {
	if p == nil {
		return nil
	}
	v := int(*p)
	return &v
}
