package modutok

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConfigError signals malformed sub-tokenizer descriptors or incompatible
// construction flags (e.g. special_tokens given alongside load_adjusted).
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("modutok: config error: %s", e.Reason)
}

func newConfigError(format string, args ...any) error {
	return errors.WithStack(&ConfigError{Reason: fmt.Sprintf(format, args...)})
}

// BudgetExceededError signals that an ID assignment would exceed
// max_special_token_id or max_possible_token_id.
type BudgetExceededError struct {
	Limit     string
	Requested int
	Max       int
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("modutok: budget exceeded: %s requires up to id %d, limit is %d", e.Limit, e.Requested, e.Max)
}

func newBudgetExceededError(limit string, requested, max int) error {
	return errors.WithStack(&BudgetExceededError{Limit: limit, Requested: requested, Max: max})
}

// InconsistentError signals a Consistency Checker (C4) invariant break.
type InconsistentError struct {
	Reason    string
	Offenders []string
}

func (e *InconsistentError) Error() string {
	return fmt.Sprintf("modutok: inconsistent: %s, offenders=%v", e.Reason, e.Offenders)
}

func newInconsistentError(reason string, offenders []string) error {
	return errors.WithStack(&InconsistentError{Reason: reason, Offenders: offenders})
}

// NameCollisionError signals that C8 attempted to promote an existing
// regular token to a special one.
type NameCollisionError struct {
	Texts []string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("modutok: name collision: %v already exist as regular tokens", e.Texts)
}

func newNameCollisionError(texts []string) error {
	return errors.WithStack(&NameCollisionError{Texts: texts})
}

// ParseError signals a typed-input directive syntax violation.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("modutok: parse error: %s", e.Reason)
}

func newParseError(reason string) error {
	return errors.WithStack(&ParseError{Reason: reason})
}

// UnknownDomainError signals a directive naming a sub-tokenizer that isn't
// present in the tokenizer.
type UnknownDomainError struct {
	Domain string
}

func (e *UnknownDomainError) Error() string {
	return fmt.Sprintf("modutok: unknown domain %q", e.Domain)
}

func newUnknownDomainError(domain string) error {
	return errors.WithStack(&UnknownDomainError{Domain: domain})
}

// AmbiguousTokenError signals that token_to_id without a domain would
// return more than one distinct ID.
type AmbiguousTokenError struct {
	Text       string
	Candidates map[string]int
}

func (e *AmbiguousTokenError) Error() string {
	return fmt.Sprintf("modutok: ambiguous token %q: %v", e.Text, e.Candidates)
}

func newAmbiguousTokenError(text string, candidates map[string]int) error {
	return errors.WithStack(&AmbiguousTokenError{Text: text, Candidates: candidates})
}

// UnsupportedError signals a caller-requested feature with no
// implementation (e.g. non-right padding direction, non-zero stride).
type UnsupportedError struct {
	Feature string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("modutok: unsupported: %s", e.Feature)
}

func newUnsupportedError(format string, args ...any) error {
	return errors.WithStack(&UnsupportedError{Feature: fmt.Sprintf(format, args...)})
}
