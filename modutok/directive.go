package modutok

import "regexp"

var directiveRegexp = regexp.MustCompile(`<@TOKENIZER-TYPE=([^>]*)>`)

// segment is one typed span produced by the Typed-Input Parser (C6): the
// name of the sub-tokenizer to run and the text to feed it.
type segment struct {
	Domain string
	Text   string
}

// parseDirectives splits a string on <@TOKENIZER-TYPE=NAME> directives. Any
// text before the first directive is a ParseError; an input with no
// directives at all is only valid if it is empty. Unknown domain names are
// deferred to the encoding pipeline, which is the only place that knows
// the current sub-tokenizer set.
func parseDirectives(input string) ([]segment, error) {
	matches := directiveRegexp.FindAllStringSubmatchIndex(input, -1)
	if len(matches) == 0 {
		if input == "" {
			return nil, nil
		}
		return nil, newParseError("text before first directive")
	}

	if matches[0][0] != 0 {
		return nil, newParseError("text before first directive")
	}

	segments := make([]segment, 0, len(matches))
	for i, m := range matches {
		name := input[m[2]:m[3]]
		bodyStart := m[1]
		bodyEnd := len(input)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		segments = append(segments, segment{Domain: name, Text: input[bodyStart:bodyEnd]})
	}
	return segments, nil
}
