package headers

import (
	"regexp"
	"strings"
)

var lineSeparators = regexp.MustCompile(`[\r\n]+`)

const nameValueSeparator = ": "

// ParseBlock parses a raw, newline-delimited header block. Lines are split
// on the first ": "; everything after it is kept verbatim as the value. Lines
// without a separator or with an empty name are skipped. A block that yields
// no header at all is a *ParseError.
func ParseBlock(block string) (HeaderMap, error) {
	trimmed := strings.TrimRight(block, " \t\r\n")
	if trimmed == "" {
		return nil, &ParseError{Reason: "empty header block", Block: block}
	}

	out := make(HeaderMap)
	for _, line := range lineSeparators.Split(trimmed, -1) {
		if line == "" {
			continue
		}
		name, value, ok := strings.Cut(line, nameValueSeparator)
		if !ok || name == "" {
			continue
		}
		out.Set(name, value)
	}

	if len(out) == 0 {
		return nil, &ParseError{
			Reason: "no recognizable header lines",
			Block:  block,
		}
	}
	return out, nil
}
