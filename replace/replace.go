// Package replace provides the Replacer capability: a compiled
// pattern/replacement pair that the rewrite engine applies to tree entry
// names and commit messages. It has no dependency on the object model and
// could just as well be reused by the future blob-content rewriting
// feature.
package replace

import "regexp"

// Replacer performs a global, non-overlapping substitution and reports
// whether any substitution occurred.
type Replacer interface {
	// Replace returns the substituted string and the number of
	// non-overlapping matches that were replaced. A count of zero means
	// the input is returned unchanged.
	Replace(input string) (output string, count int)
}

// regexReplacer is the standard-library-backed Replacer. No third-party
// regular-expression engine in the example pack offers anything the
// standard library's RE2 engine (linear-time, no catastrophic backtracking)
// does not already provide for this job; see DESIGN.md.
type regexReplacer struct {
	pattern     *regexp.Regexp
	replacement string
}

// New compiles pattern and pairs it with replacement. replacement may use
// $1/${name} backreferences exactly as regexp.Regexp.ReplaceAll does.
func New(pattern, replacement string) (Replacer, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &regexReplacer{pattern: re, replacement: replacement}, nil
}

func (r *regexReplacer) Replace(input string) (string, int) {
	matches := r.pattern.FindAllStringIndex(input, -1)
	if len(matches) == 0 {
		return input, 0
	}
	return r.pattern.ReplaceAllString(input, r.replacement), len(matches)
}
