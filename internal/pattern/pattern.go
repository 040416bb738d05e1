// Package pattern auto-detects wildcard vs. regular-expression patterns and
// matches candidate strings (object keys, bucket names) against them.
package pattern

import (
	"path/filepath"
	"regexp"
	"strings"

	s3clierrors "github.com/marmos91/s3cli/internal/errors"
)

// regexTriggers are the characters whose presence in a pattern signals a
// regular expression rather than a glob. Patterns built only from *, ?, []
// are always treated as wildcards, even if ambiguous.
const regexTriggers = `(){}+^$\|`

// IsRegex reports whether pattern should be evaluated as a regular
// expression rather than a shell-style glob.
func IsRegex(pattern string) bool {
	return strings.ContainsAny(pattern, regexTriggers)
}

// Match reports whether candidate matches pattern. Detection is automatic:
// patterns containing any of "(", ")", "{", "}", "+", "^", "$", "\", "|"
// are evaluated as anchored regular expressions; all other patterns are
// evaluated as glob expressions supporting "*" (zero or more non-"/"
// characters), "?" (a single non-"/" character), and "[set]"/"[!set]"
// character classes. Returns PatternError if pattern fails to compile.
func Match(pattern, candidate string) (bool, error) {
	if IsRegex(pattern) {
		return matchRegex(pattern, candidate)
	}
	return matchGlob(pattern, candidate)
}

// Compile returns a Matcher bound to pattern, suitable for repeated
// matching against many candidates without re-detecting or re-compiling
// the pattern on every call. Returns PatternError if pattern fails to
// compile.
func Compile(pattern string) (Matcher, error) {
	if IsRegex(pattern) {
		re, err := regexp.Compile(anchor(pattern))
		if err != nil {
			return nil, s3clierrors.Wrap(s3clierrors.KindPatternError, err,
				"invalid regular expression: "+pattern)
		}
		return regexMatcher{re: re}, nil
	}

	// filepath.Match validates the pattern lazily on every call; compile
	// once here so a malformed glob fails fast instead of per-candidate.
	translated := translateGlob(pattern)
	if _, err := filepath.Match(translated, ""); err != nil {
		return nil, s3clierrors.Wrap(s3clierrors.KindPatternError, err,
			"invalid glob pattern: "+pattern)
	}
	return globMatcher{pattern: pattern}, nil
}

// Matcher matches candidate strings against a pattern that was validated
// once at construction time.
type Matcher interface {
	Match(candidate string) bool
}

type globMatcher struct {
	pattern string
}

func (m globMatcher) Match(candidate string) bool {
	ok, err := filepath.Match(translateGlob(m.pattern), candidate)
	return err == nil && ok
}

type regexMatcher struct {
	re *regexp.Regexp
}

func (m regexMatcher) Match(candidate string) bool {
	return m.re.MatchString(candidate)
}

func matchGlob(pattern, candidate string) (bool, error) {
	ok, err := filepath.Match(translateGlob(pattern), candidate)
	if err != nil {
		return false, s3clierrors.Wrap(s3clierrors.KindPatternError, err,
			"invalid glob pattern: "+pattern)
	}
	return ok, nil
}

// CompileFilters compiles include and exclude into Matchers, in order.
// Returns a PatternError naming the first pattern that fails to compile.
func CompileFilters(include, exclude []string) (includeMatchers, excludeMatchers []Matcher, err error) {
	for _, p := range include {
		m, err := Compile(p)
		if err != nil {
			return nil, nil, err
		}
		includeMatchers = append(includeMatchers, m)
	}
	for _, p := range exclude {
		m, err := Compile(p)
		if err != nil {
			return nil, nil, err
		}
		excludeMatchers = append(excludeMatchers, m)
	}
	return includeMatchers, excludeMatchers, nil
}

// PassesFilters reports whether candidate should be kept: exclude always
// wins, and an empty include list means "everything not excluded".
func PassesFilters(candidate string, include, exclude []Matcher) bool {
	for _, m := range exclude {
		if m.Match(candidate) {
			return false
		}
	}
	if len(include) == 0 {
		return true
	}
	for _, m := range include {
		if m.Match(candidate) {
			return true
		}
	}
	return false
}

// translateGlob rewrites the shell-style negated character class "[!set]"
// into the "[^set]" form filepath.Match expects; every other construct
// ("*", "?", "[set]", "[a-z]") is already compatible as-is.
func translateGlob(pattern string) string {
	return strings.ReplaceAll(pattern, "[!", "[^")
}

func matchRegex(pattern, candidate string) (bool, error) {
	re, err := regexp.Compile(anchor(pattern))
	if err != nil {
		return false, s3clierrors.Wrap(s3clierrors.KindPatternError, err,
			"invalid regular expression: "+pattern)
	}
	return re.MatchString(candidate), nil
}

// anchor ensures regex evaluation is anchored to the full candidate string,
// per the matching contract, by wrapping pattern in a non-capturing group
// so alternations such as "a|b" cannot match a mere prefix or suffix. A
// pattern's own "^" / "$" remain valid inside the group.
func anchor(pattern string) string {
	return "^(?:" + pattern + ")$"
}
