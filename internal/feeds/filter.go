package feeds

import (
	"regexp"
	"strings"
)

// preReleaseSuffixPattern matches version titles carrying a numeric
// pre-release suffix, e.g. "0.0.389-0".
var preReleaseSuffixPattern = regexp.MustCompile(`-\d+$`)

// submodulePrefixes are the per-language namespace prefixes used for SDK
// submodule tags. Submodule releases are announced by their own streams,
// never by the parent repository's.
var submodulePrefixes = []string{"go/", "python/", "typescript/"}

// rule is a single named exclusion check.
type rule struct {
	name  string
	match func(title, body string) bool
}

// RuleSet is an ordered list of exclusion rules for one product stream.
// Evaluation short-circuits on the first match; ordering affects only the
// reason surfaced to logs, not the accept/reject outcome.
type RuleSet struct {
	name  string
	rules []rule
}

// IsExcluded reports whether the entry is excluded and, if so, the name of
// the first matching rule.
func (rs RuleSet) IsExcluded(title, body string) (string, bool) {
	for _, r := range rs.rules {
		if r.match(title, body) {
			return r.name, true
		}
	}
	return "", false
}

// Name returns the rule set's identifier.
func (rs RuleSet) Name() string {
	return rs.name
}

var stableRules = []rule{
	{
		name: "pre-release suffix",
		match: func(title, _ string) bool {
			return preReleaseSuffixPattern.MatchString(strings.TrimSpace(title))
		},
	},
	{
		name: "pre-release marker",
		match: func(_, body string) bool {
			return strings.Contains(strings.ToLower(body), "pre-release")
		},
	},
}

var submoduleRules = append([]rule{
	{
		name: "submodule namespace",
		match: func(title, _ string) bool {
			lower := strings.ToLower(strings.TrimSpace(title))
			for _, prefix := range submodulePrefixes {
				if strings.HasPrefix(lower, prefix) {
					return true
				}
			}
			return false
		},
	},
	{
		name: "preview marker",
		match: func(title, _ string) bool {
			return strings.Contains(title, "-preview")
		},
	},
}, stableRules...)

// RuleSetFor returns the rule set for the given filter name. Unknown names
// fall back to the generic stable-release rules; config validation rejects
// them before this is reached.
func RuleSetFor(filter string) RuleSet {
	switch filter {
	case "submodule":
		return RuleSet{name: "submodule", rules: submoduleRules}
	default:
		return RuleSet{name: "stable", rules: stableRules}
	}
}
