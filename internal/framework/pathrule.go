package framework

import "strings"

// PathRule picks the benchmarks directory for a framework identifier.
type PathRule interface {
	Select(framework string) string
}

// PathRuleFunc adapts a function to PathRule.
type PathRuleFunc func(framework string) string

func (f PathRuleFunc) Select(framework string) string { return f(framework) }

// MarkerRule routes identifiers containing Marker (case-insensitive) to Path.
type MarkerRule struct {
	Marker string
	Path   string
}

// MarkerRules applies the first matching MarkerRule, falling back to Default.
// An identifier that matches several markers takes the first one in the list.
type MarkerRules struct {
	Rules   []MarkerRule
	Default string
}

func (m MarkerRules) Select(framework string) string {
	name := strings.ToLower(framework)
	for _, r := range m.Rules {
		if r.Marker != "" && strings.Contains(name, strings.ToLower(r.Marker)) {
			return r.Path
		}
	}
	return m.Default
}

// DefaultPathRule sends every "openvino" framework to openvinoDir and everything else to genericDir.
func DefaultPathRule(genericDir, openvinoDir string) PathRule {
	return MarkerRules{
		Rules:   []MarkerRule{{Marker: "openvino", Path: openvinoDir}},
		Default: genericDir,
	}
}
