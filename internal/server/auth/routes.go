package auth

import (
	"regexp"
	"strings"
)

// RouteRule marks a path pattern as public or protected. A '*' in Pattern
// matches any run of characters, slashes included.
type RouteRule struct {
	Pattern string
	Public  bool
}

type compiledRule struct {
	exact  string
	re     *regexp.Regexp
	public bool
}

func (r compiledRule) match(path string) bool {
	if r.re != nil {
		return r.re.MatchString(path)
	}
	return r.exact == path
}

// RouteGate answers whether a request path may be served without a token.
// Rules are evaluated in order and the first match wins; a path no rule
// matches is protected.
type RouteGate struct {
	rules []compiledRule
}

// NewRouteGate compiles rules once. The slice is copied.
func NewRouteGate(rules []RouteRule) *RouteGate {
	g := &RouteGate{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		cr := compiledRule{exact: r.Pattern, public: r.Public}
		if strings.Contains(r.Pattern, "*") {
			expr := strings.ReplaceAll(regexp.QuoteMeta(r.Pattern), `\*`, ".*")
			cr.re = regexp.MustCompile("^" + expr + "$")
		}
		g.rules = append(g.rules, cr)
	}
	return g
}

// DefaultRouteRules lists the paths reachable without a session token.
func DefaultRouteRules() []RouteRule {
	return []RouteRule{
		{Pattern: "/api/auth/login", Public: true},
		{Pattern: "/api/auth/register", Public: true},
		{Pattern: "/api/auth/forgot-password", Public: true},
		{Pattern: "/api/proposal/*/respond", Public: true},
		{Pattern: "/api/proposal/*/accept", Public: true},
		{Pattern: "/api/proposal/*/reject", Public: true},
		{Pattern: "/health", Public: true},
		{Pattern: "/metrics", Public: true},
	}
}

// IsPublic reports whether path is exempt from authentication.
func (g *RouteGate) IsPublic(path string) bool {
	for _, r := range g.rules {
		if r.match(path) {
			return r.public
		}
	}
	return false
}
