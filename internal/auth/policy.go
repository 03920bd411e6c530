package auth

import (
	"net/http"
	"strings"
)

// Policy determines required roles by request.
type Policy struct {
	ExemptPaths    map[string]struct{}
	ExemptPrefixes []string
}

// NewDefaultPolicy builds a default policy with exemptions.
func NewDefaultPolicy(exemptPaths []string, exemptPrefixes []string) Policy {
	set := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		set[path] = struct{}{}
	}
	return Policy{ExemptPaths: set, ExemptPrefixes: exemptPrefixes}
}

// IsExempt returns true when a request should skip auth/RBAC.
func (p Policy) IsExempt(r *http.Request) bool {
	if r == nil {
		return true
	}
	if _, ok := p.ExemptPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range p.ExemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

// RequiredRole resolves required role for the request. Member-scoped
// resources additionally enforce ownership in the handlers.
func (p Policy) RequiredRole(r *http.Request) (Role, bool) {
	if r == nil {
		return "", false
	}
	path := r.URL.Path
	method := r.Method

	switch {
	case strings.HasPrefix(path, "/api/v1/accrual"):
		return RoleAdmin, true
	case path == "/api/v1/topups":
		if method == http.MethodPost {
			return RoleMember, true
		}
		return RoleAdmin, true
	case strings.HasPrefix(path, "/api/v1/topups/"):
		return RoleAdmin, true
	case path == "/api/v1/withdrawals":
		if method == http.MethodPost {
			return RoleMember, true
		}
		return RoleAdmin, true
	case strings.HasPrefix(path, "/api/v1/withdrawals/"):
		return RoleAdmin, true
	case strings.HasPrefix(path, "/api/v1/members/"):
		return RoleMember, true
	}

	if strings.HasPrefix(path, "/api/") {
		if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
			return RoleMember, true
		}
		return RoleAdmin, true
	}
	return "", false
}
