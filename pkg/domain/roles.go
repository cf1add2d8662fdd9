package domain

// Role is an operator capability carried in the access token. Mutating
// registry operations require RoleAdmin; reporting reads require RoleReporter
// or RoleComplianceOfficer; violation recording requires RoleComplianceOfficer.
type Role string

const (
	RoleAdmin             Role = "ADMIN"
	RoleAgent             Role = "AGENT"
	RoleReporter          Role = "REPORTER"
	RoleComplianceOfficer Role = "COMPLIANCE_OFFICER"
)

// ParseRole returns the Role for s, or false if s is not a known role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleAgent, RoleReporter, RoleComplianceOfficer:
		return Role(s), true
	}
	return "", false
}
