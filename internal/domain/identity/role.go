package identity

import (
	"github.com/datascientist-hue/live-dashboard/internal/domain/sales"
	"github.com/datascientist-hue/live-dashboard/internal/domain/shared"
)

// Role is the fixed set of organizational roles, broadest first.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleRGM        Role = "RGM"
	RoleDSM        Role = "DSM"
	RoleASM        Role = "ASM"
	RoleSO         Role = "SO"
)

// AssignableRoles lists the roles a SUPER_ADMIN may grant to new accounts.
// The super admin itself is bootstrapped once and never created through the
// account API.
var AssignableRoles = []Role{RoleAdmin, RoleRGM, RoleDSM, RoleASM, RoleSO}

// MatchKind is how an account's scope values are compared against a record.
type MatchKind int

const (
	// MatchAll applies no scope restriction.
	MatchAll MatchKind = iota
	// MatchScalar requires the record field to equal the single scope value.
	MatchScalar
	// MatchSet requires the record field to be a member of the scope set.
	MatchSet
)

// GroupView names a grouped performance table.
type GroupView string

const (
	ViewCategory    GroupView = "category"
	ViewDistributor GroupView = "distributor"
	ViewDistrict    GroupView = "district"
	ViewArea        GroupView = "area"
	ViewOfficer     GroupView = "officer"
)

// Capability is everything role-conditional in one place: how the account's
// scope restricts the dataset, which cascading filter dimensions the role is
// offered, and which grouped views it may request. Consulted once per
// request instead of branching on the role throughout the call chain.
type Capability struct {
	Role             Role
	ScopeDimension   sales.Dimension // zero for unrestricted roles
	Match            MatchKind
	FilterDimensions []sales.Dimension
	Groupings        []GroupView
	ManagesAccounts  bool
}

var capabilities = map[Role]Capability{
	RoleSuperAdmin: {
		Role:             RoleSuperAdmin,
		Match:            MatchAll,
		FilterDimensions: []sales.Dimension{sales.DimRegion, sales.DimDistrict, sales.DimArea, sales.DimOfficer},
		Groupings:        []GroupView{ViewCategory, ViewDistributor, ViewDistrict, ViewArea, ViewOfficer},
		ManagesAccounts:  true,
	},
	RoleAdmin: {
		Role:             RoleAdmin,
		Match:            MatchAll,
		FilterDimensions: []sales.Dimension{sales.DimRegion, sales.DimDistrict, sales.DimArea, sales.DimOfficer},
		Groupings:        []GroupView{ViewCategory, ViewDistributor, ViewDistrict, ViewArea, ViewOfficer},
	},
	RoleRGM: {
		Role:             RoleRGM,
		ScopeDimension:   sales.DimRegion,
		Match:            MatchScalar,
		FilterDimensions: []sales.Dimension{sales.DimDistrict, sales.DimArea, sales.DimOfficer},
		Groupings:        []GroupView{ViewCategory, ViewDistributor, ViewDistrict, ViewArea, ViewOfficer},
	},
	RoleDSM: {
		Role:             RoleDSM,
		ScopeDimension:   sales.DimDistrict,
		Match:            MatchSet,
		FilterDimensions: []sales.Dimension{sales.DimArea, sales.DimOfficer},
		Groupings:        []GroupView{ViewCategory, ViewDistributor, ViewArea, ViewOfficer},
	},
	RoleASM: {
		Role:             RoleASM,
		ScopeDimension:   sales.DimArea,
		Match:            MatchSet,
		FilterDimensions: []sales.Dimension{sales.DimOfficer},
		Groupings:        []GroupView{ViewCategory, ViewDistributor, ViewOfficer},
	},
	RoleSO: {
		Role:           RoleSO,
		ScopeDimension: sales.DimOfficer,
		Match:          MatchScalar,
		Groupings:      []GroupView{ViewCategory, ViewDistributor},
	},
}

// CapabilityFor resolves the capability set for a role. An unrecognized
// role is a hard error, never an unrestricted fallthrough.
func CapabilityFor(role Role) (Capability, error) {
	cap, ok := capabilities[role]
	if !ok {
		return Capability{}, shared.NewDomainError("UNKNOWN_ROLE", "Unrecognized role: access denied")
	}
	return cap, nil
}

// IsValidRole reports whether the role is one of the fixed enumeration.
func IsValidRole(role Role) bool {
	_, ok := capabilities[role]
	return ok
}

// AllowsGrouping reports whether the role may request the given view.
func (c Capability) AllowsGrouping(view GroupView) bool {
	for _, g := range c.Groupings {
		if g == view {
			return true
		}
	}
	return false
}

// ExposesFilter reports whether the role is offered a cascading filter on
// the given dimension.
func (c Capability) ExposesFilter(dim sales.Dimension) bool {
	for _, d := range c.FilterDimensions {
		if d == dim {
			return true
		}
	}
	return false
}

// ApplyScope restricts records to those visible to an account holding this
// capability with the given scope values. Pure and idempotent. A scalar
// legacy scope value and a singleton set are equivalent for set-matched
// roles. A scope that matches nothing yields an empty, non-nil slice so
// callers can distinguish "no data" from "not filtered".
func (c Capability) ApplyScope(records []sales.Record, scopeValues []string) []sales.Record {
	if c.Match == MatchAll {
		return records
	}

	allowed := make(map[string]struct{}, len(scopeValues))
	for _, v := range scopeValues {
		allowed[v] = struct{}{}
	}
	if c.Match == MatchScalar && len(scopeValues) > 1 {
		// Scalar roles carry exactly one scope value; extra values are
		// ignored rather than silently widening access.
		allowed = map[string]struct{}{scopeValues[0]: {}}
	}

	out := make([]sales.Record, 0, len(records))
	for _, r := range records {
		if _, ok := allowed[r.Dimension(c.ScopeDimension)]; ok {
			out = append(out, r)
		}
	}
	return out
}
