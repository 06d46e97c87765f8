package domain

import "fmt"

// Role is the semantic meaning of one axis of a gridded variable.
type Role int

const (
	// RoleTime is the time axis.
	RoleTime Role = iota
	// RoleDepth is the depth (or height) axis.
	RoleDepth
	// RoleLat is the latitude axis.
	RoleLat
	// RoleLon is the longitude axis.
	RoleLon
)

// CanonicalRoles lists the roles in canonical axis order.
var CanonicalRoles = [4]Role{RoleTime, RoleDepth, RoleLat, RoleLon}

// String returns the lower-case role name.
func (r Role) String() string {
	switch r {
	case RoleTime:
		return "time"
	case RoleDepth:
		return "depth"
	case RoleLat:
		return "lat"
	case RoleLon:
		return "lon"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Absent marks a role that has no axis in a variable.
const Absent = -1

// RoleNames holds the raw dimension name declared for each role.
// An empty name means the role is absent.
type RoleNames struct {
	Time  string
	Depth string
	Lat   string
	Lon   string
}

// Name returns the declared name for a role.
func (n RoleNames) Name(r Role) string {
	switch r {
	case RoleTime:
		return n.Time
	case RoleDepth:
		return n.Depth
	case RoleLat:
		return n.Lat
	case RoleLon:
		return n.Lon
	default:
		return ""
	}
}

// RoleAssignment holds, for one variable, the position of each role in the
// variable's raw dimension list, or Absent.
type RoleAssignment struct {
	Time  int
	Depth int
	Lat   int
	Lon   int
}

// AbsentRoles returns an assignment with every role absent.
func AbsentRoles() RoleAssignment {
	return RoleAssignment{Time: Absent, Depth: Absent, Lat: Absent, Lon: Absent}
}

// Position returns the axis position recorded for a role.
func (a RoleAssignment) Position(r Role) int {
	switch r {
	case RoleTime:
		return a.Time
	case RoleDepth:
		return a.Depth
	case RoleLat:
		return a.Lat
	case RoleLon:
		return a.Lon
	default:
		return Absent
	}
}

func (a *RoleAssignment) set(r Role, pos int) {
	switch r {
	case RoleTime:
		a.Time = pos
	case RoleDepth:
		a.Depth = pos
	case RoleLat:
		a.Lat = pos
	case RoleLon:
		a.Lon = pos
	}
}

// DependencyFlags records whether a field varies along time and depth.
type DependencyFlags struct {
	Time  bool
	Depth bool
}

// Rank is the number of raw axes a field with these flags must have.
func (f DependencyFlags) Rank() int {
	rank := 2
	if f.Time {
		rank++
	}
	if f.Depth {
		rank++
	}
	return rank
}

// FieldSpec is the immutable role and flag record declared once per field and
// shared by every component derived from it.
type FieldSpec struct {
	Names RoleNames
	Flags DependencyFlags
}

// EffectiveNames returns the role names with time and depth cleared when the
// field does not depend on them.
func (s FieldSpec) EffectiveNames() RoleNames {
	names := s.Names
	if !s.Flags.Time {
		names.Time = ""
	}
	if !s.Flags.Depth {
		names.Depth = ""
	}
	return names
}
