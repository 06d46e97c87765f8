package domain

import "fmt"

// Resolve maps each declared role to the position of its name in dims.
// Roles with an empty name stay Absent. Matching is exact and the first
// occurrence wins.
func Resolve(dims []string, names RoleNames) (RoleAssignment, error) {
	roles := AbsentRoles()
	for _, r := range CanonicalRoles {
		target := names.Name(r)
		if target == "" {
			continue
		}
		pos := indexOf(dims, target)
		if pos == Absent {
			return AbsentRoles(), fmt.Errorf("%w: %s dimension %q not in %v", ErrDimensionNotFound, r, target, dims)
		}
		roles.set(r, pos)
	}
	return roles, nil
}

func indexOf(dims []string, target string) int {
	for i, d := range dims {
		if d == target {
			return i
		}
	}
	return Absent
}
