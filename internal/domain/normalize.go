package domain

import "fmt"

// Normalize reorders raw into canonical [time, depth, lat, lon] order.
//
// Absent time and depth roles are synthesized as unit axes: a unit axis is
// inserted at position 0 for time, then for depth, shifting every present
// role position by one each time, and the resulting 4-axis array is permuted
// into canonical order. The result never aliases raw.
func Normalize(raw *RawField, roles RoleAssignment, flags DependencyFlags) (*CanonicalField, error) {
	if err := checkRoles(raw, roles, flags); err != nil {
		return nil, err
	}

	data := raw.data
	pos := roles
	if !flags.Time {
		data = insertUnitAxis(data, 0)
		pos = pos.shifted()
		pos.Time = 0
	}
	if !flags.Depth {
		data = insertUnitAxis(data, 0)
		pos = pos.shifted()
		pos.Depth = 0
	}

	perm := []int{pos.Time, pos.Depth, pos.Lat, pos.Lon}
	return &CanonicalField{data: permute(data, perm)}, nil
}

// shifted returns a copy with every present position moved one axis right.
func (a RoleAssignment) shifted() RoleAssignment {
	out := a
	for _, r := range CanonicalRoles {
		if p := a.Position(r); p != Absent {
			out.set(r, p+1)
		}
	}
	return out
}

func checkRoles(raw *RawField, roles RoleAssignment, flags DependencyFlags) error {
	rank := raw.Rank()
	if want := flags.Rank(); rank != want {
		return fmt.Errorf("%w: raw array has %d axes, flags %+v require %d", ErrShapeMismatch, rank, flags, want)
	}

	present := map[Role]bool{
		RoleTime:  flags.Time,
		RoleDepth: flags.Depth,
		RoleLat:   true,
		RoleLon:   true,
	}
	seen := make(map[int]Role, 4)
	for _, r := range CanonicalRoles {
		p := roles.Position(r)
		if !present[r] {
			if p != Absent {
				return fmt.Errorf("%w: %s is at axis %d but the field does not depend on it", ErrShapeMismatch, r, p)
			}
			continue
		}
		if p == Absent {
			return fmt.Errorf("%w: %s axis is required but absent", ErrShapeMismatch, r)
		}
		if p < 0 || p >= rank {
			return fmt.Errorf("%w: %s axis %d outside rank %d", ErrShapeMismatch, r, p, rank)
		}
		if other, dup := seen[p]; dup {
			return fmt.Errorf("%w: %s and %s both map to axis %d", ErrShapeMismatch, other, r, p)
		}
		seen[p] = r
	}
	return nil
}
