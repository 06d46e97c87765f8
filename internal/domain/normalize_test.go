package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequence returns a raw field of the given shape holding 0, 1, 2, ...
func sequence(t *testing.T, shape ...int) *RawField {
	t.Helper()
	n := 1
	for _, s := range shape {
		n *= s
	}
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i)
	}
	f, err := NewRawField(shape, values)
	require.NoError(t, err)
	return f
}

func permutations(n int) [][]int {
	if n == 0 {
		return [][]int{{}}
	}
	var out [][]int
	for _, p := range permutations(n - 1) {
		for i := 0; i <= len(p); i++ {
			q := make([]int, 0, n)
			q = append(q, p[:i]...)
			q = append(q, n-1)
			q = append(q, p[i:]...)
			out = append(out, q)
		}
	}
	return out
}

func TestNormalize_TimeWithoutDepth(t *testing.T) {
	raw := sequence(t, 4, 3, 5) // [lon, time, lat]
	roles, err := Resolve([]string{"lon", "time", "lat"}, RoleNames{Time: "time", Lat: "lat", Lon: "lon"})
	require.NoError(t, err)

	got, err := Normalize(raw, roles, DependencyFlags{Time: true})
	require.NoError(t, err)
	assert.Equal(t, [4]int{3, 1, 5, 4}, got.Shape())

	for ti := 0; ti < 3; ti++ {
		for la := 0; la < 5; la++ {
			for lo := 0; lo < 4; lo++ {
				assert.Equal(t, raw.At(lo, ti, la), got.At(ti, 0, la, lo))
			}
		}
	}
}

func TestNormalize_DepthWithoutTime(t *testing.T) {
	raw := sequence(t, 2, 3, 4) // [lat, depth, lon]
	roles := RoleAssignment{Time: Absent, Depth: 1, Lat: 0, Lon: 2}

	got, err := Normalize(raw, roles, DependencyFlags{Depth: true})
	require.NoError(t, err)
	assert.Equal(t, [4]int{1, 3, 2, 4}, got.Shape())
	assert.Equal(t, raw.At(1, 2, 3), got.At(0, 2, 1, 3))
}

func TestNormalize_AllRank4PermutationsAreBijective(t *testing.T) {
	raw := sequence(t, 2, 3, 4, 5)
	for _, p := range permutations(4) {
		roles := RoleAssignment{Time: p[0], Depth: p[1], Lat: p[2], Lon: p[3]}
		got, err := Normalize(raw, roles, DependencyFlags{Time: true, Depth: true})
		require.NoError(t, err, "perm %v", p)

		shape := got.Shape()
		for i := range p {
			assert.Equal(t, raw.Shape()[p[i]], shape[i], "perm %v axis %d", p, i)
		}

		inverse := make([]int, 4)
		for i, axis := range p {
			inverse[axis] = i
		}
		back := permute(got.data, inverse)
		assert.Equal(t, raw.Shape(), back.Shape, "perm %v", p)
		assert.Equal(t, raw.Values(), back.Elements, "perm %v", p)
	}
}

func TestNormalize_NoTimeNoDepth(t *testing.T) {
	raw := sequence(t, 6, 4) // [lon, lat]
	got, err := Normalize(raw, RoleAssignment{Time: Absent, Depth: Absent, Lat: 1, Lon: 0}, DependencyFlags{})
	require.NoError(t, err)
	assert.Equal(t, [4]int{1, 1, 4, 6}, got.Shape())

	plane, err := SelectSlice(got, 0, 0)
	require.NoError(t, err)
	for la := 0; la < 4; la++ {
		for lo := 0; lo < 6; lo++ {
			assert.Equal(t, raw.At(lo, la), plane.At(la, lo))
		}
	}
}

func TestNormalize_AlreadyCanonical(t *testing.T) {
	raw := sequence(t, 3, 4)
	got, err := Normalize(raw, RoleAssignment{Time: Absent, Depth: Absent, Lat: 0, Lon: 1}, DependencyFlags{})
	require.NoError(t, err)
	assert.Equal(t, raw.Values(), got.Values())
}

func TestNormalize_ShapeMismatch(t *testing.T) {
	tests := []struct {
		name  string
		raw   *RawField
		roles RoleAssignment
		flags DependencyFlags
	}{
		{
			name:  "rank 3 with both flags",
			raw:   sequence(t, 2, 3, 4),
			roles: RoleAssignment{Time: 0, Depth: 1, Lat: 2, Lon: Absent},
			flags: DependencyFlags{Time: true, Depth: true},
		},
		{
			name:  "rank 4 with no flags",
			raw:   sequence(t, 1, 2, 3, 4),
			roles: RoleAssignment{Time: Absent, Depth: Absent, Lat: 2, Lon: 3},
			flags: DependencyFlags{},
		},
		{
			name:  "time position without time flag",
			raw:   sequence(t, 2, 3),
			roles: RoleAssignment{Time: 0, Depth: Absent, Lat: 0, Lon: 1},
			flags: DependencyFlags{},
		},
		{
			name:  "missing lon",
			raw:   sequence(t, 2, 3),
			roles: RoleAssignment{Time: Absent, Depth: Absent, Lat: 0, Lon: Absent},
			flags: DependencyFlags{},
		},
		{
			name:  "duplicate axis",
			raw:   sequence(t, 2, 3),
			roles: RoleAssignment{Time: Absent, Depth: Absent, Lat: 1, Lon: 1},
			flags: DependencyFlags{},
		},
		{
			name:  "position beyond rank",
			raw:   sequence(t, 2, 3, 4),
			roles: RoleAssignment{Time: 3, Depth: Absent, Lat: 0, Lon: 1},
			flags: DependencyFlags{Time: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw, tt.roles, tt.flags)
			assert.ErrorIs(t, err, ErrShapeMismatch)
			assert.Equal(t, "shape_mismatch", Kind(err))
		})
	}
}

func TestNormalize_ResultDoesNotAliasRaw(t *testing.T) {
	raw := sequence(t, 2, 2, 2, 2)
	roles := RoleAssignment{Time: 0, Depth: 1, Lat: 2, Lon: 3}
	got, err := Normalize(raw, roles, DependencyFlags{Time: true, Depth: true})
	require.NoError(t, err)

	got.data.Elements[0] = -1
	assert.Equal(t, 0.0, raw.At(0, 0, 0, 0))
}

func TestNewRawField_LengthMismatch(t *testing.T) {
	_, err := NewRawField([]int{2, 3}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = NewRawField(nil, []float64{1})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestInsertUnitAxis(t *testing.T) {
	raw := sequence(t, 2, 3)
	out := insertUnitAxis(raw.data, 1)
	assert.Equal(t, []int{2, 1, 3}, out.Shape)
	assert.Equal(t, raw.Values(), out.Elements)
}
