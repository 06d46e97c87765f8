package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_MixedOrder(t *testing.T) {
	roles, err := Resolve([]string{"lon", "time", "lat"}, RoleNames{Time: "time", Lat: "lat", Lon: "lon"})
	require.NoError(t, err)
	assert.Equal(t, RoleAssignment{Time: 1, Depth: Absent, Lat: 2, Lon: 0}, roles)
}

func TestResolve_FirstMatchWins(t *testing.T) {
	roles, err := Resolve([]string{"lat", "lat", "lon"}, RoleNames{Lat: "lat", Lon: "lon"})
	require.NoError(t, err)
	assert.Equal(t, 0, roles.Lat)
	assert.Equal(t, 2, roles.Lon)
}

func TestResolve_EmptyNamesStayAbsent(t *testing.T) {
	roles, err := Resolve([]string{"depth", "lat", "lon"}, RoleNames{Lat: "lat", Lon: "lon"})
	require.NoError(t, err)
	assert.Equal(t, Absent, roles.Time)
	assert.Equal(t, Absent, roles.Depth)
}

func TestResolve_UnknownName(t *testing.T) {
	_, err := Resolve([]string{"time", "lat", "lon"}, RoleNames{Depth: "height", Lat: "lat", Lon: "lon"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDimensionNotFound))
	assert.Equal(t, "dimension_not_found", Kind(err))
}

func TestResolve_ExactMatchOnly(t *testing.T) {
	_, err := Resolve([]string{"Time", "lat", "lon"}, RoleNames{Time: "time", Lat: "lat", Lon: "lon"})
	assert.ErrorIs(t, err, ErrDimensionNotFound)
}

func TestFieldSpec_EffectiveNames(t *testing.T) {
	spec := FieldSpec{
		Names: RoleNames{Time: "time", Depth: "depth", Lat: "lat", Lon: "lon"},
		Flags: DependencyFlags{Time: true},
	}
	names := spec.EffectiveNames()
	assert.Equal(t, "time", names.Time)
	assert.Empty(t, names.Depth)
	assert.Equal(t, 3, spec.Flags.Rank())
}
