package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/plume-impact-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	chlorine, ok := c.Lookup("Chlorine")
	require.True(t, ok)
	assert.Equal(t, 778000.0, chlorine.VaporPressurePa)
	assert.Equal(t, 1560.0, chlorine.LiquidDensity)
	assert.Equal(t, domain.DefaultChemicalProperties().HoleDiameterM, chlorine.HoleDiameterM)

	alias, ok := c.Lookup("  Anhydrous   AMMONIA ")
	require.True(t, ok)
	ammonia, _ := c.Lookup("ammonia")
	assert.Equal(t, ammonia, alias)

	_, ok = c.Lookup("unobtainium")
	assert.False(t, ok)
}

func TestParse_DefaultsForMissingFields(t *testing.T) {
	c, err := Parse([]byte(`
chemicals:
  water:
    vapor_pressure_pa: 3170
`))
	require.NoError(t, err)

	got, ok := c.Lookup("WATER")
	require.True(t, ok)

	want := domain.DefaultChemicalProperties()
	want.VaporPressurePa = 3170
	assert.Equal(t, want, got)
	assert.Equal(t, 1, c.Len())
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("chemicals: [not, a, map"))
	require.Error(t, err)

	_, err = Parse([]byte("chemicals:\n  bad:\n    liquid_density_kg_m3: -1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")

	_, err = Parse([]byte("chemicals:\n  bad:\n    vapor_pressure_pa: high\n"))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chemicals.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chemicals:\n  acetone:\n    vapor_pressure_pa: 30800\n"), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	_, ok := c.Lookup("acetone")
	assert.True(t, ok)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	builtin, err := Load("")
	require.NoError(t, err)
	_, ok = builtin.Lookup("benzene")
	assert.True(t, ok)
}

func TestCatalog_SatisfiesDomainInterface(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	var catalog domain.ChemicalCatalog = c
	req := domain.ReleaseRequest{
		Source:   &domain.ReleaseSource{Latitude: 29.76, Longitude: -95.37},
		Chemical: "chlorine",
		Release:  &domain.ReleaseScenario{Model: "tank"},
	}
	got := domain.ResolveEmissionRate(req, catalog)
	assert.Greater(t, got.Source.EmissionRate, domain.TankDischargeRate(domain.DefaultChemicalProperties()))
}
