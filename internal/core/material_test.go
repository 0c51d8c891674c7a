package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultMaterialTableHasAllKinds(t *testing.T) {
	table := DefaultMaterialTable()
	assert.Equal(t, MaterialCount(), len(table))
	assert.GreaterOrEqual(t, len(table), 8)

	for i, m := range table {
		assert.NotEmpty(t, m.Name, "material %d should have a name", i)
	}
}

func TestMaterialKindStringKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "Fluid", MaterialFluid.String())
	assert.Equal(t, "Plasma", MaterialPlasma.String())
	assert.Equal(t, "Unknown", MaterialKind(200).String())
}

func TestMaterialTableIndexingMatchesKind(t *testing.T) {
	table := DefaultMaterialTable()
	assert.Equal(t, "Sand", table[MaterialSand].Name)
	assert.True(t, table[MaterialSand].IsGranular)
	assert.True(t, table[MaterialElastic].IsElastic)
}
