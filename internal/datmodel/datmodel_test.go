package datmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParentsGroupsByCloneLink(t *testing.T) {
	d := DAT{Games: []Game{
		{Name: "P1"},
		{Name: "C1", Parent: "P1"},
		{Name: "P2"},
		{Name: "C2", Parent: "P1"},
	}}

	classes := d.Parents()
	require.Len(t, classes, 2)

	require.NotNil(t, classes[0].Game)
	assert.Equal(t, "P1", classes[0].Game.Name)
	require.Len(t, classes[0].Clones, 2)
	assert.Equal(t, "C1", classes[0].Clones[0].Name)
	assert.Equal(t, "C2", classes[0].Clones[1].Name)

	require.NotNil(t, classes[1].Game)
	assert.Equal(t, "P2", classes[1].Game.Name)
	assert.Empty(t, classes[1].Clones)
}

func TestParentsOrphanCloneFormsSingletonClass(t *testing.T) {
	d := DAT{Games: []Game{
		{Name: "C", Parent: "nonexistent"},
	}}

	classes := d.Parents()
	require.Len(t, classes, 1)
	assert.Nil(t, classes[0].Game)
	require.Len(t, classes[0].Clones, 1)
	assert.Equal(t, "C", classes[0].Clones[0].Name)
}

func TestRoleOfDistinguishesParentFromStandalone(t *testing.T) {
	d := DAT{Games: []Game{
		{Name: "P1"},
		{Name: "C1", Parent: "P1"},
		{Name: "Solo"},
	}}

	parent, _ := d.FindGame("P1")
	clone, _ := d.FindGame("C1")
	solo, _ := d.FindGame("Solo")

	assert.Equal(t, RoleParent, d.RoleOf(parent))
	assert.Equal(t, RoleClone, d.RoleOf(clone))
	assert.Equal(t, RoleStandalone, d.RoleOf(solo))
}

func TestRoleCountsTalliesEveryGame(t *testing.T) {
	d := DAT{Games: []Game{
		{Name: "P1"},
		{Name: "C1", Parent: "P1"},
		{Name: "C2", Parent: "P1"},
		{Name: "Solo"},
	}}

	counts := d.RoleCounts()
	assert.Equal(t, 1, counts[RoleParent])
	assert.Equal(t, 2, counts[RoleClone])
	assert.Equal(t, 1, counts[RoleStandalone])
}

func TestROMEffectiveName(t *testing.T) {
	r := ROM{Name: "a.rom"}
	assert.Equal(t, "a.rom", r.EffectiveName())

	r.Merge = "b.rom"
	assert.Equal(t, "b.rom", r.EffectiveName())
}

func TestGameWithROMsCopyOnWrite(t *testing.T) {
	g := Game{Name: "G", ROMs: []ROM{{Name: "a"}}}
	g2 := g.WithROMs([]ROM{{Name: "b"}})

	assert.Equal(t, "a", g.ROMs[0].Name)
	assert.Equal(t, "b", g2.ROMs[0].Name)
}
