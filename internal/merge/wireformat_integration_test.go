package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"romnibus/models"
)

// These tests drive Transform through the real wire format (models.ParseDAT)
// instead of hand-built datmodel.Game values, so the BIOS-subtraction and
// FULLNONMERGED device-expansion branches are exercised the same way
// pipeline.Run's loadDAT exercises them against an on-disk catalog.

const biosAndDeviceDAT = `<?xml version="1.0"?>
<datafile>
<header><name>Arcade</name><description>Arcade</description></header>
<game name="Arcade BIOS">
	<rom name="bios.rom" size="128" sha1="feedface00000000000000000000000000face" bios="yes"/>
</game>
<game name="Coin-Op" romof="Arcade BIOS">
	<rom name="bios.rom" size="128" sha1="feedface00000000000000000000000000face"/>
	<rom name="game.rom" size="256" sha1="1234abcd000000000000000000000000000abc"/>
</game>
<game name="CPU Board">
	<rom name="cpu.rom" size="64" sha1="cccccccc0000000000000000000000000000cc"/>
</game>
<game name="Coin-Op Cabinet">
	<device_ref name="CPU Board"/>
	<rom name="cab.rom" size="32" sha1="dddddddd0000000000000000000000000000dd"/>
</game>
</datafile>`

func TestWireFormatBIOSSubtractionReachableFromParsedDAT(t *testing.T) {
	d, err := models.ParseDAT([]byte(biosAndDeviceDAT))
	require.NoError(t, err)

	coinOp, ok := d.FindGame("Coin-Op")
	require.True(t, ok)
	assert.Equal(t, "Arcade BIOS", coinOp.BIOS)

	out := Transform(d, ModeSplit)

	transformed, ok := out.FindGame("Coin-Op")
	require.True(t, ok)

	var names []string
	for _, r := range transformed.ROMs {
		names = append(names, r.Name)
	}
	// The shared bios.rom is subtracted; only game.rom remains.
	assert.Equal(t, []string{"game.rom"}, names)
}

func TestWireFormatDeviceExpansionReachableFromParsedDAT(t *testing.T) {
	d, err := models.ParseDAT([]byte(biosAndDeviceDAT))
	require.NoError(t, err)

	cabinet, ok := d.FindGame("Coin-Op Cabinet")
	require.True(t, ok)
	require.Equal(t, []string{"CPU Board"}, cabinet.DeviceRefs)

	out := Transform(d, ModeFullNonMerged)

	transformed, ok := out.FindGame("Coin-Op Cabinet")
	require.True(t, ok)

	var names []string
	for _, r := range transformed.ROMs {
		names = append(names, r.Name)
	}
	// cpu.rom (from the referenced device) is prepended to the cabinet's
	// own ROM, and the combined list is then re-sorted by name.
	assert.Equal(t, []string{"cab.rom", "cpu.rom"}, names)
}
