package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeAddress(t *testing.T) {
	require.Equal(t, "12 high street", NormalizeAddress("12 High St."))
	require.Equal(t, "flat 3 rose court 4 6 mill road", NormalizeAddress("Flat 3, Rose Ct, 4-6 Mill Rd"))
	require.Equal(t, "", NormalizeAddress("  ,.  "))
	require.Equal(t, "kings house", NormalizeAddress("King's Hse"))
}

func TestPostcode(t *testing.T) {
	require.Equal(t, "SW1A1AA", NormalizePostcode(" sw1a 1aa "))
	require.Equal(t, "SW1A 1AA", FormatPostcode("sw1a1aa"))
	require.Equal(t, "M1 1AE", FormatPostcode("m11ae"))
	require.True(t, ValidPostcode("EC1A 1BB"))
	require.True(t, ValidPostcode("b33 8th"))
	require.False(t, ValidPostcode("12345"))
	require.False(t, ValidPostcode(""))
}

func TestBuildingID(t *testing.T) {
	a, err := BuildingID("12 High St.", "sw1a 1aa")
	require.NoError(t, err)
	b, err := BuildingID("12  high street", "SW1A1AA")
	require.NoError(t, err)
	require.Equal(t, a, b)

	c, err := BuildingID("14 High Street", "SW1A 1AA")
	require.NoError(t, err)
	require.NotEqual(t, a, c)

	d, err := BuildingID("12 High Street", "SW1A 2AA")
	require.NoError(t, err)
	require.NotEqual(t, a, d)

	_, err = BuildingID("12 High Street", "nope")
	require.ErrorIs(t, err, ErrInvalidPostcode)
	_, err = BuildingID("  ", "SW1A 1AA")
	require.Error(t, err)
}
