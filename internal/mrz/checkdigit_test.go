package mrz_test

import (
	"testing"

	"mrzreader/internal/mrz"

	"github.com/stretchr/testify/require"
)

func TestComputeCheckDigit(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want byte
	}{
		// document specimen values
		{"D23145890", '7'},
		{"L898902C3", '6'},
		{"340712", '7'},
		{"740812", '2'},
		{"120415", '9'},
		{"950712", '2'},
		{"ZE184226B<<<<<", '1'},
		// fillers contribute zero, so an all-filler field checks to zero
		{"<<<<<<<<<<<<<<", '0'},
		{"", '0'},
	}

	for _, c := range cases {
		got, err := mrz.ComputeCheckDigit(c.in)
		require.NoError(t, err, c.in)
		require.Equal(t, string(c.want), string(got), c.in)
	}
}

func TestComputeCheckDigit_RejectsForeignCharacters(t *testing.T) {
	t.Parallel()

	_, err := mrz.ComputeCheckDigit("AB?12")
	require.Error(t, err)
}

// A single substituted digit always changes the check digit, which is the
// property the weighting scheme exists for. Letter substitutions ten values
// apart are a known blind spot and deliberately not asserted here.
func TestComputeCheckDigit_DetectsSingleSubstitution(t *testing.T) {
	t.Parallel()

	base := "7408122"
	want, err := mrz.ComputeCheckDigit(base)
	require.NoError(t, err)

	for i := 0; i < len(base); i++ {
		for _, r := range "0123456789" {
			if byte(r) == base[i] {
				continue
			}
			mutated := base[:i] + string(r) + base[i+1:]
			got, err := mrz.ComputeCheckDigit(mutated)
			require.NoError(t, err)
			require.NotEqual(t, string(want), string(got), mutated)
		}
	}
}
