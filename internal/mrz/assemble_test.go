package mrz_test

import (
	"testing"

	"mrzreader/internal/mrz"
	"mrzreader/pkg/domain"

	"github.com/stretchr/testify/require"
)

func TestAssemble_TrustPolicy(t *testing.T) {
	t.Parallel()

	format, fields := parseSpecimen(t, td3Line1, td3Line2)
	v := mrz.Validate(format, fields)
	raw := []string{td3Line1, td3Line2}

	doc := mrz.Assemble(format, fields, v, raw, true, mrz.AssembleOptions{})
	require.Equal(t, domain.TrustVerified, doc.Trust)
	require.Equal(t, raw, doc.Raw)
	require.True(t, doc.ConfidenceReported)
	require.InDelta(t, 0.95, doc.Confidence, 0.001)

	// one failed check downgrades without discarding anything
	v.Checks[0].Matches = false
	doc = mrz.Assemble(format, fields, v, raw, true, mrz.AssembleOptions{})
	require.Equal(t, domain.TrustPartiallyVerified, doc.Trust)
	require.Equal(t, fields, doc.Fields)

	// a consistency flag alone also blocks full verification
	v.Checks[0].Matches = true
	v.Consistency = []string{"documentNumber:candidateMismatch"}
	doc = mrz.Assemble(format, fields, v, raw, true, mrz.AssembleOptions{})
	require.Equal(t, domain.TrustPartiallyVerified, doc.Trust)
}

func TestAssemble_Unreadable(t *testing.T) {
	t.Parallel()

	// no detected format
	doc := mrz.Assemble("", nil, domain.Validation{}, nil, false, mrz.AssembleOptions{})
	require.Equal(t, domain.TrustUnreadable, doc.Trust)
	require.Zero(t, doc.Confidence)

	// too few cleanly decoded fields
	format, fields := parseSpecimen(t, td3Line1, td3Line2)
	for i := range fields {
		if i%2 == 0 {
			fields[i].Degraded = true
		}
	}
	doc = mrz.Assemble(format, fields, mrz.Validate(format, fields), nil, true,
		mrz.AssembleOptions{MinFieldFraction: 0.9})
	require.Equal(t, domain.TrustUnreadable, doc.Trust)
}

func TestAssemble_DegradedFieldDowngrades(t *testing.T) {
	t.Parallel()

	corrupted := td3Line2[:13] + "7?0812" + td3Line2[19:]
	format, fields := parseSpecimen(t, td3Line1, corrupted)
	v := mrz.Validate(format, fields)

	doc := mrz.Assemble(format, fields, v, nil, true, mrz.AssembleOptions{})
	require.Equal(t, domain.TrustPartiallyVerified, doc.Trust)

	// the degraded field is reported, not dropped
	f, ok := doc.Field(domain.FieldBirthDate)
	require.True(t, ok)
	require.True(t, f.Degraded)
	require.Equal(t, "7?0812", f.Raw)
}
