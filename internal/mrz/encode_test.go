package mrz_test

import (
	"testing"

	"mrzreader/internal/mrz"
	"mrzreader/pkg/domain"

	"github.com/stretchr/testify/require"
)

func TestEncode_TD3(t *testing.T) {
	t.Parallel()

	lines, err := mrz.Encode(domain.FormatTD3, map[domain.FieldName]string{
		domain.FieldDocumentCode:   "P",
		domain.FieldIssuingState:   "UTO",
		domain.FieldSurname:        "ERIKSSON",
		domain.FieldGivenNames:     "ANNA MARIA",
		domain.FieldDocumentNumber: "L898902C3",
		domain.FieldNationality:    "UTO",
		domain.FieldBirthDate:      "740812",
		domain.FieldSex:            "F",
		domain.FieldExpiryDate:     "120415",
		domain.FieldPersonalNumber: "ZE184226B",
	})
	require.NoError(t, err)
	require.Equal(t, []string{td3Line1, td3Line2}, lines)
}

func TestEncode_TD1(t *testing.T) {
	t.Parallel()

	lines, err := mrz.Encode(domain.FormatTD1, map[domain.FieldName]string{
		domain.FieldDocumentCode:   "I",
		domain.FieldIssuingState:   "UTO",
		domain.FieldDocumentNumber: "D23145890",
		domain.FieldBirthDate:      "740812",
		domain.FieldSex:            "F",
		domain.FieldExpiryDate:     "120415",
		domain.FieldNationality:    "UTO",
		domain.FieldSurname:        "ERIKSSON",
		domain.FieldGivenNames:     "ANNA MARIA",
	})
	require.NoError(t, err)
	require.Equal(t, []string{td1Line1, td1Line2, td1Line3}, lines)
}

// Encoded documents parse back to the values they were rendered from, and
// carry check digits the validator accepts.
func TestEncode_RoundTrip(t *testing.T) {
	t.Parallel()

	lines, err := mrz.Encode(domain.FormatTD2, map[domain.FieldName]string{
		domain.FieldDocumentCode:   "I",
		domain.FieldIssuingState:   "UTO",
		domain.FieldSurname:        "STEVENSON",
		domain.FieldGivenNames:     "PETER",
		domain.FieldDocumentNumber: "D23145890",
		domain.FieldNationality:    "UTO",
		domain.FieldBirthDate:      "340712",
		domain.FieldSex:            "M",
		domain.FieldExpiryDate:     "950712",
	})
	require.NoError(t, err)
	require.Equal(t, []string{td2Line1, td2Line2}, lines)

	format, fields, err := mrz.Parse(uniformLines(lines...), testOpts())
	require.NoError(t, err)
	require.Equal(t, domain.FormatTD2, format)
	require.Equal(t, "STEVENSON", fieldByName(t, fields, domain.FieldSurname).Value)
	require.True(t, mrz.Validate(format, fields).Passed())
}

func TestEncode_Errors(t *testing.T) {
	t.Parallel()

	_, err := mrz.Encode(domain.Format("TD9"), nil)
	require.Error(t, err)

	_, err = mrz.Encode(domain.FormatTD3, map[domain.FieldName]string{
		domain.FieldDocumentNumber: "WAYTOOLONGNUMBER",
		domain.FieldBirthDate:      "740812",
		domain.FieldExpiryDate:     "120415",
	})
	require.Error(t, err)

	_, err = mrz.Encode(domain.FormatTD3, map[domain.FieldName]string{
		domain.FieldBirthDate:  "74081", // not six digits
		domain.FieldExpiryDate: "120415",
	})
	require.Error(t, err)
}
