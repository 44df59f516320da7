package mrz_test

import (
	"testing"
	"time"

	"mrzreader/internal/mrz"
	"mrzreader/pkg/domain"
	"mrzreader/pkg/ocr"

	"github.com/stretchr/testify/require"
)

// Specimen documents from fictional issuing state UTO, with arithmetically
// valid check digits throughout.
const (
	td3Line1 = "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<"
	td3Line2 = "L898902C36UTO7408122F1204159ZE184226B<<<<<10"

	td2Line1 = "I<UTOSTEVENSON<<PETER<<<<<<<<<<<<<<<"
	td2Line2 = "D231458907UTO3407127M9507122<<<<<<<2"

	td1Line1 = "I<UTOD231458907<<<<<<<<<<<<<<<"
	td1Line2 = "7408122F1204159UTO<<<<<<<<<<<6"
	td1Line3 = "ERIKSSON<<ANNA<MARIA<<<<<<<<<<"
)

// testNow pins the reference date so century inference stays deterministic.
func testNow() time.Time {
	return time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
}

func testOpts() mrz.ParseOptions {
	return mrz.ParseOptions{Now: testNow}
}

func uniformLines(texts ...string) []ocr.Line {
	lines := make([]ocr.Line, len(texts))
	for i, t := range texts {
		lines[i] = ocr.Uniform(t, 0.95, true)
	}

	return lines
}

func fieldByName(t *testing.T, fields []domain.Field, name domain.FieldName) domain.Field {
	t.Helper()

	for _, f := range fields {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("field %s not found", name)

	return domain.Field{}
}

func TestParse_TD3(t *testing.T) {
	t.Parallel()

	format, fields, err := mrz.Parse(uniformLines(td3Line1, td3Line2), testOpts())
	require.NoError(t, err)
	require.Equal(t, domain.FormatTD3, format)

	require.Equal(t, "P", fieldByName(t, fields, domain.FieldDocumentCode).Value)
	require.Equal(t, "UTO", fieldByName(t, fields, domain.FieldIssuingState).Value)
	require.Equal(t, "ERIKSSON", fieldByName(t, fields, domain.FieldSurname).Value)
	require.Equal(t, "ANNA MARIA", fieldByName(t, fields, domain.FieldGivenNames).Value)
	require.Equal(t, "L898902C3", fieldByName(t, fields, domain.FieldDocumentNumber).Value)
	require.Equal(t, "UTO", fieldByName(t, fields, domain.FieldNationality).Value)
	require.Equal(t, "1974-08-12", fieldByName(t, fields, domain.FieldBirthDate).Value)
	require.Equal(t, string(domain.SexFemale), fieldByName(t, fields, domain.FieldSex).Value)
	require.Equal(t, "2012-04-15", fieldByName(t, fields, domain.FieldExpiryDate).Value)
	require.Equal(t, "ZE184226B", fieldByName(t, fields, domain.FieldPersonalNumber).Value)

	for _, f := range fields {
		require.False(t, f.Degraded, string(f.Name))
	}
}

func TestParse_TD2(t *testing.T) {
	t.Parallel()

	format, fields, err := mrz.Parse(uniformLines(td2Line1, td2Line2), testOpts())
	require.NoError(t, err)
	require.Equal(t, domain.FormatTD2, format)

	require.Equal(t, "STEVENSON", fieldByName(t, fields, domain.FieldSurname).Value)
	require.Equal(t, "PETER", fieldByName(t, fields, domain.FieldGivenNames).Value)
	require.Equal(t, "D23145890", fieldByName(t, fields, domain.FieldDocumentNumber).Value)
	require.Equal(t, "1934-07-12", fieldByName(t, fields, domain.FieldBirthDate).Value)
	require.Equal(t, string(domain.SexMale), fieldByName(t, fields, domain.FieldSex).Value)
	require.Equal(t, "2095-07-12", fieldByName(t, fields, domain.FieldExpiryDate).Value)
}

func TestParse_TD1(t *testing.T) {
	t.Parallel()

	format, fields, err := mrz.Parse(uniformLines(td1Line1, td1Line2, td1Line3), testOpts())
	require.NoError(t, err)
	require.Equal(t, domain.FormatTD1, format)

	require.Equal(t, "D23145890", fieldByName(t, fields, domain.FieldDocumentNumber).Value)
	require.Equal(t, "ERIKSSON", fieldByName(t, fields, domain.FieldSurname).Value)
	require.Equal(t, "ANNA MARIA", fieldByName(t, fields, domain.FieldGivenNames).Value)
	require.Equal(t, "1974-08-12", fieldByName(t, fields, domain.FieldBirthDate).Value)
	// the name zone spans the whole third line
	require.Equal(t, 2, fieldByName(t, fields, domain.FieldSurname).Line)
}

// A leading V on matching two-line geometry selects the visa layouts, which
// define no composite check digit and a wider optional-data field.
func TestParse_VisaDisambiguation(t *testing.T) {
	t.Parallel()

	mrvaLine1 := "V<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<"
	mrvaLine2 := "L898902C36UTO7408122F1204159ZE184226B<<<<<<<"

	format, fields, err := mrz.Parse(uniformLines(mrvaLine1, mrvaLine2), testOpts())
	require.NoError(t, err)
	require.Equal(t, domain.FormatMRVA, format)
	require.Equal(t, "ZE184226B", fieldByName(t, fields, domain.FieldOptionalData).Value)
	_, hasComposite := (&domain.Document{Fields: fields}).Field(domain.FieldComposite)
	require.False(t, hasComposite)
}

// One missing or one surplus trailing character per line is recovered; the
// repair happens at the end-of-field boundary so column positions stay valid.
func TestParse_LengthTolerance(t *testing.T) {
	t.Parallel()

	short := td3Line1[:len(td3Line1)-1]
	long := td3Line2 + "<"

	format, fields, err := mrz.Parse(uniformLines(short, long), testOpts())
	require.NoError(t, err)
	require.Equal(t, domain.FormatTD3, format)
	require.Equal(t, "ERIKSSON", fieldByName(t, fields, domain.FieldSurname).Value)
	require.Equal(t, "ZE184226B", fieldByName(t, fields, domain.FieldPersonalNumber).Value)
}

func TestParse_UndetectableFormat(t *testing.T) {
	t.Parallel()

	cases := [][]string{
		{td3Line1},                        // one line
		{td3Line1, td3Line2, td3Line2},    // three 44-char lines match nothing
		{td3Line1[:40], td3Line2[:40]},    // off by more than one character
		{td3Line1, td3Line2[:40]},         // mixed lengths
	}

	for _, lines := range cases {
		_, _, err := mrz.Parse(uniformLines(lines...), testOpts())
		var parseErr *mrz.ParseError
		require.ErrorAs(t, err, &parseErr)
	}
}

// A foreign character degrades only the field containing it; everything else
// still decodes.
func TestParse_DegradedField(t *testing.T) {
	t.Parallel()

	corrupted := td3Line2[:13] + "7?0812" + td3Line2[19:]

	format, fields, err := mrz.Parse(uniformLines(td3Line1, corrupted), testOpts())
	require.NoError(t, err)
	require.Equal(t, domain.FormatTD3, format)

	birth := fieldByName(t, fields, domain.FieldBirthDate)
	require.True(t, birth.Degraded)
	require.Empty(t, birth.Value)
	require.Equal(t, "7?0812", birth.Raw)

	require.False(t, fieldByName(t, fields, domain.FieldSurname).Degraded)
	require.False(t, fieldByName(t, fields, domain.FieldDocumentNumber).Degraded)
}

// Birth-date centuries are inferred so the implied age stays within bounds;
// expiry dates are always taken to be in the 2000s.
func TestParse_CenturyInference(t *testing.T) {
	t.Parallel()

	line2 := func(birth, birthCheck string) string {
		return td3Line2[:13] + birth + birthCheck + td3Line2[20:]
	}

	format, fields, err := mrz.Parse(uniformLines(td3Line1, line2("500101", "3")), testOpts())
	require.NoError(t, err)
	require.Equal(t, domain.FormatTD3, format)
	require.Equal(t, "1950-01-01", fieldByName(t, fields, domain.FieldBirthDate).Value)

	// a tighter age bound pushes the same digits out of range entirely
	opts := mrz.ParseOptions{Now: testNow, MaxAge: 20}
	_, fields, err = mrz.Parse(uniformLines(td3Line1, line2("500101", "3")), opts)
	require.NoError(t, err)
	birth := fieldByName(t, fields, domain.FieldBirthDate)
	require.True(t, birth.Degraded)
	require.Empty(t, birth.Value)
}

// Impossible calendar dates are rejected rather than normalized.
func TestParse_InvalidDate(t *testing.T) {
	t.Parallel()

	corrupted := td3Line2[:13] + "740230" + td3Line2[19:]

	_, fields, err := mrz.Parse(uniformLines(td3Line1, corrupted), testOpts())
	require.NoError(t, err)
	require.True(t, fieldByName(t, fields, domain.FieldBirthDate).Degraded)
}

func TestParse_UnspecifiedSex(t *testing.T) {
	t.Parallel()

	neutral := td3Line2[:20] + "<" + td3Line2[21:]

	_, fields, err := mrz.Parse(uniformLines(td3Line1, neutral), testOpts())
	require.NoError(t, err)
	sex := fieldByName(t, fields, domain.FieldSex)
	require.Equal(t, string(domain.SexUnspecified), sex.Value)
	require.False(t, sex.Degraded)
}
