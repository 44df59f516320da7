package mrz

import "mrzreader/pkg/domain"

// fieldKind selects the decoder applied to a field's raw column slice.
type fieldKind int

const (
	// kindAlnum keeps uppercase letters and digits, stripping fillers.
	kindAlnum fieldKind = iota
	// kindNames splits the name zone into surname and given names.
	kindNames
	// kindDate decodes a 6-digit YYMMDD value.
	kindDate
	// kindSex decodes the single-character sex field.
	kindSex
	// kindCheck is a single ICAO check digit.
	kindCheck
)

// fieldSpec places one field inside an MRZ layout. Columns are zero-based.
type fieldSpec struct {
	name   domain.FieldName
	kind   fieldKind
	line   int
	start  int
	length int
}

// checkPair links a checked value field with its check-digit field.
type checkPair struct {
	value domain.FieldName
	digit domain.FieldName
}

// formatSpec is the static description of one MRZ layout variant: fixed line
// geometry, per-field column ranges, the checked fields and the composite
// check-digit span. Keeping these as data avoids per-format parsing branches.
type formatSpec struct {
	format    domain.Format
	lineCount int
	lineLen   int
	fields    []fieldSpec
	checks    []checkPair
	// composite lists, in order, the fields whose raw text feeds the final
	// check digit. Empty for visa formats, which define none.
	composite []domain.FieldName
}

// formats holds every supported layout. TD3 vs MRV-A and TD2 vs MRV-B share
// geometry and are disambiguated by the leading document-code letter.
var formats = []formatSpec{
	{
		format:    domain.FormatTD1,
		lineCount: 3,
		lineLen:   30,
		fields: []fieldSpec{
			{domain.FieldDocumentCode, kindAlnum, 0, 0, 2},
			{domain.FieldIssuingState, kindAlnum, 0, 2, 3},
			{domain.FieldDocumentNumber, kindAlnum, 0, 5, 9},
			{domain.FieldDocumentNumberCheck, kindCheck, 0, 14, 1},
			{domain.FieldOptionalData, kindAlnum, 0, 15, 15},
			{domain.FieldBirthDate, kindDate, 1, 0, 6},
			{domain.FieldBirthDateCheck, kindCheck, 1, 6, 1},
			{domain.FieldSex, kindSex, 1, 7, 1},
			{domain.FieldExpiryDate, kindDate, 1, 8, 6},
			{domain.FieldExpiryDateCheck, kindCheck, 1, 14, 1},
			{domain.FieldNationality, kindAlnum, 1, 15, 3},
			{domain.FieldOptionalData2, kindAlnum, 1, 18, 11},
			{domain.FieldComposite, kindCheck, 1, 29, 1},
			{domain.FieldSurname, kindNames, 2, 0, 30},
		},
		checks: []checkPair{
			{domain.FieldDocumentNumber, domain.FieldDocumentNumberCheck},
			{domain.FieldBirthDate, domain.FieldBirthDateCheck},
			{domain.FieldExpiryDate, domain.FieldExpiryDateCheck},
		},
		composite: []domain.FieldName{
			domain.FieldDocumentNumber, domain.FieldDocumentNumberCheck, domain.FieldOptionalData,
			domain.FieldBirthDate, domain.FieldBirthDateCheck,
			domain.FieldExpiryDate, domain.FieldExpiryDateCheck,
			domain.FieldOptionalData2,
		},
	},
	{
		format:    domain.FormatTD2,
		lineCount: 2,
		lineLen:   36,
		fields: []fieldSpec{
			{domain.FieldDocumentCode, kindAlnum, 0, 0, 2},
			{domain.FieldIssuingState, kindAlnum, 0, 2, 3},
			{domain.FieldSurname, kindNames, 0, 5, 31},
			{domain.FieldDocumentNumber, kindAlnum, 1, 0, 9},
			{domain.FieldDocumentNumberCheck, kindCheck, 1, 9, 1},
			{domain.FieldNationality, kindAlnum, 1, 10, 3},
			{domain.FieldBirthDate, kindDate, 1, 13, 6},
			{domain.FieldBirthDateCheck, kindCheck, 1, 19, 1},
			{domain.FieldSex, kindSex, 1, 20, 1},
			{domain.FieldExpiryDate, kindDate, 1, 21, 6},
			{domain.FieldExpiryDateCheck, kindCheck, 1, 27, 1},
			{domain.FieldOptionalData, kindAlnum, 1, 28, 7},
			{domain.FieldComposite, kindCheck, 1, 35, 1},
		},
		checks: []checkPair{
			{domain.FieldDocumentNumber, domain.FieldDocumentNumberCheck},
			{domain.FieldBirthDate, domain.FieldBirthDateCheck},
			{domain.FieldExpiryDate, domain.FieldExpiryDateCheck},
		},
		composite: []domain.FieldName{
			domain.FieldDocumentNumber, domain.FieldDocumentNumberCheck,
			domain.FieldBirthDate, domain.FieldBirthDateCheck,
			domain.FieldExpiryDate, domain.FieldExpiryDateCheck,
			domain.FieldOptionalData,
		},
	},
	{
		format:    domain.FormatTD3,
		lineCount: 2,
		lineLen:   44,
		fields: []fieldSpec{
			{domain.FieldDocumentCode, kindAlnum, 0, 0, 2},
			{domain.FieldIssuingState, kindAlnum, 0, 2, 3},
			{domain.FieldSurname, kindNames, 0, 5, 39},
			{domain.FieldDocumentNumber, kindAlnum, 1, 0, 9},
			{domain.FieldDocumentNumberCheck, kindCheck, 1, 9, 1},
			{domain.FieldNationality, kindAlnum, 1, 10, 3},
			{domain.FieldBirthDate, kindDate, 1, 13, 6},
			{domain.FieldBirthDateCheck, kindCheck, 1, 19, 1},
			{domain.FieldSex, kindSex, 1, 20, 1},
			{domain.FieldExpiryDate, kindDate, 1, 21, 6},
			{domain.FieldExpiryDateCheck, kindCheck, 1, 27, 1},
			{domain.FieldPersonalNumber, kindAlnum, 1, 28, 14},
			{domain.FieldPersonalNumberCheck, kindCheck, 1, 42, 1},
			{domain.FieldComposite, kindCheck, 1, 43, 1},
		},
		checks: []checkPair{
			{domain.FieldDocumentNumber, domain.FieldDocumentNumberCheck},
			{domain.FieldBirthDate, domain.FieldBirthDateCheck},
			{domain.FieldExpiryDate, domain.FieldExpiryDateCheck},
			{domain.FieldPersonalNumber, domain.FieldPersonalNumberCheck},
		},
		composite: []domain.FieldName{
			domain.FieldDocumentNumber, domain.FieldDocumentNumberCheck,
			domain.FieldBirthDate, domain.FieldBirthDateCheck,
			domain.FieldExpiryDate, domain.FieldExpiryDateCheck,
			domain.FieldPersonalNumber, domain.FieldPersonalNumberCheck,
		},
	},
	{
		format:    domain.FormatMRVA,
		lineCount: 2,
		lineLen:   44,
		fields: []fieldSpec{
			{domain.FieldDocumentCode, kindAlnum, 0, 0, 2},
			{domain.FieldIssuingState, kindAlnum, 0, 2, 3},
			{domain.FieldSurname, kindNames, 0, 5, 39},
			{domain.FieldDocumentNumber, kindAlnum, 1, 0, 9},
			{domain.FieldDocumentNumberCheck, kindCheck, 1, 9, 1},
			{domain.FieldNationality, kindAlnum, 1, 10, 3},
			{domain.FieldBirthDate, kindDate, 1, 13, 6},
			{domain.FieldBirthDateCheck, kindCheck, 1, 19, 1},
			{domain.FieldSex, kindSex, 1, 20, 1},
			{domain.FieldExpiryDate, kindDate, 1, 21, 6},
			{domain.FieldExpiryDateCheck, kindCheck, 1, 27, 1},
			{domain.FieldOptionalData, kindAlnum, 1, 28, 16},
		},
		checks: []checkPair{
			{domain.FieldDocumentNumber, domain.FieldDocumentNumberCheck},
			{domain.FieldBirthDate, domain.FieldBirthDateCheck},
			{domain.FieldExpiryDate, domain.FieldExpiryDateCheck},
		},
	},
	{
		format:    domain.FormatMRVB,
		lineCount: 2,
		lineLen:   36,
		fields: []fieldSpec{
			{domain.FieldDocumentCode, kindAlnum, 0, 0, 2},
			{domain.FieldIssuingState, kindAlnum, 0, 2, 3},
			{domain.FieldSurname, kindNames, 0, 5, 31},
			{domain.FieldDocumentNumber, kindAlnum, 1, 0, 9},
			{domain.FieldDocumentNumberCheck, kindCheck, 1, 9, 1},
			{domain.FieldNationality, kindAlnum, 1, 10, 3},
			{domain.FieldBirthDate, kindDate, 1, 13, 6},
			{domain.FieldBirthDateCheck, kindCheck, 1, 19, 1},
			{domain.FieldSex, kindSex, 1, 20, 1},
			{domain.FieldExpiryDate, kindDate, 1, 21, 6},
			{domain.FieldExpiryDateCheck, kindCheck, 1, 27, 1},
			{domain.FieldOptionalData, kindAlnum, 1, 28, 8},
		},
		checks: []checkPair{
			{domain.FieldDocumentNumber, domain.FieldDocumentNumberCheck},
			{domain.FieldBirthDate, domain.FieldBirthDateCheck},
			{domain.FieldExpiryDate, domain.FieldExpiryDateCheck},
		},
	},
}

// specFor returns the formatSpec of a known variant.
func specFor(f domain.Format) *formatSpec {
	for i := range formats {
		if formats[i].format == f {
			return &formats[i]
		}
	}

	return nil
}

// isVisa reports whether the document-code prefix marks a machine-readable visa.
func isVisa(line string) bool {
	return len(line) > 0 && line[0] == 'V'
}
