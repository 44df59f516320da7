package domain

// Format identifies the MRZ layout variant of a travel document as defined by
// ICAO Doc 9303. Variants differ in line count and line length.
type Format string

const (
	// FormatTD1 is the three-line, 30-column layout used on credit-card sized
	// identity documents.
	FormatTD1 Format = "TD1"
	// FormatTD2 is the two-line, 36-column layout used on larger identity documents.
	FormatTD2 Format = "TD2"
	// FormatTD3 is the two-line, 44-column layout used on passports.
	FormatTD3 Format = "TD3"
	// FormatMRVA is the two-line, 44-column machine-readable visa layout.
	FormatMRVA Format = "MRV-A"
	// FormatMRVB is the two-line, 36-column machine-readable visa layout.
	FormatMRVB Format = "MRV-B"
)

// TrustLevel classifies how much confidence a consumer should place in a
// decoded document.
type TrustLevel string

const (
	// TrustVerified means every check digit matched, no field was degraded and
	// no consistency flag was raised.
	TrustVerified TrustLevel = "Verified"
	// TrustPartiallyVerified means the document was decoded but at least one
	// check digit, field or consistency check is suspect.
	TrustPartiallyVerified TrustLevel = "PartiallyVerified"
	// TrustUnreadable means no MRZ could be located or its format could not be
	// determined.
	TrustUnreadable TrustLevel = "Unreadable"
)

// Sex is the decoded form of the single-character MRZ sex field.
type Sex string

const (
	SexMale        Sex = "Male"
	SexFemale      Sex = "Female"
	SexUnspecified Sex = "Unspecified"
)

// FieldName names a single MRZ field. Check-digit fields carry their own names
// so validation outcomes can reference them directly.
type FieldName string

const (
	FieldDocumentCode        FieldName = "documentCode"
	FieldIssuingState        FieldName = "issuingState"
	FieldSurname             FieldName = "surname"
	FieldGivenNames          FieldName = "givenNames"
	FieldDocumentNumber      FieldName = "documentNumber"
	FieldDocumentNumberCheck FieldName = "documentNumberCheck"
	FieldNationality         FieldName = "nationality"
	FieldBirthDate           FieldName = "birthDate"
	FieldBirthDateCheck      FieldName = "birthDateCheck"
	FieldSex                 FieldName = "sex"
	FieldExpiryDate          FieldName = "expiryDate"
	FieldExpiryDateCheck     FieldName = "expiryDateCheck"
	FieldPersonalNumber      FieldName = "personalNumber"
	FieldPersonalNumberCheck FieldName = "personalNumberCheck"
	FieldOptionalData        FieldName = "optionalData"
	FieldOptionalData2       FieldName = "optionalData2"
	FieldComposite           FieldName = "composite"
)

// Field is a single decoded MRZ field. The raw source substring and its column
// span are retained for audit; Value is the decoded form (dates as ISO 8601,
// names with fillers collapsed, numbers filler-stripped). Fields are immutable
// once produced by the parser.
type Field struct {
	// Name identifies the field.
	Name FieldName `json:"name"`
	// Value is the decoded, typed value rendered as a string.
	Value string `json:"value"`
	// Raw is the exact substring sliced from the recognized MRZ line.
	Raw string `json:"raw"`
	// Line is the zero-based MRZ line index the field was sliced from.
	Line int `json:"line"`
	// Start is the zero-based column at which the field begins.
	Start int `json:"start"`
	// Length is the fixed column width of the field.
	Length int `json:"length"`
	// Confidence is the mean recognizer confidence over the field's columns, in [0,1].
	Confidence float64 `json:"confidence"`
	// Degraded marks a field whose raw slice contained a character outside the
	// permitted OCR-B set, or whose decoded form was malformed. The value is
	// still reported; the caller decides trust policy.
	Degraded bool `json:"degraded,omitempty"`
}

// CheckDigit is the outcome of recomputing one ICAO check digit.
type CheckDigit struct {
	// Field names the checked value field (or "composite").
	Field FieldName `json:"field"`
	// Recomputed is the digit derived from the weighted sum, empty when the
	// checked characters could not be valued.
	Recomputed string `json:"recomputed"`
	// Recognized is the digit the recognizer read from the document.
	Recognized string `json:"recognized"`
	// Matches reports whether the two agree.
	Matches bool `json:"matches"`
}

// Validation aggregates all per-field check-digit outcomes plus cross-zone
// redundancy checks. It never mutates field values.
type Validation struct {
	// Checks holds one outcome per checked field plus the composite, when the
	// format defines one.
	Checks []CheckDigit `json:"checks"`
	// Consistency lists raised cross-zone consistency flags. These are distinct
	// from checksum mismatches: they catch recognizer substitutions that still
	// satisfy the check-digit arithmetic.
	Consistency []string `json:"consistency,omitempty"`
}

// Passed reports whether every check digit matched and no consistency flag was
// raised.
func (v Validation) Passed() bool {
	for _, c := range v.Checks {
		if !c.Matches {
			return false
		}
	}

	return len(v.Consistency) == 0
}

// Document is the terminal, immutable result of one MRZ read. The core never
// retains it across requests; ownership passes to the service boundary after
// assembly.
type Document struct {
	// Format is the detected MRZ layout variant, empty when unreadable.
	Format Format `json:"format,omitempty"`
	// Fields holds the decoded fields in their document order.
	Fields []Field `json:"fields,omitempty"`
	// Validation carries check-digit and consistency outcomes.
	Validation Validation `json:"validation"`
	// Trust is the overall trust classification.
	Trust TrustLevel `json:"trust"`
	// Raw holds the recognized MRZ lines exactly as recovered, for audit.
	Raw []string `json:"raw,omitempty"`
	// Confidence is the mean recognizer confidence over all fields, in [0,1].
	Confidence float64 `json:"confidence"`
	// ConfidenceReported is false when the recognizer could not supply
	// confidences and a uniform default was assigned instead.
	ConfidenceReported bool `json:"confidenceReported"`
}

// Field returns the named field and whether it is present.
func (d *Document) Field(name FieldName) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}

	return Field{}, false
}

// Value returns the decoded value of the named field, or the empty string when
// the field is absent.
func (d *Document) Value(name FieldName) string {
	f, _ := d.Field(name)

	return f.Value
}
