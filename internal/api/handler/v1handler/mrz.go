package v1handler

import (
	"errors"
	"io"
	"net/http"

	"mrzreader/pkg/domain"
	"mrzreader/pkg/serrors"
)

// imageFormField is the multipart form field carrying the document image.
const imageFormField = "image"

// ReadResponse is the JSON body of a successful read. OK distinguishes a
// decoded document from an unreadable one at a glance; the full field,
// validation and raw-line detail is always included for audit.
type ReadResponse struct {
	OK                 bool              `json:"ok"`
	Format             domain.Format     `json:"format,omitempty"`
	Trust              domain.TrustLevel `json:"trust"`
	Document           DocumentSummary   `json:"document"`
	Fields             []domain.Field    `json:"fields,omitempty"`
	Validation         domain.Validation `json:"validation"`
	Raw                []string          `json:"raw,omitempty"`
	Confidence         float64           `json:"confidence"`
	ConfidenceReported bool              `json:"confidenceReported"`
}

// DocumentSummary is the flattened holder-and-document view most consumers
// want, extracted from the positional field list.
type DocumentSummary struct {
	Type           string `json:"type,omitempty"`
	Number         string `json:"number,omitempty"`
	IssuingState   string `json:"issuingState,omitempty"`
	Nationality    string `json:"nationality,omitempty"`
	Surname        string `json:"surname,omitempty"`
	GivenNames     string `json:"givenNames,omitempty"`
	Sex            string `json:"sex,omitempty"`
	BirthDate      string `json:"birthDate,omitempty"`
	ExpiryDate     string `json:"expiryDate,omitempty"`
	PersonalNumber string `json:"personalNumber,omitempty"`
	OptionalData   string `json:"optionalData,omitempty"`
}

// ReadMRZ handles POST /v1/mrz: it accepts a multipart form with the document
// image under the "image" field, runs the recognition pipeline and renders the
// result. An unreadable document is still a 200; only an undecodable upload or
// a malformed request is an error.
func (h Handler) ReadMRZ(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.options.maxUploadBytes())
	file, _, err := r.FormFile(imageFormField)
	if err != nil {
		writeError(ctx, w, serrors.Wrap(serrors.ErrBadRequest, err, "could not read image form field"))

		return
	}
	defer func() { _ = file.Close() }()

	image, err := io.ReadAll(file)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(ctx, w, serrors.Wrap(serrors.ErrBadRequest, err, "image exceeds upload limit"))

			return
		}
		writeError(ctx, w, serrors.Wrap(serrors.ErrBadRequest, err, "could not read image"))

		return
	}

	doc, err := h.deps.Reader.Read(ctx, image)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	writeJSON(ctx, w, http.StatusOK, DomainDocumentToV1(doc))
}

// DomainDocumentToV1 maps the pipeline result onto the v1 response shape.
func DomainDocumentToV1(doc *domain.Document) ReadResponse {
	return ReadResponse{
		OK:     doc.Trust != domain.TrustUnreadable,
		Format: doc.Format,
		Trust:  doc.Trust,
		Document: DocumentSummary{
			Type:           doc.Value(domain.FieldDocumentCode),
			Number:         doc.Value(domain.FieldDocumentNumber),
			IssuingState:   doc.Value(domain.FieldIssuingState),
			Nationality:    doc.Value(domain.FieldNationality),
			Surname:        doc.Value(domain.FieldSurname),
			GivenNames:     doc.Value(domain.FieldGivenNames),
			Sex:            doc.Value(domain.FieldSex),
			BirthDate:      doc.Value(domain.FieldBirthDate),
			ExpiryDate:     doc.Value(domain.FieldExpiryDate),
			PersonalNumber: doc.Value(domain.FieldPersonalNumber),
			OptionalData:   doc.Value(domain.FieldOptionalData),
		},
		Fields:             doc.Fields,
		Validation:         doc.Validation,
		Raw:                doc.Raw,
		Confidence:         doc.Confidence,
		ConfidenceReported: doc.ConfidenceReported,
	}
}
