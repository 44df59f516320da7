package mrz

import (
	"context"

	"mrzreader/pkg/domain"
)

// Reader runs the full recognition pipeline over one encoded document image:
// normalization, per-band text recovery, parsing, validation and assembly.
type Reader interface {
	Read(ctx context.Context, image []byte) (*domain.Document, error)
}
