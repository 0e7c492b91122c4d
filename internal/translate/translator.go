package translate

import (
	"context"

	"github.com/bbbfishhh/InfoFlow4Venture/internal/types"
)

// Translator converts a digest batch into the delivery language.
type Translator interface {
	// TranslateBatch translates the batch as a whole. Implementations are
	// all-or-nothing: on failure the caller gets an error, never a
	// partially translated batch.
	TranslateBatch(ctx context.Context, items []types.DigestItem) ([]types.DigestItem, error)
}

// NopTranslator passes the batch through untouched (translate.mode "none").
type NopTranslator struct{}

func (NopTranslator) TranslateBatch(ctx context.Context, items []types.DigestItem) ([]types.DigestItem, error) {
	return items, nil
}
