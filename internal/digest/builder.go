package digest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bbbfishhh/InfoFlow4Venture/internal/storage"
	"github.com/bbbfishhh/InfoFlow4Venture/internal/translate"
	"github.com/bbbfishhh/InfoFlow4Venture/internal/types"
)

// digestSize is how many recent complete documents go into one digest.
const digestSize = 10

// Builder assembles and delivers the periodic digest email.
type Builder struct {
	store      storage.Store
	translator translate.Translator
	mailer     *Mailer
	logger     *slog.Logger
	now        func() time.Time
}

// NewBuilder creates a digest builder.
func NewBuilder(store storage.Store, translator translate.Translator, mailer *Mailer, logger *slog.Logger) *Builder {
	return &Builder{
		store:      store,
		translator: translator,
		mailer:     mailer,
		logger:     logger.With("component", "digest"),
		now:        time.Now,
	}
}

// BuildAndSend selects the most recent complete documents, translates the
// batch, renders the digest and delivers it. Each step is a hard dependency
// on the previous one succeeding; delivery tolerates partial failure and
// the overall operation fails only when every recipient's send failed.
func (b *Builder) BuildAndSend(ctx context.Context, recipients []string) error {
	if len(recipients) == 0 {
		return types.ErrNoRecipients
	}

	docs, err := b.store.LatestComplete(ctx, digestSize)
	if err != nil {
		return fmt.Errorf("select digest documents: %w", err)
	}
	if len(docs) == 0 {
		b.logger.Warn("no complete documents to digest")
	}

	items := make([]types.DigestItem, len(docs))
	for i, doc := range docs {
		items[i] = types.DigestItemFromDocument(doc)
	}

	translated, err := b.translator.TranslateBatch(ctx, items)
	if err != nil {
		return fmt.Errorf("translate digest: %w", err)
	}

	html, err := Render(translated, b.now())
	if err != nil {
		return err
	}

	success, failed := b.mailer.Send(recipients, html)
	if success == 0 {
		return fmt.Errorf("all %d email sends failed", len(recipients))
	}
	if len(failed) > 0 {
		b.logger.Warn("partial delivery", "failed_recipients", failed)
	}
	b.logger.Info("digest delivered", "items", len(translated), "recipients", success)
	return nil
}
