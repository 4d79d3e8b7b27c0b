package repository

import (
	"context"

	"solar-pipeline/domain/model"
)

// IRawDocumentStore persists the document produced by one pipeline run under
// name, replacing whatever was stored there before.
type IRawDocumentStore interface {
	Save(ctx context.Context, name string, doc *model.RawDocument) error
}
