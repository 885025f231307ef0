package fetch

import (
	"context"

	derrors "github.com/matzehuels/depview/pkg/errors"
	"github.com/matzehuels/depview/pkg/graph"
	"github.com/matzehuels/depview/pkg/model"
)

// Local answers requests from a model in the same process.
type Local struct {
	model *model.Model
}

func NewLocal(m *model.Model) *Local { return &Local{model: m} }

func (l *Local) Neighborhood(ctx context.Context, req Request) (graph.Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return graph.Document{}, false, derrors.Fetch(err, "neighborhood %q", req.Label)
	}
	if err := req.Validate(); err != nil {
		return graph.Document{}, false, err
	}
	doc, ok := graph.Present(l.model, req.Label, req.Requires, req.RequiredBy)
	return doc, ok, nil
}

func (l *Local) Detail(ctx context.Context, label string) (graph.Detail, error) {
	if err := ctx.Err(); err != nil {
		return graph.Detail{}, derrors.Fetch(err, "detail %q", label)
	}
	return graph.Describe(l.model, label), nil
}

var _ Fetcher = (*Local)(nil)
