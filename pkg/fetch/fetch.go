// Package fetch supplies the view controller with neighborhood and detail
// documents.
//
// A [Fetcher] answers two requests: the presentation graph around a focus
// component and the detail document of one component. [Local] answers
// from an in-process model; [Client] asks a depview server over HTTP,
// retrying transient failures and caching responses.
//
// Unknown components are not errors. Neighborhood reports them with a
// false found result and Detail with Detail.Found == false. Errors are
// reserved for transport and decoding failures and carry the FETCH_ERROR
// code.
package fetch

import (
	"context"

	derrors "github.com/matzehuels/depview/pkg/errors"
	"github.com/matzehuels/depview/pkg/graph"
	"github.com/matzehuels/depview/pkg/layout"
)

// Request identifies a neighborhood.
type Request struct {
	Label      string
	Requires   int
	RequiredBy int
	// Layout is forwarded so servers may shape the document for it.
	Layout layout.Kind
}

// Validate checks the label and hop bounds.
func (r Request) Validate() error {
	if err := derrors.ValidateLabel(r.Label); err != nil {
		return err
	}
	if err := derrors.ValidateDepth("requires", r.Requires); err != nil {
		return err
	}
	return derrors.ValidateDepth("required_by", r.RequiredBy)
}

// Fetcher resolves neighborhood and detail requests.
type Fetcher interface {
	Neighborhood(ctx context.Context, req Request) (doc graph.Document, found bool, err error)
	Detail(ctx context.Context, label string) (graph.Detail, error)
}

func notFoundDetail(label string) graph.Detail {
	return graph.Detail{Label: label, Requires: []graph.Ref{}, RequiredBy: []graph.Ref{}}
}
