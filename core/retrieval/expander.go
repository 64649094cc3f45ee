package retrieval

import (
	"context"
	"errors"
	"sync"

	"github.com/citywill/smart-graph/helper"
	"github.com/citywill/smart-graph/model"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Expander widens a set of ranked chunks into their one-hop graph
// neighborhood: the parent document of each chunk and the entities the
// chunk mentions. Expanded nodes inherit the chunk's score damped by the
// decay factor.
type Expander struct {
	store       Store
	decayFactor float64
	maxParallel int
}

// NewExpander creates an expander over the given store.
func NewExpander(store Store, decayFactor float64, maxParallel int) *Expander {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &Expander{
		store:       store,
		decayFactor: decayFactor,
		maxParallel: maxParallel,
	}
}

// Expand fetches the parent document and mentioned entities for every hit,
// with at most maxParallel store reads in flight. Hits whose neighbors no
// longer exist are skipped; any other store error aborts the expansion.
func (e *Expander) Expand(ctx context.Context, hits []*RankedHit) ([]*model.Evidence, error) {
	var mu sync.Mutex
	var expanded []*model.Evidence

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.maxParallel)

	for _, hit := range hits {
		hit := hit
		group.Go(func() error {
			evidence, err := e.expandHit(groupCtx, hit)
			if err != nil {
				return err
			}
			mu.Lock()
			expanded = append(expanded, evidence...)
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, helper.NewError("expand hits", err)
	}

	return expanded, nil
}

func (e *Expander) expandHit(ctx context.Context, hit *RankedHit) ([]*model.Evidence, error) {
	decayedScore := hit.Score * e.decayFactor

	var evidence []*model.Evidence

	document, err := e.store.ParentDocument(ctx, hit.RID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if document != nil {
		content := document.Summary
		if content == "" {
			content = document.Title
		}
		evidence = append(evidence, &model.Evidence{
			Kind:            model.NodeKindDocument,
			RID:             document.RID,
			Content:         content,
			Score:           decayedScore,
			RetrievalMethod: model.RetrievalMethodStructural,
		})
	}

	entities, err := e.store.MentionedEntities(ctx, hit.RID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	for _, entity := range entities {
		evidence = append(evidence, &model.Evidence{
			Kind:            model.NodeKindEntity,
			RID:             entity.RID,
			Content:         entity.Name,
			Score:           decayedScore,
			RetrievalMethod: model.RetrievalMethodStructural,
		})
	}

	return evidence, nil
}

// Deduplicate collapses evidence pointing at the same node, keeping the
// highest score seen for it. Order of the survivors follows first
// occurrence in the input.
func Deduplicate(evidence []*model.Evidence) []*model.Evidence {
	best := make(map[uuid.UUID]*model.Evidence, len(evidence))
	order := make([]uuid.UUID, 0, len(evidence))

	for _, item := range evidence {
		existing, seen := best[item.RID]
		if !seen {
			best[item.RID] = item
			order = append(order, item.RID)
			continue
		}
		if item.Score > existing.Score {
			best[item.RID] = item
		}
	}

	deduped := make([]*model.Evidence, 0, len(order))
	for _, key := range order {
		deduped = append(deduped, best[key])
	}

	return deduped
}
