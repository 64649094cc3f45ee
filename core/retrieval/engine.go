package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/citywill/smart-graph/helper"
	"github.com/citywill/smart-graph/model"
)

// Result is the outcome of one retrieval run: the assembled evidence plus
// the number of candidate chunks skipped for dimension mismatches.
type Result struct {
	Evidence []*model.Evidence
	Skipped  int
}

// Engine runs the full retrieval pipeline: embed the query, rank chunks by
// similarity, expand the top hits through the graph and assemble the
// deduplicated evidence list.
type Engine struct {
	store    Store
	embedder Embedder
	ranker   *Ranker
	expander *Expander
	config   *model.QueryConfig
	logger   *slog.Logger
}

// NewEngine creates a retrieval engine. The config is validated once here;
// Retrieve calls trust it afterwards.
func NewEngine(store Store, embedder Embedder, config *model.QueryConfig, logger *slog.Logger) (*Engine, error) {
	if config == nil {
		config = model.DefaultQueryConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, helper.NewError("validate query config", err)
	}
	if store == nil {
		return nil, helper.NewError("engine validation", fmt.Errorf("store is nil"))
	}
	if embedder == nil {
		return nil, helper.NewError("engine validation", fmt.Errorf("embedder is nil"))
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		store:    store,
		embedder: embedder,
		ranker:   NewRanker(config.EmbeddingDimension),
		expander: NewExpander(store, config.DecayFactor, config.MaxParallelFetches),
		config:   config,
		logger:   logger,
	}, nil
}

// Retrieve answers a query against the graph. The query is embedded, all
// embedded chunks are ranked against it, the top hits are expanded to their
// parent documents and mentioned entities, and the combined evidence is
// deduplicated and ordered by score.
func (e *Engine) Retrieve(ctx context.Context, query string, limit int) (*Result, error) {
	if limit <= 0 {
		return nil, helper.NewError("retrieve", fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidArgument, limit))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.config.StoreTimeout)
	defer cancel()

	queryEmbedding, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, helper.NewError("embed query", fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err))
	}

	candidates, err := withRetry(ctx, e.config.RetryBackoff, func() ([]*EmbeddedNode, error) {
		return e.store.EmbeddedChunks(ctx)
	})
	if err != nil {
		return nil, helper.NewError("load embedded chunks", err)
	}

	hits, skipped, err := e.ranker.RankBySimilarity(queryEmbedding, candidates, limit)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		e.logger.Warn("Skipped candidates with mismatched embedding dimension", "skipped", skipped)
	}

	evidence, err := e.resolveChunks(ctx, hits)
	if err != nil {
		return nil, err
	}

	expanded, err := withRetry(ctx, e.config.RetryBackoff, func() ([]*model.Evidence, error) {
		return e.expander.Expand(ctx, hits)
	})
	if err != nil {
		return nil, err
	}
	evidence = append(evidence, expanded...)

	evidence = Deduplicate(evidence)
	sortEvidence(evidence)

	return &Result{Evidence: evidence, Skipped: skipped}, nil
}

// resolveChunks loads the full chunk rows behind the ranked hits. A hit
// whose chunk vanished between ranking and resolution is dropped.
func (e *Engine) resolveChunks(ctx context.Context, hits []*RankedHit) ([]*model.Evidence, error) {
	evidence := make([]*model.Evidence, 0, len(hits))
	for _, hit := range hits {
		chunk, err := withRetry(ctx, e.config.RetryBackoff, func() (*model.Chunk, error) {
			return e.store.ChunkByID(ctx, hit.RID)
		})
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, helper.NewError("resolve chunk", err)
		}
		evidence = append(evidence, &model.Evidence{
			Kind:            model.NodeKindChunk,
			RID:             chunk.RID,
			Content:         chunk.Content,
			Score:           hit.Score,
			RetrievalMethod: model.RetrievalMethodVector,
		})
	}
	return evidence, nil
}

// sortEvidence orders by score descending; on equal scores chunks come
// before documents and entities, then RID ascending keeps the order stable.
func sortEvidence(evidence []*model.Evidence) {
	sort.Slice(evidence, func(i, j int) bool {
		if evidence[i].Score != evidence[j].Score {
			return evidence[i].Score > evidence[j].Score
		}
		iChunk := evidence[i].Kind == model.NodeKindChunk
		jChunk := evidence[j].Kind == model.NodeKindChunk
		if iChunk != jChunk {
			return iChunk
		}
		return evidence[i].RID.String() < evidence[j].RID.String()
	})
}

// withRetry runs fn and, if it fails with ErrStoreUnavailable, retries it
// exactly once after the backoff. Any other error is returned as is. A done
// context short-circuits both attempts.
func withRetry[T any](ctx context.Context, backoff time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	result, err := fn()
	if err == nil || !errors.Is(err, ErrStoreUnavailable) {
		return result, err
	}

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-time.After(backoff):
	}

	return fn()
}
