package retrieval

import (
	"context"
	"errors"
	"sync"

	"github.com/citywill/smart-graph/model"
	"github.com/google/uuid"
)

// fakeStore is an in-memory Store for engine and expander tests. Errors
// queued in embeddedErrs are returned (and consumed) one per call, so a
// single queued ErrStoreUnavailable simulates a transient outage.
type fakeStore struct {
	mu           sync.Mutex
	embedded     []*EmbeddedNode
	chunks       map[uuid.UUID]*model.Chunk
	parents      map[uuid.UUID]*model.Document
	mentions     map[uuid.UUID][]*model.Entity
	embeddedErrs []error
	calls        int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		chunks:   make(map[uuid.UUID]*model.Chunk),
		parents:  make(map[uuid.UUID]*model.Document),
		mentions: make(map[uuid.UUID][]*model.Entity),
	}
}

func (f *fakeStore) addChunk(chunk *model.Chunk, parent *model.Document, entities ...*model.Entity) {
	f.embedded = append(f.embedded, &EmbeddedNode{RID: chunk.RID, Embedding: chunk.Embedding})
	f.chunks[chunk.RID] = chunk
	if parent != nil {
		f.parents[chunk.RID] = parent
	}
	f.mentions[chunk.RID] = entities
}

func (f *fakeStore) EmbeddedChunks(ctx context.Context) ([]*EmbeddedNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.embeddedErrs) > 0 {
		err := f.embeddedErrs[0]
		f.embeddedErrs = f.embeddedErrs[1:]
		return nil, err
	}
	return f.embedded, nil
}

func (f *fakeStore) ChunkByID(ctx context.Context, rid uuid.UUID) (*model.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	chunk, ok := f.chunks[rid]
	if !ok {
		return nil, ErrNotFound
	}
	return chunk, nil
}

func (f *fakeStore) ParentDocument(ctx context.Context, chunkRID uuid.UUID) (*model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.parents[chunkRID]
	if !ok {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (f *fakeStore) MentionedEntities(ctx context.Context, chunkRID uuid.UUID) ([]*model.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mentions[chunkRID], nil
}

// fakeEmbedder maps known texts to fixed vectors.
type fakeEmbedder struct {
	dimensions int
	vectors    map[string][]float32
	err        error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	vector, ok := f.vectors[text]
	if !ok {
		return nil, errors.New("no vector for text")
	}
	return vector, nil
}

func (f *fakeEmbedder) Dimensions() int {
	return f.dimensions
}
