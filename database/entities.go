package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/citywill/smart-graph/helper"
	"github.com/citywill/smart-graph/model"
	loadSql "github.com/citywill/smart-graph/sql"
)

// EntitiesDBHandlerFunctions defines the interface for Entities database operations.
type EntitiesDBHandlerFunctions interface {
	InsertEntity(entity *model.Entity) error
	DeleteEntity(rid uuid.UUID) error
	SelectEntity(rid uuid.UUID) (*model.Entity, error)
	SelectEntitiesByType(entityType model.EntityType, limit int) ([]*model.Entity, error)
	InsertMention(chunkRID uuid.UUID, entityRID uuid.UUID) error
	SelectEntitiesForChunk(chunkRID uuid.UUID) ([]*model.Entity, error)
	SelectChunksMentioningEntity(entityRID uuid.UUID) ([]*model.Chunk, error)
	MergeDuplicateEntities() (int, error)
}

// EntitiesDBHandler handles entity-related database operations,
// including the mentions join table linking chunks to entities.
type EntitiesDBHandler struct {
	db *helper.Database
}

// NewEntitiesDBHandler creates a new entities database handler.
// It loads the entity-related SQL functions and creates the entities and
// mentions tables.
// If force is true, it will reload the SQL functions even if they already exist.
func NewEntitiesDBHandler(db *helper.Database, embeddingDim int, force bool) (*EntitiesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	entitiesDbHandler := &EntitiesDBHandler{
		db: db,
	}

	err := loadSql.LoadEntitiesSql(entitiesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load entities sql", err)
	}

	err = entitiesDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized EntitiesDBHandler")

	return entitiesDbHandler, nil
}

// CreateTable creates the 'entities' and 'mentions' tables if they do not exist yet.
func (h *EntitiesDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_entities($1);`, embeddingDim)
	if err != nil {
		return helper.NewError("initialize entities tables", err)
	}

	h.db.Logger.Info("Checked/created tables entities, mentions")

	return nil
}

// InsertEntity inserts a new entity. If an entity with the same name and
// type already exists, the existing row is returned (its embedding updated
// when the new one is non-null).
func (h *EntitiesDBHandler) InsertEntity(entity *model.Entity) error {
	var embedding interface{}
	if len(entity.Embedding) > 0 {
		embedding = pq.Array(entity.Embedding)
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_entity($1, $2, $3, $4)`,
		entity.Name,
		entity.Type,
		embedding,
		entity.Metadata,
	)

	err := row.Scan(
		&entity.ID,
		&entity.RID,
		&entity.Name,
		&entity.Type,
		pq.Array(&entity.Embedding),
		&entity.Metadata,
		&entity.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// DeleteEntity deletes an entity by RID. Mentions referencing it are
// removed by cascade.
func (h *EntitiesDBHandler) DeleteEntity(rid uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_entity($1)`,
		rid,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// SelectEntity retrieves an entity by RID
func (h *EntitiesDBHandler) SelectEntity(rid uuid.UUID) (*model.Entity, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_entity($1)`,
		rid,
	)

	entity := &model.Entity{}
	err := row.Scan(
		&entity.ID,
		&entity.RID,
		&entity.Name,
		&entity.Type,
		pq.Array(&entity.Embedding),
		&entity.Metadata,
		&entity.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return entity, nil
}

// SelectEntitiesByType retrieves entities of a given type, newest first.
func (h *EntitiesDBHandler) SelectEntitiesByType(entityType model.EntityType, limit int) ([]*model.Entity, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_entities_by_type($1, $2)`,
		entityType,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanEntities(rows)
}

// InsertMention records that a chunk mentions an entity. Inserting the same
// mention twice is a no-op.
func (h *EntitiesDBHandler) InsertMention(chunkRID uuid.UUID, entityRID uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT insert_mention($1, $2)`,
		chunkRID,
		entityRID,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// SelectEntitiesForChunk retrieves all entities mentioned by a chunk,
// ordered by entity RID.
func (h *EntitiesDBHandler) SelectEntitiesForChunk(chunkRID uuid.UUID) ([]*model.Entity, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_entities_for_chunk($1)`,
		chunkRID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanEntities(rows)
}

// SelectChunksMentioningEntity retrieves all chunks that mention an entity.
func (h *EntitiesDBHandler) SelectChunksMentioningEntity(entityRID uuid.UUID) ([]*model.Chunk, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_chunks_mentioning_entity($1)`,
		entityRID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var chunks []*model.Chunk
	for rows.Next() {
		chunk := &model.Chunk{}
		err := rows.Scan(
			&chunk.ID,
			&chunk.RID,
			&chunk.DocumentID,
			&chunk.DocumentRID,
			&chunk.Position,
			&chunk.Content,
			pq.Array(&chunk.Embedding),
			&chunk.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		chunks = append(chunks, chunk)
	}

	return chunks, rows.Err()
}

// MergeDuplicateEntities collapses entities whose normalized name (lowercase,
// trimmed) and type match into a single row, rewiring mentions to the
// surviving entity. Returns the number of entities removed.
func (h *EntitiesDBHandler) MergeDuplicateEntities() (int, error) {
	row := h.db.Instance.QueryRow(`SELECT merge_duplicate_entities()`)

	var merged int
	err := row.Scan(&merged)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}

	return merged, nil
}

func scanEntities(rows *sql.Rows) ([]*model.Entity, error) {
	var entities []*model.Entity
	for rows.Next() {
		entity := &model.Entity{}
		err := rows.Scan(
			&entity.ID,
			&entity.RID,
			&entity.Name,
			&entity.Type,
			pq.Array(&entity.Embedding),
			&entity.Metadata,
			&entity.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		entities = append(entities, entity)
	}
	return entities, rows.Err()
}
