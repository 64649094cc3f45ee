package database

import (
	"context"
	"log"
	"testing"

	"github.com/citywill/smart-graph/helper"
	loadSql "github.com/citywill/smart-graph/sql"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

var dbPort string

func TestMain(m *testing.M) {
	var teardown func(ctx context.Context, opts ...testcontainers.TerminateOption) error
	var err error
	teardown, dbPort, err = helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("error starting postgres container: %v", err)
	}

	m.Run()

	if teardown != nil && teardown(context.Background()) != nil {
		log.Fatalf("error tearing down postgres container: %v", err)
	}
}

func initDB(t *testing.T) *helper.Database {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err, "failed to create database configuration")
	database := helper.NewTestDatabase(dbConfig)

	err = loadSql.Init(database.Instance)
	require.NoError(t, err)

	return database
}

// initHandlers sets up all three handlers on a fresh schema.
func initHandlers(t *testing.T) (*helper.Database, *DocumentsDBHandler, *ChunksDBHandler, *EntitiesDBHandler) {
	database := initDB(t)

	documentsDbHandler, err := NewDocumentsDBHandler(database, 384, true)
	require.NoError(t, err, "Expected NewDocumentsDBHandler to not return an error")

	chunksDbHandler, err := NewChunksDBHandler(database, 384, true)
	require.NoError(t, err, "Expected NewChunksDBHandler to not return an error")

	entitiesDbHandler, err := NewEntitiesDBHandler(database, 384, true)
	require.NoError(t, err, "Expected NewEntitiesDBHandler to not return an error")

	return database, documentsDbHandler, chunksDbHandler, entitiesDbHandler
}
