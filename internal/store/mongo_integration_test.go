package store

import (
	"context"
	"log/slog"
	"os"
	"testing"

	perrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStoreSuite runs the MongoStore against a real MongoDB server.
type MongoStoreSuite struct {
	suite.Suite
	container *mongodb.MongoDBContainer
	client    *mongo.Client
	db        *mongo.Database
	store     ProductStore
	logger    *slog.Logger
	ctx       context.Context
}

func (s *MongoStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var err error
	s.container, err = mongodb.Run(s.ctx, "mongo:7.0")
	require.NoError(s.T(), err, "Failed to run MongoDB container")

	uri, err := s.container.ConnectionString(s.ctx)
	require.NoError(s.T(), err, "Failed to get connection string from container")

	s.client, err = mongo.Connect(s.ctx, options.Client().ApplyURI(uri))
	require.NoError(s.T(), err, "Failed to connect to MongoDB")

	s.db = s.client.Database("catalog")
	s.store = NewMongoStore(s.db)
}

func (s *MongoStoreSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Disconnect(s.ctx)
	}
	if s.container != nil {
		if err := s.container.Terminate(s.ctx); err != nil {
			s.logger.Warn("failed to terminate MongoDB container", "error", err)
		}
	}
}

// SetupTest starts every test on an empty database.
func (s *MongoStoreSuite) SetupTest() {
	require.NoError(s.T(), s.db.Drop(s.ctx), "Failed to drop database")
}

func TestMongoStoreIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(MongoStoreSuite))
}

func (s *MongoStoreSuite) insert(name, price string, qty int32) Product {
	s.T().Helper()
	p := Product{Name: name, Price: decimal.RequireFromString(price), Quantity: qty}
	require.NoError(s.T(), s.store.Insert(s.ctx, &p), "insert helper failed")
	return p
}

func (s *MongoStoreSuite) TestInsertAndGetByID() {
	created := s.insert("Apple Iphone 15 Pro", "599.00", 100)
	require.Equal(s.T(), int64(1), created.ID, "first generated id")

	fetched, err := s.store.GetByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), created.Name, fetched.Name)
	assert.True(s.T(), created.Price.Equal(fetched.Price), "price %s != %s", created.Price, fetched.Price)
	assert.Equal(s.T(), created.Quantity, fetched.Quantity)
}

func (s *MongoStoreSuite) TestGetByID_NotFound() {
	_, err := s.store.GetByID(s.ctx, 9999)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *MongoStoreSuite) TestInsertExplicitID() {
	p := Product{ID: 7, Name: "Seven", Price: decimal.RequireFromString("0.5"), Quantity: 1}
	require.NoError(s.T(), s.store.Insert(s.ctx, &p))

	dup := Product{ID: 7, Name: "Dup", Price: decimal.Zero}
	require.ErrorIs(s.T(), s.store.Insert(s.ctx, &dup), perrors.ErrProductExists)

	next := s.insert("Next", "1", 1)
	assert.Equal(s.T(), int64(8), next.ID)
}

func (s *MongoStoreSuite) TestList() {
	list, err := s.store.List(s.ctx)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), list)

	s.insert("Product A", "1.00", 10)
	s.insert("Product B", "2.00", 20)

	list, err = s.store.List(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 2)
	assert.Equal(s.T(), "Product A", list[0].Name)
	assert.Equal(s.T(), "Product B", list[1].Name)
}

func (s *MongoStoreSuite) TestUpdateAndDelete() {
	created := s.insert("Samsung Galaxy S23", "699.00", 50)

	err := s.store.Update(s.ctx, created.ID, Product{Name: "Samsung Galaxy S23 Ultra", Price: decimal.RequireFromString("799.99"), Quantity: 30})
	require.NoError(s.T(), err)

	fetched, err := s.store.GetByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Samsung Galaxy S23 Ultra", fetched.Name)
	assert.Equal(s.T(), "799.99", fetched.Price.String())
	assert.Equal(s.T(), int32(30), fetched.Quantity)

	require.ErrorIs(s.T(), s.store.Update(s.ctx, 9999, Product{Name: "Missing"}), perrors.ErrProductNotFound)

	require.NoError(s.T(), s.store.Delete(s.ctx, created.ID))
	require.ErrorIs(s.T(), s.store.Delete(s.ctx, created.ID), perrors.ErrProductNotFound)
}
