package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	productCollectionName = "products"
	counterCollectionName = "counters"
	productCounterID      = "products"
)

// productDocument is the stored form of a Product. Prices are kept as Decimal128.
type productDocument struct {
	ID       int64                `bson:"_id"`
	Name     string               `bson:"name"`
	Price    primitive.Decimal128 `bson:"price"`
	Quantity int32                `bson:"quantity"`
}

type counterDocument struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// MongoStore implements ProductStore on a MongoDB database.
// Ids come from a counter document so they stay numeric and ascending.
type MongoStore struct {
	products *mongo.Collection
	counters *mongo.Collection
}

var _ ProductStore = (*MongoStore)(nil)

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		products: db.Collection(productCollectionName),
		counters: db.Collection(counterCollectionName),
	}
}

func (m *MongoStore) List(ctx context.Context) ([]Product, error) {
	cursor, err := m.products.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	products := make([]Product, 0, len(docs))
	for _, doc := range docs {
		p, err := doc.toProduct()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (m *MongoStore) GetByID(ctx context.Context, id int64) (*Product, error) {
	var doc productDocument
	err := m.products.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	p, err := doc.toProduct()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Insert adds a new product, taking the next counter value when product.ID is zero.
// Returns ErrProductExists if the ID is already taken.
func (m *MongoStore) Insert(ctx context.Context, product *Product) error {
	explicitID := product.ID != 0
	id := product.ID
	if !explicitID {
		var err error
		if id, err = m.nextID(ctx); err != nil {
			return err
		}
	}

	doc, err := newProductDocument(id, *product)
	if err != nil {
		return err
	}
	if _, err := m.products.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return perrors.ErrProductExists
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	if explicitID {
		// keep generated ids ahead of explicit ones
		_, err := m.counters.UpdateOne(ctx,
			bson.M{"_id": productCounterID},
			bson.M{"$max": bson.M{"seq": id}},
			options.Update().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("failed to sync product id counter: %w", err)
		}
	}
	product.ID = id
	return nil
}

// Update replaces the product stored under id.
// Returns ErrProductNotFound if no product exists with the given ID.
func (m *MongoStore) Update(ctx context.Context, id int64, product Product) error {
	price, err := primitive.ParseDecimal128(product.Price.String())
	if err != nil {
		return fmt.Errorf("invalid price %s: %w", product.Price, err)
	}
	result, err := m.products.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"name":     product.Name,
			"price":    price,
			"quantity": product.Quantity,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.MatchedCount == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

// Delete removes a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (m *MongoStore) Delete(ctx context.Context, id int64) error {
	result, err := m.products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if result.DeletedCount == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

func (m *MongoStore) nextID(ctx context.Context) (int64, error) {
	var counter counterDocument
	err := m.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": productCounterID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate product id: %w", err)
	}
	return counter.Seq, nil
}

func newProductDocument(id int64, p Product) (productDocument, error) {
	price, err := primitive.ParseDecimal128(p.Price.String())
	if err != nil {
		return productDocument{}, fmt.Errorf("invalid price %s: %w", p.Price, err)
	}
	return productDocument{ID: id, Name: p.Name, Price: price, Quantity: p.Quantity}, nil
}

func (d productDocument) toProduct() (Product, error) {
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return Product{}, fmt.Errorf("invalid price %q: %w", d.Price.String(), err)
	}
	return Product{ID: d.ID, Name: d.Name, Price: price, Quantity: d.Quantity}, nil
}
