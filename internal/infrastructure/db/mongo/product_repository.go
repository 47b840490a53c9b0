package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sweetshop/inventory-api/internal/core/domain"
)

const (
	productsCollection = "sweets"
	decrementRetries   = 1
)

type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(productsCollection)}
}

type mongoProduct struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Category    string             `bson:"category"`
	Price       float64            `bson:"price"`
	Quantity    int                `bson:"quantity"`
	Description string             `bson:"description"`
	ImageURL    string             `bson:"imageUrl"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (mp *mongoProduct) toDomain() *domain.Product {
	return &domain.Product{
		ID:          mp.ID.Hex(),
		Name:        mp.Name,
		Category:    domain.Category(mp.Category),
		Price:       mp.Price,
		Quantity:    mp.Quantity,
		Description: mp.Description,
		ImageURL:    mp.ImageURL,
		CreatedAt:   mp.CreatedAt.UTC(),
		UpdatedAt:   mp.UpdatedAt.UTC(),
	}
}

// Create inserts a new product document.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	doc := mongoProduct{
		ID:          primitive.NewObjectID(),
		Name:        p.Name,
		Category:    string(p.Category),
		Price:       p.Price,
		Quantity:    p.Quantity,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var mp mongoProduct
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return mp.toDomain(), nil
}

// List returns every product matching the filter in the requested order.
func (r *ProductRepository) List(ctx context.Context, f domain.ProductFilter) ([]*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, buildListFilter(f), options.Find().SetSort(buildSort(f)))
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoProduct
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	items := make([]*domain.Product, 0, len(docs))
	for i := range docs {
		items = append(items, docs[i].toDomain())
	}
	return items, nil
}

// Update applies a partial $set and returns the document after the write.
func (r *ProductRepository) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	return r.findAndUpdate(ctx, id, bson.M{}, bson.M{"$set": buildPatchSet(patch, time.Now().UTC())})
}

// Delete removes the product and returns the removed document.
func (r *ProductRepository) Delete(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var mp mongoProduct
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("delete product: %w", err)
	}
	return mp.toDomain(), nil
}

// DecrementStock subtracts n only while quantity >= n, so two concurrent
// purchases can never drive stock below zero. When the guard rejects the
// write the product is re-read to tell a missing product from short stock.
// If the re-read shows enough stock, a restock landed in between and the
// write is retried once; the reported quantity comes from the last read.
func (r *ProductRepository) DecrementStock(ctx context.Context, id string, n int) (*domain.Product, error) {
	guard := bson.M{"quantity": bson.M{"$gte": n}}
	for attempt := 0; ; attempt++ {
		update := bson.M{
			"$inc": bson.M{"quantity": -n},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		}
		p, err := r.findAndUpdate(ctx, id, guard, update)
		if !errors.Is(err, domain.ErrProductNotFound) {
			return p, err
		}

		current, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.Quantity < n || attempt >= decrementRetries {
			return nil, domain.NewInsufficientStockError(current.Quantity)
		}
	}
}

func (r *ProductRepository) IncrementStock(ctx context.Context, id string, n int) (*domain.Product, error) {
	update := bson.M{
		"$inc": bson.M{"quantity": n},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.findAndUpdate(ctx, id, bson.M{}, update)
}

// findAndUpdate runs update against the product with id when it also
// matches guard, returning ErrProductNotFound when nothing matched.
func (r *ProductRepository) findAndUpdate(ctx context.Context, id string, guard bson.M, update bson.M) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"_id": oid}
	for k, v := range guard {
		filter[k] = v
	}

	var mp mongoProduct
	err = r.col.FindOneAndUpdate(ctx, filter, update, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&mp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return mp.toDomain(), nil
}

// EnsureIndexes creates the indexes used by listing filters and sorts.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
