package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	adCollectionName      = "advertisements"
	counterCollectionName = "counters"
	adCounterID           = "advertisements"
)

// AdRepository implements domain.AdRepository using MongoDB.
type AdRepository struct {
	collection *mongo.Collection
	counters   *mongo.Collection
	logger     *logger.Logger
}

// NewAdRepository creates the repository and ensures its indexes.
func NewAdRepository(db *mongo.Database, log *logger.Logger) (*AdRepository, error) {
	collection := db.Collection(adCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "seller_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "city_id", Value: 1}}},
		{Keys: bson.D{{Key: "category_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Error("Failed to create indexes for advertisements collection", zap.Error(err))
	} else {
		log.Info("Successfully ensured indexes for advertisements collection")
	}

	return &AdRepository{
		collection: collection,
		counters:   db.Collection(counterCollectionName),
		logger:     log.Named("AdRepository"),
	}, nil
}

func (r *AdRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": adCounterID},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("allocate advertisement id: %w", err)
	}
	return counter.Seq, nil
}

// Create inserts a new advertisement and assigns its id and timestamps.
func (r *AdRepository) Create(ctx context.Context, ad *domain.Advertisement) error {
	id, err := r.nextID(ctx)
	if err != nil {
		r.logger.Error("Failed to allocate advertisement id", zap.Error(err))
		return err
	}
	now := time.Now().UTC()
	ad.ID = id
	ad.CreatedAt = now
	ad.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, fromDomainAd(ad)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("advertisement %d: %w", id, domain.ErrConflict)
		}
		r.logger.Error("Failed to insert advertisement", zap.Error(err))
		return fmt.Errorf("db insert failed: %w", err)
	}
	r.logger.Info("Advertisement created in DB", zap.Int64("ad_id", id))
	return nil
}

// Update replaces the mutable fields of an advertisement.
func (r *AdRepository) Update(ctx context.Context, ad *domain.Advertisement) error {
	ad.UpdatedAt = time.Now().UTC()
	doc := fromDomainAd(ad)

	update := bson.M{"$set": bson.M{
		"title":       doc.Title,
		"description": doc.Description,
		"price":       doc.Price,
		"condition":   doc.Condition,
		"status":      doc.Status,
		"city_id":     doc.CityID,
		"category_id": doc.CategoryID,
		"images":      doc.Images,
		"updated_at":  doc.UpdatedAt,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": ad.ID}, update)
	if err != nil {
		r.logger.Error("Failed to update advertisement", zap.Int64("ad_id", ad.ID), zap.Error(err))
		return fmt.Errorf("db update failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AdRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("Failed to delete advertisement", zap.Int64("ad_id", id), zap.Error(err))
		return fmt.Errorf("db delete failed: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AdRepository) FindByID(ctx context.Context, id int64) (*domain.Advertisement, error) {
	var doc adDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to get advertisement", zap.Int64("ad_id", id), zap.Error(err))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	ad := doc.toDomainAd()
	return &ad, nil
}

// buildQuery translates the repository filter into a MongoDB query. A nil
// result means the filter can never match.
func buildQuery(f domain.AdFilter) bson.M {
	q := bson.M{}
	if f.Keyword != "" {
		pattern := regexp.QuoteMeta(f.Keyword)
		q["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	if f.CategoryIDs != nil {
		q["category_id"] = bson.M{"$in": f.CategoryIDs}
	}
	if f.CityIDs != nil {
		q["city_id"] = bson.M{"$in": f.CityIDs}
	}
	if f.SellerID > 0 {
		q["seller_id"] = f.SellerID
	}
	if f.Status != "" {
		q["status"] = string(f.Status)
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
			return nil
		}
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		q["price"] = price
	}
	return q
}

// Find returns one window of matching advertisements, newest first.
func (r *AdRepository) Find(ctx context.Context, f domain.AdFilter) ([]domain.Advertisement, int, error) {
	query := buildQuery(f)
	if query == nil {
		return []domain.Advertisement{}, 0, nil
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if f.Limit > 0 {
		findOptions.SetLimit(int64(f.Limit))
	}
	if f.Offset > 0 {
		findOptions.SetSkip(int64(f.Offset))
	}

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		r.logger.Error("Failed to find advertisements", zap.Error(err))
		return nil, 0, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []adDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("db cursor all failed: %w", err)
	}
	ads := make([]domain.Advertisement, 0, len(docs))
	for i := range docs {
		ads = append(ads, docs[i].toDomainAd())
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("db count failed: %w", err)
	}
	return ads, int(total), nil
}

func (r *AdRepository) CountBySeller(ctx context.Context, sellerID int64, status domain.AdStatus) (int, error) {
	q := bson.M{"seller_id": sellerID}
	if status != "" {
		q["status"] = string(status)
	}
	n, err := r.collection.CountDocuments(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("db count failed: %w", err)
	}
	return int(n), nil
}
