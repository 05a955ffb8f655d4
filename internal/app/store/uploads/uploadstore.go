// internal/app/store/uploads/uploadstore.go
package uploadstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/harborteam/harbor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("upload not found")
	// ErrNotUploaded is returned when a storage id is referenced before
	// any bytes were written to it.
	ErrNotUploaded = errors.New("upload has no content")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("uploads")}
}

// Issue reserves a fresh storage id. The id goes into the signed upload
// URL the client PUTs bytes to; until then the record is a placeholder.
func (s *Store) Issue(ctx context.Context) (models.Upload, error) {
	u := models.Upload{
		ID:        primitive.NewObjectID(),
		StorageID: uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		return models.Upload{}, err
	}
	return u, nil
}

// GetByStorageID retrieves an upload record.
func (s *Store) GetByStorageID(ctx context.Context, storageID string) (models.Upload, error) {
	var u models.Upload
	err := s.c.FindOne(ctx, bson.M{"storage_id": storageID}).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Upload{}, ErrNotFound
		}
		return models.Upload{}, err
	}
	return u, nil
}

// MarkUploaded records that bytes landed for a storage id.
func (s *Store) MarkUploaded(ctx context.Context, storageID, contentType string, size int64) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"storage_id": storageID},
		bson.M{"$set": bson.M{
			"uploaded":     true,
			"content_type": contentType,
			"size":         size,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an upload record. The caller removes the bytes.
func (s *Store) Delete(ctx context.Context, storageID string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"storage_id": storageID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "storage_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_upload_storage_id"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
