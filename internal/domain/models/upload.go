// internal/domain/models/upload.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Upload is an issued upload target. StorageID is the opaque token
// handed to clients; messages store it as their attachment reference.
// The bytes themselves live outside Mongo, keyed by StorageID.
type Upload struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StorageID   string             `bson:"storage_id" json:"storage_id"`
	ContentType string             `bson:"content_type,omitempty" json:"content_type,omitempty"`
	Size        int64              `bson:"size,omitempty" json:"size,omitempty"`
	Uploaded    bool               `bson:"uploaded" json:"uploaded"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
