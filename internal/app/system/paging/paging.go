// Package paging implements keyset pagination for message timelines.
//
// Message lists are newest-first and "load more" walks backwards in time.
// The continuation cursor encodes the (created_at, _id) position of the
// last row of the previous page, so newly inserted messages can never
// shift rows on an already-fetched page: the cursor anchors a position,
// not an offset.
package paging

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultPageSize is used when the client does not ask for a size.
const DefaultPageSize = 30

// MaxPageSize caps client-requested page sizes.
const MaxPageSize = 100

// Cursor is a decoded pagination position.
type Cursor struct {
	CreatedAt time.Time
	ID        primitive.ObjectID
}

// Encode serializes a position into an opaque continuation token.
func Encode(createdAt time.Time, id primitive.ObjectID) string {
	raw := strconv.FormatInt(createdAt.UnixNano(), 10) + ":" + id.Hex()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// Decode parses a continuation token. Returns ok=false for anything that
// is not a token this package produced.
func Decode(token string) (Cursor, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, false
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 {
		return Cursor{}, false
	}
	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Cursor{}, false
	}
	id, err := primitive.ObjectIDFromHex(parts[1])
	if err != nil {
		return Cursor{}, false
	}
	return Cursor{CreatedAt: time.Unix(0, nanos).UTC(), ID: id}, true
}

// Window returns the filter clause selecting rows strictly older than the
// cursor position in (created_at desc, _id desc) order.
func (c Cursor) Window() bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"created_at": bson.M{"$lt": c.CreatedAt}},
		bson.M{"created_at": c.CreatedAt, "_id": bson.M{"$lt": c.ID}},
	}}
}

// Clamp normalizes a client-requested page size.
func Clamp(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// ApplyToFind configures sort and look-ahead limit for a page fetch.
// Fetches pageSize+1 rows so the caller can detect a further page.
func ApplyToFind(find *options.FindOptions, pageSize int) {
	find.SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	}).SetLimit(int64(pageSize + 1))
}

// Trim cuts a fetched slice down to pageSize after a look-ahead fetch.
// It modifies the slice in place and reports whether a further page
// exists.
func Trim[T any](rows *[]T, pageSize int) bool {
	if len(*rows) > pageSize {
		*rows = (*rows)[:pageSize]
		return true
	}
	return false
}
