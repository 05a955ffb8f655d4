// internal/app/store/emailverify/emailverifystore.go
package emailverify

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

const (
	// CodeLength is the number of digits in a one-time code.
	CodeLength = 8
	// DefaultExpiry is how long a code stays redeemable.
	DefaultExpiry = 15 * time.Minute
	// BcryptCost for hashing codes. Codes are short-lived so the lighter
	// cost is acceptable.
	BcryptCost = 10
	// MaxVerifyAttempts caps wrong-code guesses per pending code.
	MaxVerifyAttempts = 5
)

// Purposes a one-time code can be issued for.
const (
	PurposeSignIn        = "signin"
	PurposePasswordReset = "password_reset"
)

var (
	ErrNotFound = errors.New("verification not found or expired")
	// ErrInvalidCode is returned when the submitted code does not match.
	ErrInvalidCode = errors.New("invalid verification code")
	// ErrTooManyAttempts is returned after MaxVerifyAttempts wrong guesses.
	ErrTooManyAttempts = errors.New("too many verification attempts")
)

// Verification is one pending one-time code. Codes are keyed by folded
// email plus purpose so a sign-in code can never redeem a password
// reset.
type Verification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	EmailCI   string             `bson:"email_ci"`
	Purpose   string             `bson:"purpose"`
	CodeHash  string             `bson:"code_hash"`
	ExpiresAt time.Time          `bson:"expires_at"`
	CreatedAt time.Time          `bson:"created_at"`
	Attempts  int                `bson:"attempts"`
}

type Store struct {
	c      *mongo.Collection
	expiry time.Duration
}

// New creates a Store. A non-positive expiry falls back to
// DefaultExpiry.
func New(db *mongo.Database, expiry time.Duration) *Store {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Store{c: db.Collection("email_verifications"), expiry: expiry}
}

// Expiry returns how long issued codes stay valid.
func (s *Store) Expiry() time.Duration {
	return s.expiry
}

// Issue mints a fresh code for an email and purpose, replacing any
// earlier pending code for that pair. The plain code is returned once,
// for delivery by mail; only its bcrypt hash is stored.
func (s *Store) Issue(ctx context.Context, emailCI, purpose string) (string, error) {
	code := generateCode()
	hash, err := bcrypt.GenerateFromPassword([]byte(code), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash code: %w", err)
	}

	now := time.Now().UTC()
	if _, err := s.c.DeleteMany(ctx, bson.M{"email_ci": emailCI, "purpose": purpose}); err != nil {
		return "", err
	}
	_, err = s.c.InsertOne(ctx, Verification{
		ID:        primitive.NewObjectID(),
		EmailCI:   emailCI,
		Purpose:   purpose,
		CodeHash:  string(hash),
		ExpiresAt: now.Add(s.expiry),
		CreatedAt: now,
	})
	if err != nil {
		return "", fmt.Errorf("insert verification: %w", err)
	}
	return code, nil
}

// Redeem checks a submitted code against the pending verification for
// an email and purpose. A matching code consumes the record; a wrong
// code burns an attempt.
func (s *Store) Redeem(ctx context.Context, emailCI, purpose, code string) error {
	var v Verification
	err := s.c.FindOne(ctx, bson.M{
		"email_ci":   emailCI,
		"purpose":    purpose,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}).Decode(&v)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		return err
	}

	if v.Attempts >= MaxVerifyAttempts {
		return ErrTooManyAttempts
	}
	_, _ = s.c.UpdateOne(ctx, bson.M{"_id": v.ID}, bson.M{"$inc": bson.M{"attempts": 1}})

	if err := bcrypt.CompareHashAndPassword([]byte(v.CodeHash), []byte(code)); err != nil {
		return ErrInvalidCode
	}

	// Single use.
	_, _ = s.c.DeleteOne(ctx, bson.M{"_id": v.ID})
	return nil
}

// EnsureIndexes creates the lookup index and the TTL index that purges
// expired codes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "email_ci", Value: 1},
				{Key: "purpose", Value: 1},
			},
			Options: options.Index().SetName("idx_emailverify_email_purpose"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("idx_emailverify_expires_ttl").SetExpireAfterSeconds(0),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// generateCode returns a random 8-digit numeric code. Panics if the
// system's cryptographic random number generator fails.
func generateCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(100000000))
	if err != nil {
		panic("crypto/rand.Int failed: " + err.Error())
	}
	return fmt.Sprintf("%08d", n.Int64())
}
