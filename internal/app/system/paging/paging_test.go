package paging

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 26, 53, 589793238, time.UTC)
	id := primitive.NewObjectID()

	cur, ok := Decode(Encode(at, id))
	if !ok {
		t.Fatal("Decode failed on freshly encoded token")
	}
	if !cur.CreatedAt.Equal(at) {
		t.Errorf("CreatedAt: got %v, want %v", cur.CreatedAt, at)
	}
	if cur.ID != id {
		t.Errorf("ID: got %s, want %s", cur.ID.Hex(), id.Hex())
	}
}

func TestDecode_Garbage(t *testing.T) {
	for _, token := range []string{
		"",
		"not base64 !!",
		"aGVsbG8",          // valid base64, no separator
		"MTIzNDU2Onh5eg",   // bad object id
		"YWJjOjAxMjM0NTY3", // bad nanos
	} {
		if _, ok := Decode(token); ok {
			t.Errorf("Decode(%q) = ok, want failure", token)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, DefaultPageSize},
		{-5, DefaultPageSize},
		{1, 1},
		{30, 30},
		{100, 100},
		{101, MaxPageSize},
		{5000, MaxPageSize},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTrim(t *testing.T) {
	rows := []int{1, 2, 3, 4}
	if !Trim(&rows, 3) {
		t.Error("expected hasMore=true for look-ahead overflow")
	}
	if len(rows) != 3 {
		t.Errorf("expected 3 rows after trim, got %d", len(rows))
	}

	rows = []int{1, 2}
	if Trim(&rows, 3) {
		t.Error("expected hasMore=false for short page")
	}
	if len(rows) != 2 {
		t.Errorf("short page must be untouched, got %d rows", len(rows))
	}
}
