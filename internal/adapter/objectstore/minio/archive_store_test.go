package minio

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestObjectKey(t *testing.T) {
	ts := time.Date(2024, 3, 7, 9, 5, 42, 123_000_000, time.UTC)
	id := uuid.MustParse("3b241101-e2bb-4255-8caf-4136c566a962")

	key := ObjectKey(ts, id)

	want := "2024/03/07/3b241101-e2bb-4255-8caf-4136c566a962_2024-03-07T09:05:42.123Z.json"
	if key != want {
		t.Errorf("expected key %q, got %q", want, key)
	}
}

func TestTimestampTagSortsLexicographically(t *testing.T) {
	times := []time.Time{
		time.Date(2023, 12, 31, 23, 59, 59, 999_000_000, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 1_000_000, time.UTC),
		time.Date(2024, 10, 2, 8, 0, 0, 0, time.UTC),
	}

	for i := 1; i < len(times); i++ {
		prev, cur := TimestampTag(times[i-1]), TimestampTag(times[i])
		if !(prev < cur) {
			t.Errorf("expected %q < %q", prev, cur)
		}
	}
}

func TestByteSizeTag(t *testing.T) {
	if got := ByteSizeTag(1536); got != "00000000000000000000000000001536" {
		t.Errorf("unexpected byte size tag %q", got)
	}
	if len(ByteSizeTag(0)) != 32 {
		t.Error("byte size tag must always be 32 digits")
	}
	// string comparison must agree with numeric comparison
	if !(ByteSizeTag(999) < ByteSizeTag(1000)) {
		t.Error("padded tags should compare numerically")
	}
}

func TestKeyTimestamp(t *testing.T) {
	key := "2024/03/07/3b241101-e2bb-4255-8caf-4136c566a962_2024-03-07T09:05:42.123Z.json"
	tag, ok := keyTimestamp(key)
	if !ok {
		t.Fatal("expected key to parse")
	}
	if tag != "2024-03-07T09:05:42.123Z" {
		t.Errorf("unexpected timestamp %q", tag)
	}

	if _, ok := keyTimestamp("2024/03/07/garbage"); ok {
		t.Error("expected malformed key to be rejected")
	}
}
