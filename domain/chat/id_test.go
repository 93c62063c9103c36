package chat

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewRoomID_UniqueAndParseable(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewRoomID()
		if _, dup := seen[id]; dup {
			t.Fatalf("Duplicate room id after %d generations: %s", i, id)
		}
		seen[id] = struct{}{}

		parsed, err := uuid.Parse(id)
		if err != nil {
			t.Fatalf("Room id %q is not a valid UUID: %v", id, err)
		}
		if parsed.Version() != 7 {
			t.Fatalf("Room id version = %d, want 7", parsed.Version())
		}
	}
}
