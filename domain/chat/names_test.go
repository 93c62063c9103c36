package chat

import (
	"errors"
	"strconv"
	"strings"
	"testing"
)

func TestAllocateName_PrefersUnassigned(t *testing.T) {
	assigned := make(map[string]struct{})

	// Assign all but one pool name; the allocator must find the free one.
	free := namePool[len(namePool)-1]
	for _, name := range namePool[:len(namePool)-1] {
		assigned[name] = struct{}{}
	}

	name, err := AllocateName(assigned)
	if err != nil {
		t.Fatalf("AllocateName() error = %v", err)
	}
	if name != free {
		t.Errorf("Expected the remaining free name %q, got %q", free, name)
	}
}

func TestAllocateName_DistinctWhilePoolHasCapacity(t *testing.T) {
	assigned := make(map[string]struct{})

	for i := 0; i < len(namePool); i++ {
		name, err := AllocateName(assigned)
		if err != nil {
			t.Fatalf("AllocateName() error on allocation %d: %v", i, err)
		}
		if _, dup := assigned[name]; dup {
			t.Fatalf("Allocation %d returned already-assigned name %q", i, name)
		}
		assigned[name] = struct{}{}
	}
}

func TestAllocateName_ExhaustedPoolFallsBackToSuffix(t *testing.T) {
	assigned := make(map[string]struct{}, len(namePool))
	for _, name := range namePool {
		assigned[name] = struct{}{}
	}

	name, err := AllocateName(assigned)
	if err != nil {
		t.Fatalf("AllocateName() error = %v", err)
	}
	if _, taken := assigned[name]; taken {
		t.Errorf("Composite name %q equals an assigned name", name)
	}

	base := strings.TrimRight(name, "0123456789")
	if base == name {
		t.Errorf("Expected numeric suffix on composite name, got %q", name)
	}
	found := false
	for _, poolName := range namePool {
		if poolName == base {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Composite base %q is not a pool name", base)
	}
}

func TestAllocateName_SideEffectFree(t *testing.T) {
	assigned := map[string]struct{}{namePool[0]: {}}

	if _, err := AllocateName(assigned); err != nil {
		t.Fatalf("AllocateName() error = %v", err)
	}
	if len(assigned) != 1 {
		t.Errorf("Input set mutated: len = %d, want 1", len(assigned))
	}
}

func TestAllocateName_ExhaustionIsBounded(t *testing.T) {
	// Saturate the pool and a wide band of suffixes. The allocator must
	// either find a free composite or fail with ErrNamePoolExhausted; it
	// must not loop forever.
	assigned := make(map[string]struct{})
	for _, name := range namePool {
		assigned[name] = struct{}{}
		for i := 0; i < 10000; i++ {
			assigned[name+strconv.Itoa(i)] = struct{}{}
		}
	}

	_, err := AllocateName(assigned)
	if !errors.Is(err, ErrNamePoolExhausted) {
		t.Errorf("Expected ErrNamePoolExhausted, got %v", err)
	}
}
