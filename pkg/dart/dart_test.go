package dart

import "testing"

func TestAllocateOneSkipsNull(t *testing.T) {
	r := NewRegistry()
	id := r.AllocateOne()
	if id == Null {
		t.Fatal("AllocateOne must never return the null dart")
	}
	if id != 1 {
		t.Fatalf("first allocated id = %d, want 1", id)
	}
}

func TestFreeAndReuse(t *testing.T) {
	r := NewRegistry()
	a := r.AllocateOne()
	b := r.AllocateOne()
	r.Free(a)
	c := r.AllocateOne()
	if c != a {
		t.Fatalf("AllocateOne after Free = %d, want reused id %d", c, a)
	}
	if r.IsUsed(a) != true || r.IsUsed(b) != true {
		t.Fatal("expected both a and b to be used after reuse")
	}
}

func TestFreeAlreadyFreePanics(t *testing.T) {
	r := NewRegistry()
	id := r.AllocateOne()
	r.Free(id)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when freeing an already-free dart")
		}
	}()
	r.Free(id)
}

func TestAllocateNIsContiguousAndSkipsReuse(t *testing.T) {
	r := NewRegistry()
	r.AllocateOne()
	freed := r.AllocateOne()
	r.Free(freed)

	ids := r.AllocateN(4)
	if len(ids) != 4 {
		t.Fatalf("AllocateN(4) returned %d ids", len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i] != ids[i-1]+1 {
			t.Fatalf("AllocateN ids not contiguous: %v", ids)
		}
	}
	for _, id := range ids {
		if id == freed {
			t.Fatalf("AllocateN must not draw from the reuse stack, got freed id %d", freed)
		}
	}
}

func TestCountAndCapacity(t *testing.T) {
	r := NewRegistry()
	r.AllocateOne()
	r.AllocateOne()
	if r.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", r.Count())
	}
	if r.Capacity() != 3 {
		t.Fatalf("Capacity() = %d, want 3", r.Capacity())
	}
}

func TestRestoreUsed(t *testing.T) {
	r := NewRegistry()
	r.RestoreUsed([]ID{1, 2, 5})

	for _, id := range []ID{1, 2, 5} {
		if !r.IsUsed(id) {
			t.Fatalf("expected id %d to be used after RestoreUsed", id)
		}
	}
	if r.IsUsed(3) {
		t.Fatal("id 3 was not in the restored set, should not be used")
	}
	if r.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", r.Count())
	}
	if r.Capacity() != 6 {
		t.Fatalf("Capacity() = %d, want 6 (one past the highest restored id)", r.Capacity())
	}

	next := r.AllocateOne()
	if next != 6 {
		t.Fatalf("AllocateOne after RestoreUsed = %d, want 6", next)
	}
}
