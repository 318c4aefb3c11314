package beta

import (
	"testing"

	"github.com/orneryd/cmap2/pkg/dart"
	"github.com/orneryd/cmap2/pkg/txcell"
)

func newTestStorage(maxDart dart.ID) (*txcell.Space, *Storage) {
	space := txcell.NewSpace()
	s := NewStorage(space)
	s.EnsureCapacity(maxDart)
	return space, s
}

func TestOneLinkAndReadBack(t *testing.T) {
	space, s := newTestStorage(3)
	err := space.AtomicallyWithErr(func(tx *txcell.Transaction) error {
		return s.OneLinkCore(tx, 1, 2)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.AtomicRead(Beta1, 1); got != 2 {
		t.Fatalf("beta1(1) = %d, want 2", got)
	}
	if got := s.AtomicRead(Beta0, 2); got != 1 {
		t.Fatalf("beta0(2) = %d, want 1", got)
	}
}

func TestOneLinkTwiceRejectedAndBetaTableUnchanged(t *testing.T) {
	space, s := newTestStorage(3)
	_ = space.AtomicallyWithErr(func(tx *txcell.Transaction) error {
		return s.OneLinkCore(tx, 1, 2)
	})

	err := space.AtomicallyWithErr(func(tx *txcell.Transaction) error {
		return s.OneLinkCore(tx, 1, 3)
	})
	if err != ErrNonFreeBase {
		t.Fatalf("expected ErrNonFreeBase, got %v", err)
	}
	if got := s.AtomicRead(Beta1, 1); got != 2 {
		t.Fatalf("beta1(1) changed after rejected link: got %d, want 2", got)
	}
}

func TestOneUnlinkAlreadyFree(t *testing.T) {
	space, s := newTestStorage(3)
	err := space.AtomicallyWithErr(func(tx *txcell.Transaction) error {
		return s.OneUnlinkCore(tx, 1)
	})
	if err != ErrAlreadyFree {
		t.Fatalf("expected ErrAlreadyFree, got %v", err)
	}
}

func TestTwoLinkIsInvolution(t *testing.T) {
	space, s := newTestStorage(3)
	err := space.AtomicallyWithErr(func(tx *txcell.Transaction) error {
		return s.TwoLinkCore(tx, 1, 2)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.AtomicRead(Beta2, 1) != 2 || s.AtomicRead(Beta2, 2) != 1 {
		t.Fatalf("beta2 not a correct involution: beta2(1)=%d beta2(2)=%d",
			s.AtomicRead(Beta2, 1), s.AtomicRead(Beta2, 2))
	}
}

func TestTwoUnlinkFreesBothSides(t *testing.T) {
	space, s := newTestStorage(3)
	_ = space.AtomicallyWithErr(func(tx *txcell.Transaction) error {
		return s.TwoLinkCore(tx, 1, 2)
	})
	err := space.AtomicallyWithErr(func(tx *txcell.Transaction) error {
		return s.TwoUnlinkCore(tx, 1)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.AtomicRead(Beta2, 1) != dart.Null || s.AtomicRead(Beta2, 2) != dart.Null {
		t.Fatal("expected both sides of the involution freed after unlink")
	}
}
