package beta

import "errors"

// Precondition errors returned by the *_core link/unlink operations. These
// are programmer errors (spec.md §7): they abort the current transaction and
// are surfaced to the caller unchanged, never retried.
var (
	// ErrNonFreeBase is returned when the dart being linked already has a
	// non-null image under the permutation being written.
	ErrNonFreeBase = errors.New("beta: base dart is not free")
	// ErrNonFreeImage is returned when the target dart of a link already has
	// a non-null preimage under the permutation being written.
	ErrNonFreeImage = errors.New("beta: image dart is not free")
	// ErrAlreadyFree is returned when unlinking a dart whose image is
	// already null.
	ErrAlreadyFree = errors.New("beta: dart is already free")
)
