package vtkio

import (
	"encoding/hex"
	"io"

	"golang.org/x/crypto/blake2b"
)

// Checksum returns the hex-encoded blake2b-256 digest of an input VTK or
// grisubal geometry file's bytes. cmd/cmap2's grisubal and stats subcommands
// print it for their input file; pkg/mapstore does not record or compare it.
// blake2b is used purely as a fast content fingerprint here, not for any
// authentication guarantee.
func Checksum(r io.Reader) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
