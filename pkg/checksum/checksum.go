// Package checksum computes and formats the content digests jarlock uses for
// integrity verification and skip-if-unchanged decisions.
//
// Digests are exchanged and persisted as "<algorithm>:<lowercase-hex>"
// (e.g. "sha256:ab12..."). Lockfile equality checks compare these strings
// byte-for-byte, so the format must never change.
package checksum

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
)

// Algorithm identifies a supported digest algorithm.
type Algorithm string

const (
	SHA256 Algorithm = "sha256"
	SHA512 Algorithm = "sha512"
)

// New returns a fresh hasher for the algorithm.
func New(algo Algorithm) (hash.Hash, error) {
	switch algo {
	case SHA256:
		return sha256.New(), nil
	case SHA512:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", algo)
	}
}

// Sum computes the digest of data and returns it in canonical form.
func Sum(data []byte, algo Algorithm) (string, error) {
	h, err := New(algo)
	if err != nil {
		return "", err
	}
	h.Write(data)
	return Format(algo, hex.EncodeToString(h.Sum(nil))), nil
}

// SumReader computes the digest of everything read from r.
// Data is hashed as it streams; nothing is buffered.
func SumReader(r io.Reader, algo Algorithm) (string, error) {
	h, err := New(algo)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return Format(algo, hex.EncodeToString(h.Sum(nil))), nil
}

// File computes the digest of the file at path.
func File(path string, algo Algorithm) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return SumReader(f, algo)
}

// Format joins an algorithm and a hex digest into the canonical
// "algo:hex" encoding.
func Format(algo Algorithm, hexDigest string) string {
	return string(algo) + ":" + strings.ToLower(hexDigest)
}

// Parse splits a canonical "algo:hex" digest into its parts.
func Parse(s string) (Algorithm, string, error) {
	algo, hexDigest, ok := strings.Cut(s, ":")
	if !ok {
		return "", "", fmt.Errorf("invalid hash format: %q (expected \"algorithm:hex\")", s)
	}
	switch Algorithm(algo) {
	case SHA256, SHA512:
		return Algorithm(algo), hexDigest, nil
	default:
		return "", "", fmt.Errorf("unsupported hash algorithm: %s", algo)
	}
}
