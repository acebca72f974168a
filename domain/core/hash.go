package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// DocumentHash fingerprints the raw text of an audited document
type DocumentHash Hash

// ComputeDocumentHash hashes the exact input bytes; identical documents
// always map to the same fingerprint, which keeps report storage idempotent
func ComputeDocumentHash(text string) DocumentHash {
	return DocumentHash(NewHash([]byte(text)))
}

// String returns the hex representation
func (h DocumentHash) String() string { return Hash(h).String() }

// IsEmpty checks if the hash is empty
func (h DocumentHash) IsEmpty() bool { return Hash(h).IsEmpty() }
