package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainDocument separates document digests from any other hash use.
// Version suffix enables future algorithm migration.
const DomainDocument = "objtok/document/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DocumentDigest computes a content digest of a document value.
// Equal documents produce equal digests regardless of map ordering.
func DocumentDigest(v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("DocumentDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainDocument, canonical), nil
}
