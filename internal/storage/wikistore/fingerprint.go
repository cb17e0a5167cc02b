package wikistore

import (
	"fmt"
	"io"
	"os"

	"github.com/spaolacci/murmur3"
)

// Fingerprint returns the murmur3 128-bit digest of data as 32 hex digits.
// It identifies content in logs and listings; it is not a security hash.
func Fingerprint(data []byte) string {
	return formatFingerprint(murmur3.Sum128(data))
}

// FingerprintFile streams the file at path through Fingerprint.
func FingerprintFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := murmur3.New128()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return formatFingerprint(h.Sum128()), nil
}

func formatFingerprint(h1, h2 uint64) string {
	return fmt.Sprintf("%016x%016x", h1, h2)
}
