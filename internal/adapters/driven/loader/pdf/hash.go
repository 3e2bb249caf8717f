package pdf

import (
	"encoding/hex"
	"io"
	"os"
	"sort"

	"github.com/minio/highwayhash"
)

// hashKey is fixed so checksums are comparable across runs.
var hashKey = []byte("paperchat-corpus-fingerprint-k32")

// Checksum returns the hex highwayhash of the file at path.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Fingerprint combines document checksums into one corpus identifier.
// The result does not depend on the order of checksums.
func Fingerprint(checksums []string) string {
	sorted := append([]string(nil), checksums...)
	sort.Strings(sorted)

	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return ""
	}
	for _, c := range sorted {
		h.Write([]byte(c)) //nolint:errcheck
		h.Write([]byte{0}) //nolint:errcheck
	}
	return hex.EncodeToString(h.Sum(nil))
}
