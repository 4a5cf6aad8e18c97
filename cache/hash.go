// SPDX-License-Identifier: EPL-2.0

package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// Separator joins the digests of a cache value.
const Separator = "|"

// HashBytes returns the upper-case hex SHA-1 of b.
func HashBytes(b []byte) string {
	sum := sha1.Sum(b)
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// HashString hashes the UTF-8 bytes of s.
func HashString(s string) string {
	return HashBytes([]byte(s))
}

// HashFile streams the file at path through SHA-1.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("cache: %w", err)
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("cache: hashing %s: %w", path, err)
	}

	return strings.ToUpper(hex.EncodeToString(h.Sum(nil))), nil
}

// Key names the cache record of an output file. It depends on the path only.
func Key(outputPath string) string {
	return HashString(outputPath)
}

// Value computes the record for a build: the descriptor digest, then the
// output digest, then one digest per input in the order given.
func Value(descriptorPath, outputPath string, inputs []string) (string, error) {
	paths := make([]string, 0, len(inputs)+2)
	paths = append(paths, descriptorPath, outputPath)
	paths = append(paths, inputs...)

	digests := make([]string, len(paths))
	for i, p := range paths {
		d, err := HashFile(p)
		if err != nil {
			return "", err
		}
		digests[i] = d
	}

	return strings.Join(digests, Separator), nil
}
