package utils

import (
	"crypto/md5"
	"encoding/hex"
	"hash/fnv"
	"io"
)

// PartitionKey returns the reducer bucket for the given key.
// FNV-1a carries no per-process seed, so every mapper in a job assigns
// a key to the same bucket as long as they share numReducers.
func PartitionKey(key string, numReducers int) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(numReducers))
}

// HashBytes returns the MD5 hash of the given data.
func HashBytes(data []byte) (string, error) {
	h := md5.New()
	_, err := h.Write(data)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashReader returns the MD5 hash of the given reader.
func HashReader(r io.Reader) (string, error) {
	h := md5.New()
	_, err := io.Copy(h, r)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
