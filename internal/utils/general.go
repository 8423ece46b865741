package utils

import "hash/fnv"

// Hash maps a node name to a stable integer id.
func Hash(s string) int {
	h := fnv.New32a()
	h.Write([]byte(s))
	return int(h.Sum32())
}
