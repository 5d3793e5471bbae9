package source

import "hash/fnv"

// Fingerprint derives a stable per-process identity for a source from
// its type tag and instance name. It addresses no pool by itself —
// pool assignment is the accumulator's round-robin cursor — but gives
// every entropy event a stable, loggable origin.
func Fingerprint(typeTag, instanceName string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(typeTag))
	h.Write([]byte{0})
	h.Write([]byte(instanceName))
	return h.Sum64()
}
