package cave

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// FloorSeed derives the generation seed for a floor from the cave seed.
// Neighboring floors get unrelated seeds, unlike seed+floor offsets.
func FloorSeed(caveSeed int64, floor int) int64 {
	return hashSeed(caveSeed, int64(floor), "floor")
}

// spawnSeed derives the seed for spawn planning, kept apart from the layout seed
// so tuning the spawn tables never changes cave shapes.
func spawnSeed(floorSeed int64) int64 {
	return hashSeed(floorSeed, 0, "spawn")
}

func hashSeed(a, b int64, label string) int64 {
	buf := make([]byte, 16, 16+len(label))
	binary.LittleEndian.PutUint64(buf[0:8], uint64(a))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(b))
	buf = append(buf, label...)
	sum := blake2b.Sum256(buf)
	return int64(binary.LittleEndian.Uint64(sum[:8]))
}
