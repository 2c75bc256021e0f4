package console

func readBitN(v uint64, offset uint) bool {
	return v&(1<<offset) > 0
}

func writeBitN(v uint64, offset uint, level bool) uint64 {
	if level {
		// Example [v] ORed 00100000 -> sets 5th bit to 1
		return v | (1 << offset)
	}
	// Example [v] ANDed 11011111 (negated) -> forces 5th bit to 0
	return v &^ (1 << offset)
}

// decodeColor splits an RRGGBB register value into 2 bit channel samples
func decodeColor(v uint8) (r, g, b uint8) {
	return (v >> 4) & 0x3, (v >> 2) & 0x3, v & 0x3
}
