package crc16

import "testing"

func TestUpdateEmptyIsIdentity(t *testing.T) {
	if got := Update(0, nil); got != 0 {
		t.Fatalf("Update(0, nil) = %#x, want 0", got)
	}
	if got := Update(HeaderSeed, []byte{}); got != HeaderSeed {
		t.Fatalf("Update(HeaderSeed, []) = %#x, want %#x", got, HeaderSeed)
	}
}

// Golden vector hand-traced against the nibble table above: low nibble (0x1)
// then high nibble (0x0) of a single 0x01 byte, starting from seed 0.
func TestUpdateGoldenVector(t *testing.T) {
	got := Update(0, []byte{0x01})
	want := uint16(0xC0C1)
	if got != want {
		t.Fatalf("Update(0, {0x01}) = %#x, want %#x", got, want)
	}
}

// A zero byte is not a no-op once the seed is non-zero: both nibble steps
// still shift the running value and fold in table[crc&0xF].
func TestUpdateZeroByteChangesNonZeroSeed(t *testing.T) {
	if got := Update(0x1234, []byte{0x00}); got != 0xD713 {
		t.Fatalf("Update(0x1234, {0x00}) = %#x, want 0xd713", got)
	}
}

// The chain must be splittable: feeding bytes one at a time through
// successive seeds must equal feeding them all at once, since that's how
// record CRCs are built incrementally over entry header then payload.
func TestUpdateIsChainable(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog 0123456789")

	whole := Update(7, data)

	chained := uint16(7)
	for _, b := range data {
		chained = Update(chained, []byte{b})
	}

	if whole != chained {
		t.Fatalf("whole-buffer CRC %#x != byte-at-a-time chained CRC %#x", whole, chained)
	}

	mid := len(data) / 3
	split := Update(Update(7, data[:mid]), data[mid:])
	if whole != split {
		t.Fatalf("whole-buffer CRC %#x != two-part split CRC %#x", whole, split)
	}
}

func TestUpdateIsSensitiveToSeed(t *testing.T) {
	data := []byte("payload")
	if Update(0, data) == Update(1, data) {
		t.Fatalf("different seeds must not collide for the same data")
	}
}
