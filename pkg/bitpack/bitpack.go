// Package bitpack stores fixed-width unsigned values back to back in a
// slice of 64-bit words. Values are laid out from the low bits of word 0
// upwards; a value whose bit range crosses a word boundary keeps its low bits
// at the top of the earlier word and its high bits at the bottom of the next
// one.
package bitpack

import "fmt"

const wordBits = 64

// Len returns the number of words needed to hold n values of the given width.
func Len(n, bits int) int {
	return (n*bits + wordBits - 1) / wordBits
}

// Fits reports whether words has exactly the length Len(n, bits) requires.
func Fits(words []uint64, n, bits int) bool {
	return len(words) == Len(n, bits)
}

func mask(bits int) uint64 {
	if bits >= wordBits {
		return ^uint64(0)
	}
	return 1<<uint(bits) - 1
}

// Pack packs n values produced by value into a new word slice. Each value is
// masked to its low bits before insertion.
func Pack(n, bits int, value func(i int) uint64) []uint64 {
	checkWidth(bits)
	words := make([]uint64, Len(n, bits))
	if len(words) == 0 {
		return words
	}
	m := mask(bits)
	for i := 0; i < n; i++ {
		v := value(i) & m
		pos := i * bits
		idx, off := pos/wordBits, uint(pos%wordBits)

		words[idx] |= v << off
		if int(off)+bits > wordBits {
			words[idx+1] |= v >> (wordBits - off)
		}
	}
	return words
}

// Get reads the value at cell i.
func Get(words []uint64, i, bits int) uint64 {
	checkWidth(bits)
	if bits == 0 {
		return 0
	}
	pos := i * bits
	idx, off := pos/wordBits, uint(pos%wordBits)

	v := words[idx] >> off
	if int(off)+bits > wordBits {
		v |= words[idx+1] << (wordBits - off)
	}
	return v & mask(bits)
}

// Unpack reads n values from words.
func Unpack(words []uint64, n, bits int) []uint64 {
	out := make([]uint64, n)
	if len(words) == 0 {
		return out
	}
	for i := range out {
		out[i] = Get(words, i, bits)
	}
	return out
}

func checkWidth(bits int) {
	if bits < 0 || bits > wordBits {
		panic(fmt.Sprintf("bitpack: width %d out of range [0, %d]", bits, wordBits))
	}
}
