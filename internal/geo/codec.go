package geo

import (
	"fmt"
	"strings"
)

// alphabet is the 16-symbol geohash character set. Unlike the conventional
// base-32 geohash, every symbol carries exactly 4 bits.
const alphabet = "0123456789abcdef"

// Lookup tables for the bit codec. Both are filled once by init() and only
// read afterwards, so they can be shared by any number of goroutines.
var (
	symbolToBits = map[byte]string{}
	bitsToSymbol = map[string]byte{}
)

func init() {
	for i := 0; i < len(alphabet); i++ {
		bits := fmt.Sprintf("%04b", i)
		symbolToBits[alphabet[i]] = bits
		bitsToSymbol[bits] = alphabet[i]
	}
}

// HexToBinary expands a geohash into its flat bit string, 4 bits per symbol,
// most significant bit first. Upper-case symbols are accepted.
func HexToBinary(hash string) (string, error) {
	hash = strings.ToLower(hash)

	var bits strings.Builder
	bits.Grow(len(hash) * 4)
	for i := 0; i < len(hash); i++ {
		group, ok := symbolToBits[hash[i]]
		if !ok {
			return "", fmt.Errorf("%w: %q has unknown symbol %q at position %d", ErrInvalidGeohash, hash, hash[i], i)
		}
		bits.WriteString(group)
	}
	return bits.String(), nil
}

// BinaryToHex packs a bit string back into geohash symbols. The length must be
// a multiple of 4 and every character must be '0' or '1'.
func BinaryToHex(bits string) (string, error) {
	if len(bits)%4 != 0 {
		return "", fmt.Errorf("%w: length %d is not a multiple of 4", ErrInvalidEncoding, len(bits))
	}

	var hash strings.Builder
	hash.Grow(len(bits) / 4)
	for i := 0; i < len(bits); i += 4 {
		symbol, ok := bitsToSymbol[bits[i:i+4]]
		if !ok {
			return "", fmt.Errorf("%w: group %q at offset %d", ErrInvalidEncoding, bits[i:i+4], i)
		}
		hash.WriteByte(symbol)
	}
	return hash.String(), nil
}
