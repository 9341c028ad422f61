package basen

import (
	"math/big"
)

const (
	AlphabetBase16 = "1234567890abcdef"
	AlphabetBase62 = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Encoder is a generic base-N encoder.
type Encoder struct {
	alphabet string
}

// NewEncoder creates a new instance of Encoder using the provided alphabet.
func NewEncoder(alphabet string) *Encoder {
	return &Encoder{alphabet}
}

// Encode encodes binary data into a base-N string.
func (e *Encoder) Encode(data []byte) string {
	var (
		value big.Int
		zero  big.Int
		base  big.Int
	)

	value.SetBytes(data)

	baseInt64 := int64(len(e.alphabet))

	result := []byte{}

	for value.Cmp(&zero) != 0 {
		base.SetInt64(baseInt64)
		_, remainder := value.DivMod(&value, &base, &base)
		result = append(result, e.alphabet[remainder.Int64()])
	}

	return string(result)
}
