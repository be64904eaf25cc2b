package trie

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Digits(t *testing.T) {
	for i, b := range []byte("0123456789") {
		assert.Equal(t, uint8(i+1), Classify(b))
	}
}

func TestClassify_LettersFoldCase(t *testing.T) {
	for i := 0; i < 26; i++ {
		lower := byte('a' + i)
		upper := byte('A' + i)
		assert.Equal(t, uint8(11+i), Classify(lower))
		assert.Equal(t, Classify(lower), Classify(upper))
	}
}

func TestClassify_Delimiters(t *testing.T) {
	for _, b := range []byte(" \t\n.,;:!?/-_()[]{}'\"#@&") {
		assert.Equal(t, uint8(0), Classify(b), "byte %q", b)
	}
}

func TestClassify_NonASCII(t *testing.T) {
	// Everything above 0x7f is a delimiter; there is no Unicode handling.
	for b := 128; b < 256; b++ {
		assert.Equal(t, uint8(0), Classify(byte(b)))
	}
}
