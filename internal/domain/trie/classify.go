package trie

// NumClasses is the alphabet size of the trie: class 0 is the delimiter
// class, 1-10 are digits, 11-36 are case-folded letters.
const NumClasses = 37

// classTable maps each byte to its character class. Non-ASCII bytes and all
// punctuation fold to the delimiter class; this is intentional — the matcher
// is not Unicode-aware beyond ASCII case folding.
var classTable = [256]uint8{
	'0': 1, '1': 2, '2': 3, '3': 4, '4': 5,
	'5': 6, '6': 7, '7': 8, '8': 9, '9': 10,

	'a': 11, 'b': 12, 'c': 13, 'd': 14, 'e': 15, 'f': 16, 'g': 17,
	'h': 18, 'i': 19, 'j': 20, 'k': 21, 'l': 22, 'm': 23, 'n': 24,
	'o': 25, 'p': 26, 'q': 27, 'r': 28, 's': 29, 't': 30, 'u': 31,
	'v': 32, 'w': 33, 'x': 34, 'y': 35, 'z': 36,

	'A': 11, 'B': 12, 'C': 13, 'D': 14, 'E': 15, 'F': 16, 'G': 17,
	'H': 18, 'I': 19, 'J': 20, 'K': 21, 'L': 22, 'M': 23, 'N': 24,
	'O': 25, 'P': 26, 'Q': 27, 'R': 28, 'S': 29, 'T': 30, 'U': 31,
	'V': 32, 'W': 33, 'X': 34, 'Y': 35, 'Z': 36,
}

// Classify returns the character class for a single byte:
// 0 = delimiter, 1-10 = digits '0'-'9', 11-36 = letters (case-folded).
func Classify(b byte) uint8 {
	return classTable[b]
}
