package supply

// Alphabet lists the letters of the base distribution in table order
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// baseArea is the board area that carries two copies of the base distribution
const baseArea = 36

// frequencies is the English-frequency distribution of one base set (98 letters)
var frequencies = map[rune]int{
	'A': 9, 'B': 2, 'C': 2, 'D': 4, 'E': 12, 'F': 2, 'G': 3, 'H': 2, 'I': 9,
	'J': 1, 'K': 1, 'L': 4, 'M': 2, 'N': 6, 'O': 8, 'P': 2, 'Q': 1, 'R': 6,
	'S': 4, 'T': 6, 'U': 4, 'V': 2, 'W': 2, 'X': 1, 'Y': 2, 'Z': 1,
}

// values are the display point values of each letter
var values = map[rune]int{
	'A': 1, 'B': 3, 'C': 3, 'D': 2, 'E': 1, 'F': 4, 'G': 2, 'H': 4, 'I': 1,
	'J': 8, 'K': 5, 'L': 1, 'M': 3, 'N': 1, 'O': 1, 'P': 3, 'Q': 10, 'R': 1,
	'S': 1, 'T': 1, 'U': 1, 'V': 4, 'W': 4, 'X': 8, 'Y': 4, 'Z': 10,
}

// Frequency returns the number of copies of a letter in one base set
func Frequency(letter rune) int {
	return frequencies[letter]
}

// BaseSize returns the number of letters in one base set
func BaseSize() int {
	total := 0
	for _, c := range frequencies {
		total += c
	}
	return total
}

// Value returns the point value of a letter, or 0 for non-letters
func Value(letter rune) int {
	return values[letter]
}

// IsVowel returns true for A, E, I, O and U
func IsVowel(letter rune) bool {
	switch letter {
	case 'A', 'E', 'I', 'O', 'U':
		return true
	}
	return false
}

// Multiplier returns how many base sets a supply for a rows x cols board holds.
// Scales with area: a 36-cell board carries two sets, never fewer than one.
func Multiplier(rows, cols int) int {
	area := rows * cols
	if area < 1 {
		area = 1
	}
	// ceil(area*2/36) in integers
	m := (area*2 + baseArea - 1) / baseArea
	if m < 1 {
		m = 1
	}
	return m
}
