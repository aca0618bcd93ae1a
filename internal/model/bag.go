package model

// Bag is the letter supply for a session: an ordered sequence of letters
// drawn from the end.
type Bag struct {
	Letters []rune `json:"letters"`
}

// NewBag creates a bag holding the given letters
func NewBag(letters []rune) *Bag {
	return &Bag{Letters: letters}
}

// Len returns the number of letters remaining
func (b *Bag) Len() int {
	return len(b.Letters)
}

// IsEmpty returns true if no letters remain
func (b *Bag) IsEmpty() bool {
	return len(b.Letters) == 0
}

// Counts returns the number of copies of each letter in the bag
func (b *Bag) Counts() map[rune]int {
	counts := make(map[rune]int)
	for _, l := range b.Letters {
		counts[l]++
	}
	return counts
}

// Clone returns a deep copy of the bag
func (b *Bag) Clone() *Bag {
	return &Bag{Letters: append([]rune{}, b.Letters...)}
}
