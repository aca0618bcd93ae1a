package testutil

// Words is a small dictionary for tests. Every entry is a valid
// dictionary candidate (lowercase, alphabetic, at least three letters).
var Words = []string{
	// three letters
	"ace", "act", "age", "ant", "ape", "arc", "are", "art", "ate", "bat",
	"bed", "bee", "cab", "can", "cat", "cot", "dog", "ear", "eat", "end",
	"era", "fan", "fit", "gas", "hat", "ice", "ink", "jam", "key", "lap",
	"mat", "net", "nut", "oak", "oar", "one", "ore", "pan", "pea", "pet",
	"rat", "red", "rot", "sat", "sea", "set", "tan", "tar", "tea", "ten",
	"toe", "ton", "urn", "vat", "wax", "yak", "zap", "zen",
	// four letters
	"acts", "bear", "beat", "cart", "cast", "coat", "date", "east", "eats",
	"near", "neat", "note", "rate", "rats", "read", "rest", "road", "salt",
	"seat", "star", "tear", "teas", "tone", "tree",
	// five and longer
	"arise", "crate", "heart", "least", "notes", "react", "roast", "stare",
	"steal", "stone", "tears", "trace", "treat", "crates", "stones", "streak",
}
