package tagging

// stopwords are dropped from keyword ranking. Tokens of two runes or fewer are
// dropped separately, so short function words need no entry here.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "with": {}, "that": {}, "have": {}, "this": {},
	"from": {}, "your": {}, "about": {}, "would": {}, "there": {}, "could": {},
	"which": {}, "their": {}, "what": {}, "when": {}, "where": {}, "were": {},
	"been": {}, "into": {}, "also": {}, "more": {}, "than": {}, "because": {},
	"other": {}, "while": {}, "just": {}, "like": {}, "some": {}, "very": {},
	"such": {}, "those": {}, "over": {}, "each": {}, "make": {}, "made": {},
	"after": {}, "before": {}, "through": {}, "them": {}, "they": {}, "will": {},
	"between": {}, "might": {}, "only": {}, "even": {}, "does": {}, "every": {},
	"across": {},
}

func isStopword(word string) bool {
	_, ok := stopwords[word]
	return ok
}
