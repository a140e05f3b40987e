package tagging

import (
	"math"
	"strings"
	"unicode"
)

const (
	// Normalization constant for the compound score; approximates the maximum
	// expected sum of valences in a short text.
	normalizationAlpha = 15.0

	boosterIncrement    = 0.293
	negationScalar      = -0.74
	exclamationBoost    = 0.292
	maxExclamationMarks = 4
	negationWindow      = 3
)

// valences maps lowercase words to their sentiment intensity in [-4, 4].
var valences = map[string]float64{
	// positive
	"good": 1.9, "great": 3.1, "love": 3.2, "loved": 2.9, "loves": 2.7, "lovely": 2.8,
	"happy": 2.7, "happiness": 2.6, "excellent": 2.7, "amazing": 2.8, "awesome": 3.1,
	"wonderful": 2.7, "best": 3.2, "better": 1.9, "fantastic": 2.6, "brilliant": 2.8,
	"excited": 1.4, "exciting": 2.2, "excitement": 2.2, "fun": 2.3, "nice": 1.8,
	"enjoy": 2.2, "enjoyed": 2.3, "beautiful": 2.9, "glad": 2.0, "joy": 2.8,
	"win": 2.8, "wins": 2.7, "won": 2.7, "winning": 2.4, "success": 2.7,
	"successful": 2.8, "hope": 1.9, "hopeful": 2.3, "thanks": 1.9, "thank": 1.5,
	"grateful": 2.0, "perfect": 2.7, "pleased": 1.9, "proud": 2.1, "celebrate": 2.7,
	"celebrated": 2.7, "inspiring": 2.4, "inspired": 2.2, "interesting": 1.7,
	"helpful": 1.8, "improve": 1.9, "improved": 2.1, "progress": 1.8, "support": 1.7,
	"kind": 2.4, "calm": 1.3, "peaceful": 2.2, "safe": 1.9, "strong": 2.3,
	"favorite": 2.0, "delight": 2.9, "delighted": 3.1, "fortunate": 1.9,
	"agree": 1.5, "benefit": 2.0, "benefits": 1.6, "recommend": 1.5, "cool": 1.3,
	"laugh": 2.6, "smile": 1.5, "friendly": 2.2, "free": 1.5, "fresh": 1.3,
	"yes": 1.7, "wow": 2.8, "curious": 1.3, "surprise": 1.1,

	// negative
	"bad": -2.5, "terrible": -2.1, "awful": -2.0, "hate": -2.7, "hated": -3.2,
	"sad": -2.1, "sadness": -1.9, "angry": -2.3, "anger": -2.7, "worst": -3.1,
	"worse": -2.1, "horrible": -2.5, "fail": -2.5, "failed": -2.3, "failure": -2.3,
	"problem": -1.7, "problems": -1.7, "crisis": -3.1, "war": -2.9, "death": -2.9,
	"dead": -3.3, "die": -2.9, "died": -2.6, "kill": -3.7, "killed": -3.5,
	"fear": -2.2, "afraid": -2.0, "scared": -1.9, "worried": -1.2, "worry": -1.9,
	"anxious": -0.9, "anxiety": -0.7, "cry": -2.1, "crying": -2.1, "pain": -2.3,
	"painful": -2.4, "poor": -2.1, "wrong": -2.1, "lost": -1.3, "loss": -1.3,
	"lose": -1.7, "disaster": -3.1, "ugly": -2.3, "boring": -1.3, "annoying": -1.7,
	"annoyed": -1.6, "upset": -1.6, "disappointed": -1.9, "disappointing": -2.2,
	"lonely": -1.5, "hurt": -2.4, "broken": -2.1, "stupid": -2.4, "tired": -1.9,
	"stress": -1.8, "stressed": -1.4, "difficult": -1.5, "hard": -0.4, "attack": -2.1,
	"violence": -3.1, "threat": -2.4, "danger": -2.4, "dangerous": -2.1,
	"collapse": -2.2, "decline": -1.3, "risk": -1.1, "sick": -2.3, "illness": -2.1,
	"cancel": -1.0, "cancelled": -1.0, "delay": -1.3, "delayed": -0.9, "no": -1.2,
	"miss": -0.6, "missed": -1.2, "regret": -1.8, "shame": -2.1, "guilty": -1.8,
	"confused": -1.3, "frustrated": -2.3, "frustrating": -1.9, "furious": -3.1,
	"grief": -2.2, "mourn": -1.9, "tragedy": -3.4, "tragic": -3.4,
}

// boosters scale the intensity of the word that follows them.
var boosters = map[string]float64{
	"absolutely": boosterIncrement, "completely": boosterIncrement, "extremely": boosterIncrement,
	"incredibly": boosterIncrement, "really": boosterIncrement, "so": boosterIncrement,
	"totally": boosterIncrement, "very": boosterIncrement, "highly": boosterIncrement,
	"especially": boosterIncrement, "most": boosterIncrement, "truly": boosterIncrement,
	"barely": -boosterIncrement, "hardly": -boosterIncrement, "slightly": -boosterIncrement,
	"somewhat": -boosterIncrement, "kind-of": -boosterIncrement, "marginally": -boosterIncrement,
	"partly": -boosterIncrement, "less": -boosterIncrement,
}

var negations = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "none": {}, "nobody": {}, "nothing": {},
	"neither": {}, "nor": {}, "without": {}, "cannot": {}, "can't": {}, "don't": {},
	"doesn't": {}, "didn't": {}, "isn't": {}, "aren't": {}, "wasn't": {}, "weren't": {},
	"won't": {}, "wouldn't": {}, "shouldn't": {}, "couldn't": {}, "hasn't": {},
	"haven't": {}, "hadn't": {}, "ain't": {},
}

// Sentiment returns the compound sentiment score of text in [-1, 1].
// Empty or lexicon-free text scores 0.
func Sentiment(text string) float64 {
	tokens := sentimentTokens(text)
	if len(tokens) == 0 {
		return 0
	}

	var sum float64
	for i, tok := range tokens {
		v, ok := valences[tok]
		if !ok {
			continue
		}
		// "no" is only a valence word when nothing follows it to negate
		if tok == "no" && i+1 < len(tokens) {
			continue
		}

		for back := 1; back <= negationWindow && i-back >= 0; back++ {
			prev := tokens[i-back]
			if b, ok := boosters[prev]; ok {
				scaled := b * (1 - 0.05*float64(back-1))
				if v < 0 {
					scaled = -scaled
				}
				v += scaled
			}
		}
		for back := 1; back <= negationWindow && i-back >= 0; back++ {
			if _, ok := negations[tokens[i-back]]; ok {
				v *= negationScalar
				break
			}
		}
		sum += v
	}

	if sum != 0 {
		marks := min(strings.Count(text, "!"), maxExclamationMarks)
		emphasis := float64(marks) * exclamationBoost
		if sum > 0 {
			sum += emphasis
		} else {
			sum -= emphasis
		}
	}

	return clampScore(sum / math.Sqrt(sum*sum+normalizationAlpha))
}

// sentimentTokens splits text on whitespace and trims surrounding punctuation.
func sentimentTokens(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && r != '\'' && r != '-'
		})
		f = strings.Trim(f, "'-")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func clampScore(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(-1, math.Min(1, score))
}
