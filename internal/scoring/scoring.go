// Package scoring turns the short score messages players text in ("4",
// "+2", "birdie", "snowman") into stroke counts for a hole.
package scoring

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MaxStrokes is the largest stroke count accepted for a single hole.
const MaxStrokes = 20

var (
	// ErrNotScore means the text is not score-shaped at all. Callers treat
	// it as chat, never as a failure.
	ErrNotScore = errors.New("not a score")

	// ErrOutOfRange means the text looks like a score but the stroke count
	// is unreasonably large.
	ErrOutOfRange = errors.New("score out of range")

	// ErrGolfWord means the text is a golf word that carries no stroke count.
	ErrGolfWord = errors.New("golf term without a stroke count")
)

// Score is a parsed score for one hole.
type Score struct {
	// Raw is the text as received.
	Raw string

	// Strokes is the stroke count, 0..MaxStrokes. Zero is returned as-is;
	// deciding whether it is acceptable is up to the caller.
	Strokes int

	// Description is the golf term for Strokes relative to par.
	Description string
}

var (
	integerPattern  = regexp.MustCompile(`^\d+$`)
	relativePattern = regexp.MustCompile(`^([+-])(\d+)$`)
)

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// absoluteTerms map straight to a stroke count regardless of par.
var absoluteTerms = map[string]int{
	"ace":         1,
	"hole in one": 1,
	"hole-in-one": 1,

	"snowman": 8,
	"☃️":      8,
	"☃":       8,
	"⛄️":      8,
	"⛄":       8,
	"⛇":       8,
}

// relativeTerms are offsets from par.
var relativeTerms = map[string]int{
	"albatross": -3,
	"albatros":  -3,

	"eagle": -2,
	"🦅":     -2,

	"birdie": -1,
	"🐦":      -1,
	"🐧":      -1,
	"🐤":      -1,
	"🐥":      -1,
	"🐣":      -1,
	"🦜":      -1,
	"🕊️":     -1,
	"🐦‍⬛":    -1,

	"par": 0,

	"bogey": 1,

	"double":       2,
	"double bogey": 2,
	"double-bogey": 2,

	"triple":       3,
	"triple bogey": 3,
	"triple-bogey": 3,

	"quad":            4,
	"quad bogey":      4,
	"quadruple":       4,
	"quadruple bogey": 4,
	"quadruple-bogey": 4,
}

// golfWords are recognizable golf vocabulary that does not name a score.
var golfWords = map[string]bool{
	"stroke": true, "strokes": true,
	"shot": true, "shots": true,
	"putt": true, "putts": true,
	"hole": true, "score": true,
	"mulligan": true, "gimme": true, "fore": true,
	"over par": true, "under par": true,
}

// Parse interprets text as a score on a hole with the given par.
//
// Recognized forms are a bare integer, +N or -N relative to par, the number
// words one..ten, and a closed vocabulary of golf terms. Relative results are
// floored at one stroke. Matching ignores case and surrounding whitespace.
func Parse(text string, par int) (Score, error) {
	normalized := normalize(text)
	if normalized == "" {
		return Score{}, ErrNotScore
	}

	strokes, err := strokesFor(normalized, par)
	if err != nil {
		return Score{}, err
	}

	return Score{
		Raw:         text,
		Strokes:     strokes,
		Description: Describe(strokes, par),
	}, nil
}

func strokesFor(normalized string, par int) (int, error) {
	if integerPattern.MatchString(normalized) {
		n, err := strconv.Atoi(normalized)
		if err != nil || n > MaxStrokes {
			return 0, fmt.Errorf("%w: %s", ErrOutOfRange, normalized)
		}
		return n, nil
	}

	if m := relativePattern.FindStringSubmatch(normalized); m != nil {
		offset, err := strconv.Atoi(m[2])
		if err != nil || offset > MaxStrokes {
			return 0, fmt.Errorf("%w: %s", ErrOutOfRange, normalized)
		}
		if m[1] == "-" {
			return max(1, par-offset), nil
		}
		if par+offset > MaxStrokes {
			return 0, fmt.Errorf("%w: %s", ErrOutOfRange, normalized)
		}
		return par + offset, nil
	}

	if n, ok := numberWords[normalized]; ok {
		return n, nil
	}
	if n, ok := absoluteTerms[normalized]; ok {
		return n, nil
	}
	if offset, ok := relativeTerms[normalized]; ok {
		return max(1, par+offset), nil
	}
	if golfWords[normalized] {
		return 0, ErrGolfWord
	}
	return 0, ErrNotScore
}

// Describe names a stroke count relative to par: "birdie", "double bogey",
// "5 over par". One stroke is always "hole in one".
func Describe(strokes, par int) string {
	if strokes == 1 {
		return "hole in one"
	}

	switch diff := strokes - par; {
	case diff == -3:
		return "albatross"
	case diff == -2:
		return "eagle"
	case diff == -1:
		return "birdie"
	case diff == 0:
		return "par"
	case diff == 1:
		return "bogey"
	case diff == 2:
		return "double bogey"
	case diff == 3:
		return "triple bogey"
	case diff == 4:
		return "quadruple bogey"
	case diff > 4:
		return fmt.Sprintf("%d over par", diff)
	}
	return fmt.Sprintf("%d strokes", strokes)
}

// normalize lowercases, trims, and collapses internal whitespace.
func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
