package scoring

import (
	"errors"
	"fmt"
	"strconv"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		par      int
		wantErr  error
		strokes  int
		describe string
	}{
		{name: "bare integer", input: "4", par: 4, strokes: 4, describe: "par"},
		{name: "integer with whitespace", input: "  5 ", par: 4, strokes: 5, describe: "bogey"},
		{name: "zero is passed through", input: "0", par: 4, strokes: 0, describe: "0 strokes"},
		{name: "upper bound", input: "20", par: 4, strokes: 20, describe: "16 over par"},
		{name: "over upper bound", input: "21", par: 4, wantErr: ErrOutOfRange},
		{name: "absurd integer", input: "99999999999999999999", par: 4, wantErr: ErrOutOfRange},
		{name: "plus relative", input: "+2", par: 4, strokes: 6, describe: "double bogey"},
		{name: "minus relative", input: "-1", par: 4, strokes: 3, describe: "birdie"},
		{name: "minus floored at one", input: "-5", par: 3, strokes: 1, describe: "hole in one"},
		{name: "plus past bound", input: "+18", par: 4, wantErr: ErrOutOfRange},
		{name: "number word", input: "Three", par: 4, strokes: 3, describe: "birdie"},
		{name: "ace", input: "ACE", par: 4, strokes: 1, describe: "hole in one"},
		{name: "hole in one spaced", input: "hole   in one", par: 3, strokes: 1, describe: "hole in one"},
		{name: "hole-in-one hyphenated", input: "hole-in-one", par: 3, strokes: 1, describe: "hole in one"},
		{name: "snowman", input: "snowman", par: 4, strokes: 8, describe: "4 over par"},
		{name: "snowman emoji", input: "⛄", par: 5, strokes: 8, describe: "triple bogey"},
		{name: "albatross", input: "albatross", par: 5, strokes: 2, describe: "albatross"},
		{name: "eagle", input: "Eagle", par: 5, strokes: 3, describe: "eagle"},
		{name: "eagle on par 3 floors", input: "eagle", par: 3, strokes: 1, describe: "hole in one"},
		{name: "birdie", input: "birdie", par: 4, strokes: 3, describe: "birdie"},
		{name: "birdie emoji", input: "🐦", par: 4, strokes: 3, describe: "birdie"},
		{name: "par", input: "par", par: 4, strokes: 4, describe: "par"},
		{name: "bogey", input: "bogey", par: 4, strokes: 5, describe: "bogey"},
		{name: "double", input: "double", par: 4, strokes: 6, describe: "double bogey"},
		{name: "double bogey", input: "Double Bogey", par: 4, strokes: 6, describe: "double bogey"},
		{name: "triple", input: "triple bogey", par: 3, strokes: 6, describe: "triple bogey"},
		{name: "quad", input: "quad", par: 4, strokes: 8, describe: "quadruple bogey"},
		{name: "quadruple bogey", input: "quadruple bogey", par: 4, strokes: 8, describe: "quadruple bogey"},
		{name: "golf word", input: "strokes", par: 4, wantErr: ErrGolfWord},
		{name: "golf phrase", input: "Under Par", par: 4, wantErr: ErrGolfWord},
		{name: "chat", input: "great shot on the last!", par: 4, wantErr: ErrNotScore},
		{name: "empty", input: "   ", par: 4, wantErr: ErrNotScore},
		{name: "decimal", input: "4.5", par: 4, wantErr: ErrNotScore},
		{name: "mixed", input: "4 strokes", par: 4, wantErr: ErrNotScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input, tt.par)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%q, %d) error = %v, want %v", tt.input, tt.par, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q, %d) unexpected error: %v", tt.input, tt.par, err)
			}
			if got.Strokes != tt.strokes {
				t.Errorf("strokes = %d, want %d", got.Strokes, tt.strokes)
			}
			if got.Description != tt.describe {
				t.Errorf("description = %q, want %q", got.Description, tt.describe)
			}
			if got.Raw != tt.input {
				t.Errorf("raw = %q, want %q", got.Raw, tt.input)
			}
		})
	}
}

func TestParseDescribeRoundTrip(t *testing.T) {
	canonical := map[int]string{
		-3: "albatross",
		-2: "eagle",
		-1: "birdie",
		0:  "par",
		1:  "bogey",
		2:  "double bogey",
		3:  "triple bogey",
		4:  "quadruple bogey",
	}

	for par := 3; par <= 6; par++ {
		for strokes := 1; strokes <= MaxStrokes; strokes++ {
			t.Run(fmt.Sprintf("par%d_strokes%d", par, strokes), func(t *testing.T) {
				score, err := Parse(strconv.Itoa(strokes), par)
				if err != nil {
					t.Fatalf("Parse failed: %v", err)
				}

				diff := strokes - par
				want, ok := canonical[diff]
				switch {
				case strokes == 1:
					want = "hole in one"
				case diff > 4:
					want = fmt.Sprintf("%d over par", diff)
				case !ok:
					want = fmt.Sprintf("%d strokes", strokes)
				}

				if got := Describe(score.Strokes, par); got != want {
					t.Errorf("Describe(%d, %d) = %q, want %q", score.Strokes, par, got, want)
				}
			})
		}
	}
}

func TestRelativeNotation(t *testing.T) {
	for par := 3; par <= 6; par++ {
		plus, err := Parse("+2", par)
		if err != nil {
			t.Fatalf("Parse(+2, %d): %v", par, err)
		}
		if plus.Strokes != par+2 {
			t.Errorf("+2 at par %d = %d, want %d", par, plus.Strokes, par+2)
		}

		minus, err := Parse("-1", par)
		if err != nil {
			t.Fatalf("Parse(-1, %d): %v", par, err)
		}
		if minus.Strokes != max(1, par-1) {
			t.Errorf("-1 at par %d = %d, want %d", par, minus.Strokes, max(1, par-1))
		}
	}
}

func TestDescribeHoleInOneIgnoresPar(t *testing.T) {
	for _, par := range []int{1, 3, 4, 5} {
		if got := Describe(1, par); got != "hole in one" {
			t.Errorf("Describe(1, %d) = %q, want hole in one", par, got)
		}
	}
}
