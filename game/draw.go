package game

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// MatchType selects the bingo variant of a match
type MatchType string

const (
	Bingo75 MatchType = "BINGO_75"
	Bingo90 MatchType = "BINGO_90"
)

// ExtraMax is the upper bound of the tie-break draw
const ExtraMax = 100

var letters = [...]string{"B", "I", "N", "G", "O"}

var ErrPoolExhausted = errors.New("all numbers have been drawn")

// TypeInfo describes a match type for clients
type TypeInfo struct {
	Type        MatchType `json:"type"`
	MaxNumber   int       `json:"max_number"`
	ColumnWidth int       `json:"column_width"`
}

// Types lists every supported match type
func Types() []TypeInfo {
	return []TypeInfo{
		{Type: Bingo75, MaxNumber: Bingo75.MaxNumber(), ColumnWidth: Bingo75.ColumnWidth()},
		{Type: Bingo90, MaxNumber: Bingo90.MaxNumber(), ColumnWidth: Bingo90.ColumnWidth()},
	}
}

// Valid reports whether t is a known match type
func (t MatchType) Valid() bool {
	return t == Bingo75 || t == Bingo90
}

// MaxNumber is the highest drawable number for the type
func (t MatchType) MaxNumber() int {
	if t == Bingo90 {
		return 90
	}
	return 75
}

// ColumnWidth is how many numbers share one letter
func (t MatchType) ColumnWidth() int {
	if t == Bingo90 {
		return 18
	}
	return 15
}

// Source yields uniform integers in [0, n)
type Source interface {
	IntN(n int) int
}

// CryptoSource reads from crypto/rand
type CryptoSource struct{}

func (CryptoSource) IntN(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return int(v.Int64())
}

// DrawNext picks a number in [1, max] that is not already in drawn.
// A full pool returns ErrPoolExhausted instead of looping.
func DrawNext(t MatchType, drawn []int, src Source) (int, error) {
	max := t.MaxNumber()

	seen := make(map[int]struct{}, len(drawn))
	for _, n := range drawn {
		if n >= 1 && n <= max {
			seen[n] = struct{}{}
		}
	}
	if len(seen) >= max {
		return 0, ErrPoolExhausted
	}

	for {
		n := src.IntN(max) + 1
		if _, ok := seen[n]; !ok {
			return n, nil
		}
	}
}

// LetterFor maps a number to its B-I-N-G-O column. Out of range gives "".
func LetterFor(number int, t MatchType) string {
	if number < 1 {
		return ""
	}
	idx := (number - 1) / t.ColumnWidth()
	if idx < 0 || idx >= len(letters) {
		return ""
	}
	return letters[idx]
}

// Narration is the caller's line for a drawn number
func Narration(number int, t MatchType) string {
	return fmt.Sprintf("Letter %s, number %d", LetterFor(number, t), number)
}

// ExtraNumber draws the tie-break stone in [1, ExtraMax]
func ExtraNumber(src Source) int {
	return src.IntN(ExtraMax) + 1
}
