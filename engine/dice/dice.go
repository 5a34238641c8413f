// Package dice implements the d20 difficulty check used by scenes.
package dice

// D20 is the number of sides on the scene die.
const D20 = 20

// Source is the randomness provider for rolls. Roll returns an integer in
// [1, sides]. The session RNG satisfies it; tests substitute fixed rolls.
type Source interface {
	Roll(sides int) int
}

// Result is the outcome of a single difficulty check.
type Result struct {
	Roll    int // natural die face, always in [1,20]
	Bonus   int
	Total   int
	DC      int
	Success bool
}

// MeetsDifficulty reports whether total meets or beats dc. The DC is inclusive.
func MeetsDifficulty(total, dc int) bool {
	return total >= dc
}

// RollDice rolls a d20 against dc with no modifiers.
func RollDice(src Source, dc int) Result {
	return RollWithBonus(src, dc, 0)
}

// RollWithBonus rolls a d20, adds bonus, and compares the total against dc.
func RollWithBonus(src Source, dc, bonus int) Result {
	roll := clampFace(src.Roll(D20))
	total := roll + bonus
	return Result{
		Roll:    roll,
		Bonus:   bonus,
		Total:   total,
		DC:      dc,
		Success: MeetsDifficulty(total, dc),
	}
}

// clampFace keeps a misbehaving source inside the die's faces.
func clampFace(n int) int {
	if n < 1 {
		return 1
	}
	if n > D20 {
		return D20
	}
	return n
}

// Fixed is a Source that replays a scripted sequence of faces, repeating
// the last one when exhausted.
type Fixed struct {
	faces []int
	next  int
}

// NewFixed creates a scripted Source.
func NewFixed(faces ...int) *Fixed {
	return &Fixed{faces: faces}
}

// Roll returns the next scripted face.
func (f *Fixed) Roll(sides int) int {
	if len(f.faces) == 0 {
		return 1
	}
	i := f.next
	if i >= len(f.faces) {
		i = len(f.faces) - 1
	} else {
		f.next++
	}
	return f.faces[i]
}
