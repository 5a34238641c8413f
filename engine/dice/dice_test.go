package dice

import "testing"

type seqSource struct{ n int }

func (s *seqSource) Roll(sides int) int {
	s.n = s.n%sides + 1
	return s.n
}

func TestRollDice_DCInclusive(t *testing.T) {
	res := RollDice(NewFixed(14), 14)
	if !res.Success {
		t.Fatalf("roll 14 vs DC 14 should succeed: %+v", res)
	}
	if res.Roll != 14 || res.DC != 14 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestRollDice_BelowDC(t *testing.T) {
	res := RollDice(NewFixed(13), 14)
	if res.Success {
		t.Fatalf("roll 13 vs DC 14 should fail: %+v", res)
	}
}

func TestRollWithBonus(t *testing.T) {
	tests := []struct {
		face, bonus, dc int
		want            bool
	}{
		{10, 0, 12, false},
		{10, 2, 12, true},
		{10, 1, 12, false},
		{1, 20, 15, true},
		{20, -10, 15, false},
	}
	for _, tt := range tests {
		res := RollWithBonus(NewFixed(tt.face), tt.dc, tt.bonus)
		if res.Success != tt.want {
			t.Errorf("face=%d bonus=%d dc=%d: success=%v, want %v", tt.face, tt.bonus, tt.dc, res.Success, tt.want)
		}
		if res.Total != tt.face+tt.bonus {
			t.Errorf("total = %d, want %d", res.Total, tt.face+tt.bonus)
		}
		if res.Roll != tt.face {
			t.Errorf("natural roll = %d, want %d", res.Roll, tt.face)
		}
	}
}

func TestRollDice_Range(t *testing.T) {
	src := &seqSource{}
	for i := 0; i < 100; i++ {
		res := RollDice(src, 10)
		if res.Roll < 1 || res.Roll > 20 {
			t.Fatalf("roll out of range: %d", res.Roll)
		}
	}
}

func TestRollDice_ClampsBadSource(t *testing.T) {
	if got := RollDice(NewFixed(0), 1).Roll; got != 1 {
		t.Errorf("face 0 should clamp to 1, got %d", got)
	}
	if got := RollDice(NewFixed(99), 1).Roll; got != 20 {
		t.Errorf("face 99 should clamp to 20, got %d", got)
	}
}

func TestFixed_RepeatsLast(t *testing.T) {
	f := NewFixed(3, 7)
	got := []int{f.Roll(20), f.Roll(20), f.Roll(20)}
	want := []int{3, 7, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("roll %d = %d, want %d", i, got[i], want[i])
		}
	}
}
