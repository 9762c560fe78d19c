package board

import "testing"

func TestKIFNotation(t *testing.T) {
	pos := NewPosition()
	prev := NoSquare

	tests := []struct {
		usi  string
		want string
	}{
		{"7g7f", "７六歩(77)"},
		{"3c3d", "３四歩(33)"},
		{"8h2b+", "２二角成(88)"},
		{"3a2b", "同　銀(31)"},
		{"B*4e", "４五角打"},
	}

	for _, tc := range tests {
		m, err := ParseMove(tc.usi, pos)
		if err != nil {
			t.Fatalf("ParseMove(%s): %v", tc.usi, err)
		}
		if got := m.KIF(prev); got != tc.want {
			t.Errorf("%s: KIF = %s, want %s", tc.usi, got, tc.want)
		}
		pos.MakeMove(m)
		prev = m.To()
	}
}

func TestKIFDeclinedPromotion(t *testing.T) {
	pos := mustParse(t, "k8/9/9/9/4N4/9/9/9/4K4 b - 1")
	m, err := ParseMove("5e4c", pos)
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}
	if got, want := m.KIF(NoSquare), "４三桂不成(55)"; got != want {
		t.Errorf("KIF = %s, want %s", got, want)
	}
}

func TestSquareNotation(t *testing.T) {
	for _, s := range []string{"1a", "9i", "7g", "5e"} {
		sq, err := ParseSquare(s)
		if err != nil {
			t.Fatalf("ParseSquare(%s): %v", s, err)
		}
		if sq.String() != s {
			t.Errorf("%s -> %v", s, sq)
		}
	}
	if sq, _ := ParseSquare("7g"); KIFSquare(sq) != "７七" {
		t.Errorf("KIFSquare(7g) = %s", KIFSquare(sq))
	}
	for _, s := range []string{"", "0a", "1j", "a1", "10a"} {
		if _, err := ParseSquare(s); err == nil {
			t.Errorf("ParseSquare(%q) should fail", s)
		}
	}
}
