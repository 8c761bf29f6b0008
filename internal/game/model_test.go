package game

import (
	"encoding/json"
	"errors"
	"testing"
)

func mustCoord(t *testing.T, s string) Coordinate {
	t.Helper()
	c, err := ParseCoordinate(s)
	if err != nil {
		t.Fatalf("ParseCoordinate(%q) failed: %v", s, err)
	}
	return c
}

func coords(t *testing.T, ss ...string) []Coordinate {
	t.Helper()
	out := make([]Coordinate, len(ss))
	for i, s := range ss {
		out[i] = mustCoord(t, s)
	}
	return out
}

func TestParseCoordinate(t *testing.T) {
	cases := []struct {
		in       string
		row, col int
	}{
		{"A1", 0, 0},
		{"J10", 9, 9},
		{"C7", 2, 6},
		{"A10", 0, 9},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			c, err := ParseCoordinate(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Row != tc.row || c.Col != tc.col {
				t.Fatalf("got row %d col %d, want %d %d", c.Row, c.Col, tc.row, tc.col)
			}
			if c.String() != tc.in {
				t.Fatalf("String() = %q, want %q", c.String(), tc.in)
			}
		})
	}
}

func TestParseCoordinateRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "A", "K1", "a1", "A0", "A11", "A01", "A1x", "1A", "J100", "A-1"} {
		t.Run(in, func(t *testing.T) {
			if _, err := ParseCoordinate(in); !errors.Is(err, ErrMalformedCoordinate) {
				t.Fatalf("ParseCoordinate(%q) error = %v, want ErrMalformedCoordinate", in, err)
			}
		})
	}
}

func TestNewShip(t *testing.T) {
	s, err := NewShip(Cruiser, mustCoord(t, "B2"), Vertical)
	if err != nil {
		t.Fatalf("NewShip failed: %v", err)
	}
	want := coords(t, "B2", "C2", "D2")
	if s.Size != 3 || len(s.Cells) != 3 {
		t.Fatalf("got size %d cells %v", s.Size, s.Cells)
	}
	for i := range want {
		if s.Cells[i] != want[i] {
			t.Fatalf("cell %d = %s, want %s", i, s.Cells[i], want[i])
		}
	}

	if _, err := NewShip(Carrier, mustCoord(t, "A8"), Horizontal); !errors.Is(err, ErrInvalidGameAction) {
		t.Fatalf("expected out of bounds carrier to fail, got %v", err)
	}
	if _, err := NewShip("Rowboat", mustCoord(t, "A1"), Horizontal); !errors.Is(err, ErrInvalidGameAction) {
		t.Fatalf("expected unknown type to fail, got %v", err)
	}
	if _, err := NewShip(Destroyer, mustCoord(t, "A1"), "diagonal"); !errors.Is(err, ErrInvalidGameAction) {
		t.Fatalf("expected bad orientation to fail, got %v", err)
	}
}

func TestShipJSONCarriesComputedSunk(t *testing.T) {
	s := Ship{Type: Destroyer, Size: 2, Cells: coords(t, "A1", "A2"), Hits: coords(t, "A1", "A2")}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw failed: %v", err)
	}
	if raw["sunk"] != true {
		t.Fatalf("sunk = %v in %s", raw["sunk"], data)
	}
	cells, _ := raw["cells"].([]any)
	if len(cells) != 2 || cells[0] != "A1" {
		t.Fatalf("cells not encoded as text: %s", data)
	}

	// A stale "sunk" flag is ignored on decode.
	var back Ship
	if err := json.Unmarshal([]byte(`{"type":"Destroyer","size":2,"cells":["A1","A2"],"hits":["A1"],"sunk":true}`), &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if back.Sunk() {
		t.Fatal("ship with one hit of two decoded as sunk")
	}
}

func TestGameCloneIsDeep(t *testing.T) {
	g := &Game{ID: "g1", CPUBoard: Board{Ships: []Ship{{Type: Destroyer, Size: 2, Cells: coords(t, "A1", "A2")}}}}
	c := g.Clone()
	if _, err := c.CPUBoard.ApplyShot(mustCoord(t, "A1")); err != nil {
		t.Fatalf("ApplyShot failed: %v", err)
	}
	if len(g.CPUBoard.ShotsReceived) != 0 || len(g.CPUBoard.Ships[0].Hits) != 0 {
		t.Fatal("mutating the clone changed the original")
	}
}

func TestBoardDefeated(t *testing.T) {
	var empty Board
	if empty.Defeated() {
		t.Fatal("empty board must not be defeated")
	}
	b := Board{Ships: []Ship{{Type: Destroyer, Size: 2, Cells: coords(t, "A1", "A2")}}}
	for _, s := range []string{"A1", "A2"} {
		if b.Defeated() {
			t.Fatalf("defeated before %s", s)
		}
		if _, err := b.ApplyShot(mustCoord(t, s)); err != nil {
			t.Fatalf("ApplyShot(%s) failed: %v", s, err)
		}
	}
	if !b.Defeated() {
		t.Fatal("board with every ship sunk is not defeated")
	}
}
