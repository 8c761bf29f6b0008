package game

import (
	"encoding/json"
	"fmt"
	"strconv"
)

const BoardSize = 10

type ShipType string

const (
	Carrier    ShipType = "Carrier"
	Battleship ShipType = "Battleship"
	Cruiser    ShipType = "Cruiser"
	Submarine  ShipType = "Submarine"
	Destroyer  ShipType = "Destroyer"
)

type ShipSpec struct {
	Type ShipType
	Size int
}

// Fleet is the fixed composition every board carries, largest first.
var Fleet = []ShipSpec{
	{Carrier, 5},
	{Battleship, 4},
	{Cruiser, 3},
	{Submarine, 3},
	{Destroyer, 2},
}

type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

type Status string

const (
	StatusSetup    Status = "SETUP"
	StatusPlaying  Status = "PLAYING"
	StatusFinished Status = "FINISHED"
)

// Side names a participant. It is used both for the turn and the winner.
type Side string

const (
	SidePlayer Side = "PLAYER"
	SideCPU    Side = "CPU"
)

// Coordinate is a zero-indexed grid cell. Its text form is "A1".."J10".
type Coordinate struct {
	Row int
	Col int
}

func (c Coordinate) Valid() bool {
	return c.Row >= 0 && c.Row < BoardSize && c.Col >= 0 && c.Col < BoardSize
}

func (c Coordinate) String() string {
	return FormatCoordinate(c.Row, c.Col)
}

func (c Coordinate) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: row %d col %d", ErrMalformedCoordinate, c.Row, c.Col)
	}
	return []byte(c.String()), nil
}

func (c *Coordinate) UnmarshalText(text []byte) error {
	parsed, err := ParseCoordinate(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCoordinate converts "A1" to row 0, col 0. Only the exact form
// [A-J](10|[1-9]) is accepted.
func ParseCoordinate(coord string) (Coordinate, error) {
	if len(coord) < 2 || len(coord) > 3 {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrMalformedCoordinate, coord)
	}
	rowChar := coord[0]
	if rowChar < 'A' || rowChar > 'J' {
		return Coordinate{}, fmt.Errorf("%w: invalid row in %q", ErrMalformedCoordinate, coord)
	}
	colStr := coord[1:]
	if colStr[0] == '0' {
		return Coordinate{}, fmt.Errorf("%w: invalid column in %q", ErrMalformedCoordinate, coord)
	}
	col, err := strconv.Atoi(colStr)
	if err != nil || col < 1 || col > BoardSize {
		return Coordinate{}, fmt.Errorf("%w: invalid column in %q", ErrMalformedCoordinate, coord)
	}
	return Coordinate{Row: int(rowChar - 'A'), Col: col - 1}, nil
}

// converts row (0-9) and col (0-9) to "A1"
func FormatCoordinate(row, col int) string {
	return fmt.Sprintf("%c%d", 'A'+row, col+1)
}

type Ship struct {
	Type  ShipType
	Size  int
	Cells []Coordinate
	Hits  []Coordinate
}

// Sunk is derived from the hits; it is never stored on its own.
func (s *Ship) Sunk() bool {
	return s.Size > 0 && len(s.Hits) == s.Size
}

func (s *Ship) Occupies(c Coordinate) bool {
	for _, cell := range s.Cells {
		if cell == c {
			return true
		}
	}
	return false
}

func (s *Ship) IsHitAt(c Coordinate) bool {
	for _, h := range s.Hits {
		if h == c {
			return true
		}
	}
	return false
}

type shipJSON struct {
	Type  ShipType     `json:"type"`
	Size  int          `json:"size"`
	Cells []Coordinate `json:"cells"`
	Hits  []Coordinate `json:"hits"`
	Sunk  bool         `json:"sunk"`
}

func (s Ship) MarshalJSON() ([]byte, error) {
	cells, hits := s.Cells, s.Hits
	if cells == nil {
		cells = []Coordinate{}
	}
	if hits == nil {
		hits = []Coordinate{}
	}
	return json.Marshal(shipJSON{
		Type:  s.Type,
		Size:  s.Size,
		Cells: cells,
		Hits:  hits,
		Sunk:  s.Sunk(),
	})
}

// UnmarshalJSON ignores the "sunk" field; it is recomputed from hits.
func (s *Ship) UnmarshalJSON(data []byte) error {
	var raw shipJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Ship{Type: raw.Type, Size: raw.Size, Cells: raw.Cells, Hits: raw.Hits}
	return nil
}

// NewShip expands a start cell and orientation into a ship of the given
// type. The type must be part of the fleet.
func NewShip(t ShipType, start Coordinate, o Orientation) (Ship, error) {
	size := sizeOf(t)
	if size == 0 {
		return Ship{}, fmt.Errorf("%w: invalid ship type %q", ErrInvalidGameAction, t)
	}
	cells, err := lineFrom(start, o, size)
	if err != nil {
		return Ship{}, fmt.Errorf("%w: %s %v", ErrInvalidGameAction, t, err)
	}
	return Ship{Type: t, Size: size, Cells: cells}, nil
}

func sizeOf(t ShipType) int {
	for _, spec := range Fleet {
		if spec.Type == t {
			return spec.Size
		}
	}
	return 0
}

func lineFrom(start Coordinate, o Orientation, size int) ([]Coordinate, error) {
	if !start.Valid() {
		return nil, fmt.Errorf("start out of bounds: row %d col %d", start.Row, start.Col)
	}
	dr, dc := 0, 1
	switch o {
	case Horizontal:
	case Vertical:
		dr, dc = 1, 0
	default:
		return nil, fmt.Errorf("invalid orientation %q", o)
	}
	cells := make([]Coordinate, 0, size)
	for i := 0; i < size; i++ {
		c := Coordinate{Row: start.Row + dr*i, Col: start.Col + dc*i}
		if !c.Valid() {
			return nil, fmt.Errorf("out of bounds at %s", start)
		}
		cells = append(cells, c)
	}
	return cells, nil
}

type Board struct {
	Ships         []Ship       `json:"ships"`
	ShotsReceived []Coordinate `json:"shotsReceived"`
}

func (b *Board) HasShot(c Coordinate) bool {
	for _, s := range b.ShotsReceived {
		if s == c {
			return true
		}
	}
	return false
}

// Defeated reports whether every ship is sunk. An empty board is never
// defeated.
func (b *Board) Defeated() bool {
	if len(b.Ships) == 0 {
		return false
	}
	for i := range b.Ships {
		if !b.Ships[i].Sunk() {
			return false
		}
	}
	return true
}

func (b *Board) shipAt(c Coordinate) int {
	for i := range b.Ships {
		if b.Ships[i].Occupies(c) {
			return i
		}
	}
	return -1
}

// shotGrid is a lookup table of the shots a board has received.
type shotGrid [BoardSize][BoardSize]bool

func (b *Board) shotGrid() *shotGrid {
	var g shotGrid
	for _, s := range b.ShotsReceived {
		if s.Valid() {
			g[s.Row][s.Col] = true
		}
	}
	return &g
}

func (g *shotGrid) shot(c Coordinate) bool {
	return g[c.Row][c.Col]
}

// Clone returns a deep copy sharing no slices with b.
func (b Board) Clone() Board {
	out := Board{ShotsReceived: append([]Coordinate(nil), b.ShotsReceived...)}
	if b.Ships != nil {
		out.Ships = make([]Ship, len(b.Ships))
		for i, s := range b.Ships {
			out.Ships[i] = Ship{
				Type:  s.Type,
				Size:  s.Size,
				Cells: append([]Coordinate(nil), s.Cells...),
				Hits:  append([]Coordinate(nil), s.Hits...),
			}
		}
	}
	return out
}

type Game struct {
	ID          string `json:"id"`
	PlayerName  string `json:"playerName,omitempty"`
	Status      Status `json:"status"`
	Turn        Side   `json:"turn"`
	Winner      Side   `json:"winner,omitempty"`
	PlayerBoard Board  `json:"playerBoard"`
	CPUBoard    Board  `json:"cpuBoard"`
	StartedAt   int64  `json:"startedAt,omitempty"`
}

func (g *Game) Clone() *Game {
	out := *g
	out.PlayerBoard = g.PlayerBoard.Clone()
	out.CPUBoard = g.CPUBoard.Clone()
	return &out
}
