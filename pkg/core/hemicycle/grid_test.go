package hemicycle

import (
	"slices"
	"testing"

	"github.com/matzehuels/hemicycle/pkg/errors"
)

func TestNewGrid(t *testing.T) {
	tests := []struct {
		name    string
		rows    []int
		wantLen int
		wantErr bool
	}{
		{"single row", []int{5}, 5, false},
		{"three rows", []int{7, 9, 11}, 27, false},
		{"single seat row", []int{1, 3}, 4, false},
		{"no rows", nil, 0, true},
		{"empty row", []int{3, 0, 5}, 0, true},
		{"negative row", []int{-1}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGrid(tt.rows)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidConfig) {
					t.Fatalf("NewGrid(%v) error = %v, want INVALID_CONFIG", tt.rows, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewGrid(%v) error = %v", tt.rows, err)
			}
			if g.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", g.Len(), tt.wantLen)
			}
		})
	}
}

func TestGridRowsIsCopy(t *testing.T) {
	rows := []int{3, 5}
	g, err := NewGrid(rows)
	if err != nil {
		t.Fatal(err)
	}
	rows[0] = 99
	got := g.Rows()
	got[1] = 42
	if g.RowSize(0) != 3 || g.RowSize(1) != 5 {
		t.Errorf("grid rows mutated: %v", g.Rows())
	}
}

func TestGridSlotsRowMajor(t *testing.T) {
	g, _ := NewGrid([]int{2, 3})
	want := []Slot{{0, 0}, {0, 1}, {1, 0}, {1, 1}, {1, 2}}
	if got := g.Slots(); !slices.Equal(got, want) {
		t.Errorf("Slots() = %v, want %v", got, want)
	}
}

func TestGridAngle(t *testing.T) {
	g, _ := NewGrid([]int{1, 3, 7})
	tests := []struct {
		slot Slot
		want float64
	}{
		{Slot{0, 0}, 90},
		{Slot{1, 0}, 0},
		{Slot{1, 1}, 90},
		{Slot{1, 2}, 180},
		{Slot{2, 1}, 30},
		{Slot{2, 3}, 90},
	}
	for _, tt := range tests {
		if got := g.Angle(tt.slot); got != tt.want {
			t.Errorf("Angle(%v) = %v, want %v", tt.slot, got, tt.want)
		}
	}
}

func TestGridContains(t *testing.T) {
	g, _ := NewGrid([]int{3, 5})
	tests := []struct {
		slot Slot
		want bool
	}{
		{Slot{0, 0}, true},
		{Slot{1, 4}, true},
		{Slot{0, 3}, false},
		{Slot{2, 0}, false},
		{Slot{-1, 0}, false},
		{Slot{0, -1}, false},
	}
	for _, tt := range tests {
		if got := g.Contains(tt.slot); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.slot, got, tt.want)
		}
	}
}

func TestConsumptionOrder(t *testing.T) {
	g, _ := NewGrid([]int{3, 5})

	tests := []struct {
		name string
		tb   Tiebreaker
		want []Slot
	}{
		{
			name: "front row from left",
			tb:   FrontRowFromLeft,
			want: []Slot{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {1, 2}, {1, 3}, {0, 2}, {1, 4}},
		},
		{
			name: "front row from right",
			tb:   FrontRowFromRight,
			want: []Slot{{1, 0}, {0, 0}, {1, 1}, {1, 2}, {0, 1}, {1, 3}, {1, 4}, {0, 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.ConsumptionOrder(tt.tb); !slices.Equal(got, tt.want) {
				t.Errorf("ConsumptionOrder() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAdjacent(t *testing.T) {
	g, _ := NewGrid([]int{7, 9, 11})

	tests := []struct {
		name string
		a, b Slot
		want bool
	}{
		{"same slot", Slot{0, 0}, Slot{0, 0}, false},
		{"same row neighbours", Slot{0, 2}, Slot{0, 3}, true},
		{"same row gap", Slot{0, 2}, Slot{0, 4}, false},
		{"left ends of neighbouring rows", Slot{0, 0}, Slot{1, 0}, true},
		{"middle to middle", Slot{0, 3}, Slot{1, 4}, true},
		{"middle to right of middle", Slot{0, 3}, Slot{1, 5}, true},
		{"diagonal too far", Slot{0, 0}, Slot{1, 1}, false},
		{"right end near neighbour", Slot{0, 6}, Slot{1, 7}, true},
		{"rows two apart", Slot{0, 0}, Slot{2, 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Adjacent(tt.a, tt.b); got != tt.want {
				t.Errorf("Adjacent(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := g.Adjacent(tt.b, tt.a); got != tt.want {
				t.Errorf("Adjacent(%v, %v) = %v, want %v (symmetry)", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestParseTiebreaker(t *testing.T) {
	tests := []struct {
		in      string
		want    Tiebreaker
		wantErr bool
	}{
		{"", FrontRowFromLeft, false},
		{"front-row-from-left", FrontRowFromLeft, false},
		{"front-row-from-right", FrontRowFromRight, false},
		{"back-row", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTiebreaker(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTiebreaker(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseTiebreaker(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if !tt.wantErr && got.String() != tt.in && tt.in != "" {
			t.Errorf("String() = %q, want %q", got.String(), tt.in)
		}
	}
}
