package seatbar

import (
	"slices"
	"testing"

	"github.com/matzehuels/hemicycle/pkg/core/aggregate"
	"github.com/matzehuels/hemicycle/pkg/errors"
)

func TestSeats(t *testing.T) {
	tests := []struct {
		name    string
		agg     aggregate.ElectedLeading
		want    []Segment
		wantErr bool
	}{
		{
			name: "empty",
			agg:  aggregate.ElectedLeading{},
			want: []Segment{{"#0000ff", 0}, {"#8080ff", 0}},
		},
		{
			name: "mixed",
			agg:  aggregate.ElectedLeading{Elected: 1, Total: 8},
			want: []Segment{{"#0000ff", 1}, {"#8080ff", 7}},
		},
		{
			name: "all elected",
			agg:  aggregate.ElectedLeading{Elected: 6, Total: 6},
			want: []Segment{{"#0000ff", 6}, {"#8080ff", 0}},
		},
		{name: "elected above total", agg: aggregate.ElectedLeading{Elected: 3, Total: 2}, wantErr: true},
		{name: "negative", agg: aggregate.ElectedLeading{Elected: -1, Total: 2}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Seats(tt.agg, "#0000ff", "#8080ff")
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidAggregate) {
					t.Fatalf("Seats() error = %v, want INVALID_AGGREGATE", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Seats() = %v, want %v", got, tt.want)
			}
			if Total(got) != tt.agg.Total {
				t.Errorf("segments sum to %d, want %d", Total(got), tt.agg.Total)
			}
		})
	}
}

func TestChange(t *testing.T) {
	tests := []struct {
		name    string
		start   int
		agg     aggregate.ElectedLeading
		want    []Segment
		wantEnd int
	}{
		{"gain", 1, aggregate.ElectedLeading{Elected: 0, Total: 7}, []Segment{{"e", 0}, {"l", 7}}, 8},
		{"loss", 30, aggregate.ElectedLeading{Elected: -30, Total: -30}, []Segment{{"e", -30}, {"l", 0}}, 0},
		{"leading loss", 30, aggregate.ElectedLeading{Total: -30}, []Segment{{"e", 0}, {"l", -30}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := Change(tt.start, tt.agg, "e", "l")
			if bar.Start != tt.start {
				t.Errorf("Start = %d, want %d", bar.Start, tt.start)
			}
			if !slices.Equal(bar.Segments, tt.want) {
				t.Errorf("Segments = %v, want %v", bar.Segments, tt.want)
			}
			if bar.End() != tt.wantEnd {
				t.Errorf("End() = %d, want %d", bar.End(), tt.wantEnd)
			}
		})
	}
}
