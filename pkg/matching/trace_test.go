package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"map_matcher/pkg/geo"
)

func TestUTurnFlags(t *testing.T) {
	tests := []struct {
		name  string
		trace []geo.Coordinate
		want  []bool
	}{
		{
			name: "straight line",
			trace: []geo.Coordinate{
				geo.NewCoordinate(0, 0),
				geo.NewCoordinate(0, 0.001),
				geo.NewCoordinate(0, 0.002),
			},
			want: []bool{false, false, false},
		},
		{
			name: "gentle curve stays unflagged",
			trace: []geo.Coordinate{
				geo.NewCoordinate(0, 0),
				geo.NewCoordinate(0, 0.001),
				geo.NewCoordinate(0.0004, 0.002),
			},
			want: []bool{false, false, false},
		},
		{
			name: "hairpin",
			trace: []geo.Coordinate{
				geo.NewCoordinate(0, 0),
				geo.NewCoordinate(0, 0.001),
				geo.NewCoordinate(0.00001, 0.00001),
			},
			want: []bool{false, true, false},
		},
		{
			name: "right angle flagged",
			trace: []geo.Coordinate{
				geo.NewCoordinate(0, 0),
				geo.NewCoordinate(0, 0.001),
				geo.NewCoordinate(0.001, 0.001),
			},
			// TurnAngle reports 270° for this left turn, above the 260° threshold.
			want: []bool{false, true, false},
		},
		{
			name: "two fixes have no interior",
			trace: []geo.Coordinate{
				geo.NewCoordinate(0, 0),
				geo.NewCoordinate(0, 0.001),
			},
			want: []bool{false, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UTurnFlags(tt.trace)
			require.Len(t, got, len(tt.trace), "flag vector must cover every fix")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUTurnFlagsEndpointsAlwaysFalse(t *testing.T) {
	trace := []geo.Coordinate{
		geo.NewCoordinate(0, 0),
		geo.NewCoordinate(0, 0.001),
		geo.NewCoordinate(0.001, 0.001),
		geo.NewCoordinate(0.001, 0),
	}
	flags := UTurnFlags(trace)
	require.Len(t, flags, 4)
	assert.False(t, flags[0])
	assert.False(t, flags[len(flags)-1])
}

func TestSearchRadii(t *testing.T) {
	trace := []geo.Coordinate{
		geo.NewCoordinate(0, 0),
		geo.NewCoordinate(0, 0.0010),
		geo.NewCoordinate(0, 0.0030),
	}
	radii := SearchRadii(trace)
	require.Len(t, radii, 3)

	d1 := geo.ApproxDistance(trace[0], trace[1])
	d2 := geo.ApproxDistance(trace[1], trace[2])

	assert.InDelta(t, d1/2, radii[0], 1e-9, "first fix borrows the first spacing")
	assert.InDelta(t, d1/2, radii[1], 1e-9)
	assert.InDelta(t, d2/2, radii[2], 1e-9)
}
