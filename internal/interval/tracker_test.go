package interval_test

import (
	"testing"

	"github.com/ostafen/gptscan/internal/interval"
	"github.com/stretchr/testify/require"
)

func TestCheckAndInsert(t *testing.T) {
	type insert struct {
		id, start, length int
		prior             int
		conflict          bool
	}

	tests := []struct {
		name    string
		inserts []insert
	}{
		{
			name: "disjoint",
			inserts: []insert{
				{id: 0, start: 10, length: 11, prior: -1},
				{id: 1, start: 21, length: 10, prior: -1},
			},
		},
		{
			name: "overlapping",
			inserts: []insert{
				{id: 0, start: 10, length: 11, prior: -1},
				{id: 1, start: 15, length: 11, prior: 0, conflict: true},
			},
		},
		{
			name: "contained",
			inserts: []insert{
				{id: 3, start: 100, length: 100, prior: -1},
				{id: 7, start: 120, length: 1, prior: 3, conflict: true},
			},
		},
		{
			name: "earliest wins",
			inserts: []insert{
				{id: 0, start: 0, length: 50, prior: -1},
				{id: 1, start: 40, length: 20, prior: 0, conflict: true},
				{id: 2, start: 55, length: 1, prior: 1, conflict: true},
				{id: 3, start: 45, length: 1, prior: 0, conflict: true},
			},
		},
		{
			name: "empty range",
			inserts: []insert{
				{id: 0, start: 0, length: 50, prior: -1},
				{id: 1, start: 10, length: 0, prior: -1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := interval.New()
			for _, in := range tt.inserts {
				prior, conflict := tr.CheckAndInsert(in.id, uint64(in.start), uint64(in.length))
				require.Equal(t, in.conflict, conflict, "insert %d", in.id)
				require.Equal(t, in.prior, prior, "insert %d", in.id)
			}
		})
	}
}

func TestSaturatedEnd(t *testing.T) {
	tr := interval.New()

	_, conflict := tr.CheckAndInsert(0, ^uint64(0)-10, 100)
	require.False(t, conflict)

	prior, conflict := tr.CheckAndInsert(1, ^uint64(0)-1, 1)
	require.True(t, conflict)
	require.Equal(t, 0, prior)
}

func TestRelease(t *testing.T) {
	tr := interval.New()
	tr.CheckAndInsert(0, 0, 10)
	tr.Release()

	_, conflict := tr.CheckAndInsert(1, 5, 1)
	require.False(t, conflict)
}
