package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBestTourEmptyGroupParksAtDepot(t *testing.T) {
	o := NewOracle(fixture())
	tour, err := BestTour(context.Background(), o, 1, nil, false)
	require.NoError(t, err)
	assert.Empty(t, tour.Stops)
	assert.Equal(t, []int64{1}, tour.Path)
	assert.Zero(t, tour.Cost)
}

func TestBestTourSingleStop(t *testing.T) {
	o := NewOracle(fixture())
	tour, err := BestTour(context.Background(), o, 1, []int64{4}, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, tour.Stops)
	assert.Equal(t, []int64{1, 4}, tour.Path)
	assert.Equal(t, 3.0, tour.Cost)
}

func TestBestTourThreeStops(t *testing.T) {
	// For A, B, D2 the cheapest order is A, B, D2: 5 + 2 + 3 = 10.
	o := NewOracle(fixture())
	tour, err := BestTour(context.Background(), o, 1, []int64{2, 3, 5}, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 5}, tour.Stops)
	assert.Equal(t, 10.0, tour.Cost)
	assert.Equal(t, []int64{1, 2, 3, 5}, tour.Path)
}

func TestBestTourTieKeepsFirstOrder(t *testing.T) {
	f := newStubFinder()
	f.add(0, 1, 4)
	f.add(0, 2, 4)
	f.add(1, 2, 2)
	o := NewOracle(f)

	// Both orders cost 6; the submission order wins.
	tour, err := BestTour(context.Background(), o, 0, []int64{1, 2}, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, tour.Stops)
	assert.Equal(t, 6.0, tour.Cost)
}

func TestBestTourReturnToDepot(t *testing.T) {
	o := NewOracle(fixture())
	tour, err := BestTour(context.Background(), o, 1, []int64{4}, true)
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, tour.Stops)
	assert.Equal(t, 6.0, tour.Cost)
	assert.Equal(t, []int64{1, 4, 1}, tour.Path)
}

func TestBestTourStitchesLegPaths(t *testing.T) {
	f := newStubFinder()
	f.addPath(1, 4, 3, 1, 8, 4)
	f.addPath(4, 5, 5, 4, 9, 5)
	f.add(1, 5, 9)
	o := NewOracle(f)

	tour, err := BestTour(context.Background(), o, 1, []int64{4, 5}, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 5}, tour.Stops)
	assert.Equal(t, 8.0, tour.Cost)
	assert.Equal(t, []int64{1, 8, 4, 9, 5}, tour.Path)
}

func TestBestTourUnreachableStop(t *testing.T) {
	f := newStubFinder()
	f.add(1, 2, 5)
	o := NewOracle(f)
	_, err := BestTour(context.Background(), o, 1, []int64{2, 3}, false)
	require.ErrorIs(t, err, ErrUnreachableNodes)
}
