package dispatch

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForEach2DCoversGrid(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	const w, h = 17, 23
	var hits [h][w]int32
	p.ForEach2D(w, h, func(x, y int) {
		atomic.AddInt32(&hits[y][x], 1)
	})

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			require.Equal(t, int32(1), hits[y][x], "cell (%d,%d)", x, y)
		}
	}
}

func TestForEach2DEmptyGrid(t *testing.T) {
	p := NewPool(2)
	defer p.Close()

	called := false
	p.ForEach2D(0, 5, func(x, y int) { called = true })
	p.ForEach2D(5, 0, func(x, y int) { called = true })
	require.False(t, called)
}

func TestForEach2DAfterCloseRunsSerially(t *testing.T) {
	p := NewPool(2)
	p.Close()

	var count int // no atomics: serial fallback runs on this goroutine
	p.ForEach2D(3, 3, func(x, y int) { count++ })
	require.Equal(t, 9, count)
}

func TestCloseIdempotent(t *testing.T) {
	p := NewPool(1)
	p.Close()
	p.Close()
}

func TestDefaultWorkerCount(t *testing.T) {
	p := NewPool(0)
	defer p.Close()
	require.Greater(t, p.Workers(), 0)
}

func BenchmarkForEach2D(b *testing.B) {
	p := NewPool(0)
	defer p.Close()

	var sink atomic.Int64
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.ForEach2D(256, 256, func(x, y int) {
			sink.Add(int64(x + y))
		})
	}
}
