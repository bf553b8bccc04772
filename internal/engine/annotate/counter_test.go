package annotate_test

import (
	"io"
	"strings"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tally/internal/core/domain"
	"go.trai.ch/tally/internal/engine/annotate"
)

func TestCountLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "empty stream", input: "", want: 0},
		{name: "content without terminator", input: "a", want: 1},
		{name: "single terminated line", input: "a\n", want: 1},
		{name: "trailing content counts", input: "a\nb", want: 2},
		{name: "two terminated lines", input: "a\nb\n", want: 2},
		{name: "blank lines count", input: "\n\n\n", want: 3},
		{name: "long content", input: strings.Repeat("line\n", 10000), want: 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := annotate.CountLines(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// stallingReader blocks every Read until the stream is closed, mimicking a
// reader stuck on slow or hung media.
type stallingReader struct {
	once   sync.Once
	closed chan struct{}
}

func newStallingReader() *stallingReader {
	return &stallingReader{closed: make(chan struct{})}
}

func (r *stallingReader) Read([]byte) (int, error) {
	<-r.closed
	return 0, io.ErrClosedPipe
}

func (r *stallingReader) Close() error {
	r.once.Do(func() { close(r.closed) })
	return nil
}

func TestCountWithDeadline_CompletesInTime(t *testing.T) {
	rc := io.NopCloser(strings.NewReader("a\nb\nc\n"))

	got, err := annotate.CountWithDeadline(rc, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 3, got)
}

func TestCountWithDeadline_StalledReadTimesOut(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rc := newStallingReader()

		start := time.Now()
		_, err := annotate.CountWithDeadline(rc, 100*time.Millisecond)

		require.ErrorIs(t, err, domain.ErrReadTimeout)
		assert.Equal(t, 100*time.Millisecond, time.Since(start))
	})
}
