package annotate

import (
	"bytes"
	"io"
	"time"

	"go.trai.ch/tally/internal/core/domain"
	"go.trai.ch/zerr"
)

const countBufferSize = 32 * 1024

// countLines counts line terminators in r, adding one trailing line when
// the stream ends with content after the last terminator. An empty stream
// has zero lines.
func countLines(r io.Reader) (int, error) {
	buf := make([]byte, countBufferSize)
	lines := 0
	trailing := false

	for {
		n, err := r.Read(buf)
		if n > 0 {
			lines += bytes.Count(buf[:n], []byte{'\n'})
			trailing = buf[n-1] != '\n'
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}

	if trailing {
		lines++
	}
	return lines, nil
}

// countWithDeadline counts lines from rc, forcibly closing the stream if it
// does not finish within timeout. Closing unblocks a stalled Read, which
// then surfaces as domain.ErrReadTimeout. A count that completed before the
// timer fired is returned even if the timer races the final Read.
func countWithDeadline(rc io.ReadCloser, timeout time.Duration) (int, error) {
	timer := time.AfterFunc(timeout, func() {
		_ = rc.Close()
	})

	lines, err := countLines(rc)

	expired := !timer.Stop()
	_ = rc.Close()

	if err != nil {
		if expired {
			return 0, zerr.With(zerr.Wrap(domain.ErrReadTimeout, "stream did not finish in time"), "after", timeout.String())
		}
		return 0, err
	}
	return lines, nil
}
