package process

import (
	"bytes"
	"io"
	"sync"
)

// teeWriter fans child output to a capture buffer (always) and a live
// writer (best-effort). Once the live writer fails it is dropped and the
// child never sees an error, so a closed terminal cannot kill it with
// SIGPIPE.
type teeWriter struct {
	mu      sync.Mutex
	capture *bytes.Buffer
	live    io.Writer
	liveOK  bool
}

// newTeeWriter returns capture itself when there is no live writer.
func newTeeWriter(capture *bytes.Buffer, live io.Writer) io.Writer {
	if live == nil {
		return capture
	}
	return &teeWriter{capture: capture, live: live, liveOK: true}
}

func (tw *teeWriter) Write(p []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.capture.Write(p)
	if tw.liveOK {
		if _, err := tw.live.Write(p); err != nil {
			tw.liveOK = false
		}
	}
	return len(p), nil
}
