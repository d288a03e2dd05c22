package requestlog

import (
	"bufio"
	"bytes"
	"net"
	"net/http"
)

// maxCapturedBody bounds the response bytes retained for logging. Anything
// beyond it is still written to the client but not captured; the sanitizer's
// abridgement bounds the logged form further.
const maxCapturedBody = 64 * 1024

// bodyRecorder tees response writes into a bounded buffer so the response
// body can be routed through the same decode/abridge/mask pipeline as the
// request body.
type bodyRecorder struct {
	http.ResponseWriter
	buf bytes.Buffer
}

func newBodyRecorder(w http.ResponseWriter) *bodyRecorder {
	return &bodyRecorder{ResponseWriter: w}
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	if remaining := maxCapturedBody - r.buf.Len(); remaining > 0 {
		if len(b) <= remaining {
			r.buf.Write(b)
		} else {
			r.buf.Write(b[:remaining])
		}
	}
	return r.ResponseWriter.Write(b)
}

func (r *bodyRecorder) Body() []byte {
	return r.buf.Bytes()
}

func (r *bodyRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *bodyRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return r.ResponseWriter.(http.Hijacker).Hijack()
}
