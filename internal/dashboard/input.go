package dashboard

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

type lineResult struct {
	line string
	err  error
}

// lineReader scans lines on a background goroutine so a read can be abandoned
// when its context ends. It scans only when asked, so nothing else reading the
// same input (a terminal password prompt) competes with it.
type lineReader struct {
	scanner *bufio.Scanner
	req     chan struct{}
	res     chan lineResult
	started bool
	pending bool
}

func newLineReader(in io.Reader) *lineReader {
	return &lineReader{
		scanner: bufio.NewScanner(in),
		req:     make(chan struct{}),
		res:     make(chan lineResult, 1),
	}
}

func (r *lineReader) loop() {
	for range r.req {
		if r.scanner.Scan() {
			r.res <- lineResult{line: strings.TrimSpace(r.scanner.Text())}
			continue
		}
		err := io.EOF
		if serr := r.scanner.Err(); serr != nil {
			err = fmt.Errorf("read input: %w", serr)
		}
		r.res <- lineResult{err: err}
	}
}

// read returns the next line without surrounding whitespace, io.EOF once the
// input is exhausted, or ctx.Err() if ctx ends first. A line that arrives
// after a cancelled read is returned by the next read.
func (r *lineReader) read(ctx context.Context) (string, error) {
	if !r.started {
		r.started = true
		go r.loop()
	}
	if !r.pending {
		r.req <- struct{}{}
		r.pending = true
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-r.res:
		r.pending = false
		return res.line, res.err
	}
}

// close stops the scanning goroutine once its current read, if any, ends.
func (r *lineReader) close() {
	if r.started {
		close(r.req)
		r.started = false
	}
}
