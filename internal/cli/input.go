package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

type line struct {
	text string
	err  error
}

// startLineReader scans r on its own goroutine so prompts can be abandoned
// when ctx is cancelled. The final value carries io.EOF or the scan error.
func startLineReader(ctx context.Context, r io.Reader) <-chan line {
	ch := make(chan line)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case ch <- line{text: scanner.Text()}:
			case <-ctx.Done():
				return
			}
		}
		err := scanner.Err()
		if err == nil {
			err = io.EOF
		}
		select {
		case ch <- line{err: err}:
		case <-ctx.Done():
		}
	}()
	return ch
}

// prompt writes msg and waits for the next input line.
func (s *Session) prompt(ctx context.Context, msg string) (string, error) {
	fmt.Fprint(s.out, msg)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-s.lines:
		if !ok {
			return "", io.EOF
		}
		return l.text, l.err
	}
}
