package orchestrator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// PromptConfirmer asks on w and reads answers line by line from r. It
// accepts y, yes, n and no in any case and asks again on anything else.
// End of input counts as no.
type PromptConfirmer struct {
	r io.Reader
	w io.Writer

	once      sync.Once
	lines     chan line
	done      chan struct{}
	closeOnce sync.Once
}

type line struct {
	text string
	err  error
}

// NewPromptConfirmer returns a PromptConfirmer over r and w.
func NewPromptConfirmer(r io.Reader, w io.Writer) *PromptConfirmer {
	return &PromptConfirmer{r: r, w: w, done: make(chan struct{})}
}

// Close releases the background reader once it next returns from r. A read
// already blocked on r stays blocked until input arrives or r is closed.
func (c *PromptConfirmer) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

// start reads r in the background so a pending prompt can be abandoned
// when ctx is cancelled.
func (c *PromptConfirmer) start() {
	c.lines = make(chan line)
	go func() {
		reader := bufio.NewReader(c.r)
		for {
			text, err := reader.ReadString('\n')
			select {
			case c.lines <- line{text: text, err: err}:
			case <-c.done:
				return
			}
			if err != nil {
				close(c.lines)
				return
			}
		}
	}()
}

// Confirm implements Confirmer.
func (c *PromptConfirmer) Confirm(ctx context.Context, question string) (bool, error) {
	c.once.Do(c.start)
	for {
		fmt.Fprintf(c.w, "%s [y/n]: ", question)

		var l line
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.w)
			return false, ctx.Err()
		case <-c.done:
			return false, nil
		case l, ok = <-c.lines:
		}
		if !ok {
			fmt.Fprintln(c.w)
			return false, nil
		}

		switch answer := strings.ToLower(strings.TrimSpace(l.text)); answer {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			if l.err != nil {
				if errors.Is(l.err, io.EOF) {
					fmt.Fprintln(c.w)
					return false, nil
				}
				return false, fmt.Errorf("reading answer: %w", l.err)
			}
			fmt.Fprintf(c.w, "Please answer y or n.\n")
		}
	}
}
