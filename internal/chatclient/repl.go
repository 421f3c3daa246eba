package chatclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/travel-assistant/internal/domain"
)

// Chatter is the subset of Client the REPL needs.
type Chatter interface {
	Send(ctx context.Context, sessionID, message string) (domain.TurnResult, error)
	Reset(ctx context.Context, sessionID string) error
}

const unreachable = "Error: Could not connect to server. Is it running?"

// REPL reads lines from in and prints the assistant's replies to out until
// the user types "quit", input ends, or ctx is cancelled. Cancellation is
// reported as ctx.Err().
func REPL(ctx context.Context, c Chatter, sessionID string, in io.Reader, out io.Writer) error {
	fmt.Fprint(out, "\nTravel Assistant\nType your questions, 'reset' to start over, or 'quit' to exit.\n\n")

	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()
	lines, readErr := readLines(readCtx, in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(out, "You: ")

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return <-readErr
			}
			line = strings.TrimSpace(l)
		}

		switch strings.ToLower(line) {
		case "":
			continue
		case "quit":
			fmt.Fprint(out, "\nGoodbye!\n\n")
			return nil
		case "reset":
			if err := c.Reset(ctx, sessionID); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				fmt.Fprintf(out, "\n%s\n\n", describe(err))
				continue
			}
			fmt.Fprint(out, "\n[Conversation reset]\n\n")
			continue
		}

		result, err := c.Send(ctx, sessionID, line)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(out, "\nAssistant: %s\n\n", describe(err))
			continue
		}
		fmt.Fprintf(out, "\nAssistant: %s\n\n", result.Reply)
	}
}

// readLines scans in on its own goroutine so a blocked read does not keep
// REPL from noticing cancellation. The error channel receives exactly one
// value once lines is closed.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}

func describe(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return unreachable
}
