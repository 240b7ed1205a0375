// Package session runs one interactive joke session: fetch a joke, show it,
// ask for feedback and store it.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"joke-cli/internal/display"
	"joke-cli/internal/joke"
	"joke-cli/internal/storage"
)

const (
	ratingPrompt  = "\nHow would you rate this joke? (1-5, or 's' to skip): "
	commentPrompt = "Any comments? (optional, press Enter to skip): "
)

// JokeSource produces jokes; *generator.Generator in production.
type JokeSource interface {
	Generate(ctx context.Context, category joke.Category) (joke.Joke, error)
}

type Options struct {
	// Feedback enables the rating and comment prompts.
	Feedback bool
	// MaxRatingPrompts caps how often an invalid rating is re-prompted
	// before the rating is recorded as skipped. Zero means no cap.
	MaxRatingPrompts int
}

type Controller struct {
	source  JokeSource
	store   storage.Recorder
	in      *bufio.Reader
	printer *display.Printer
	out     io.Writer
	logger  *zap.Logger
	opts    Options

	now func() time.Time
}

func New(source JokeSource, store storage.Recorder, in io.Reader, out io.Writer, logger *zap.Logger, opts Options) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		source:  source,
		store:   store,
		in:      bufio.NewReader(in),
		printer: display.New(out),
		out:     out,
		logger:  logger,
		opts:    opts,
		now:     time.Now,
	}
}

// Result describes what a session did.
type Result struct {
	Joke joke.Joke
	// Record is the feedback that was built, nil when feedback was disabled.
	Record *storage.Record
	// Saved is false when the record could not be written.
	Saved bool
}

// Run executes the session. A generation failure is returned as is and no
// record is written. A failure to store feedback is only reported as a warning.
func (c *Controller) Run(ctx context.Context, category joke.Category) (*Result, error) {
	j, err := c.source.Generate(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("generate joke: %w", err)
	}

	c.printer.Joke(j)
	res := &Result{Joke: j}
	if !c.opts.Feedback {
		return res, nil
	}

	rating, comment, err := c.collectFeedback(ctx)
	if err != nil {
		return res, err
	}

	rec := storage.Record{
		Timestamp: c.now(),
		Category:  j.Category,
		Rating:    rating,
		Comment:   comment,
		JokeID:    j.ID,
		JokeText:  j.Text,
	}
	res.Record = &rec

	if err := c.store.Append(rec); err != nil {
		c.logger.Warn("failed to store feedback", zap.Error(err))
		c.printer.Warning("could not save your feedback: " + err.Error())
		return res, nil
	}
	res.Saved = true
	if rating != nil {
		c.printer.Thanks()
	}
	return res, nil
}

// collectFeedback asks for a rating and then a comment. EOF ends prompting
// and leaves the remaining answers empty.
func (c *Controller) collectFeedback(ctx context.Context) (*int, *string, error) {
	var rating *int
	invalid := 0
	for {
		fmt.Fprint(c.out, ratingPrompt)
		line, err := c.readLine(ctx)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(c.out, "\nFeedback skipped.")
			return nil, nil, nil
		}
		if err != nil {
			return nil, nil, err
		}

		r, skip, ok := parseRating(line)
		if skip {
			break
		}
		if ok {
			rating = &r
			break
		}

		invalid++
		c.logger.Debug("invalid rating", zap.String("input", line), zap.Int("count", invalid))
		fmt.Fprintf(c.out, "❌ Invalid rating %q. Please enter a number from 1 to 5, or 's' to skip.\n", line)
		if c.opts.MaxRatingPrompts > 0 && invalid >= c.opts.MaxRatingPrompts {
			fmt.Fprintln(c.out, "Too many invalid ratings, skipping the rating.")
			break
		}
	}

	fmt.Fprint(c.out, commentPrompt)
	line, err := c.readLine(ctx)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, err
	}
	if line == "" {
		return rating, nil, nil
	}
	return rating, &line, nil
}

// parseRating accepts 1-5 or s/skip, case-insensitively.
func parseRating(s string) (rating int, skip bool, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "s" || s == "skip" {
		return 0, true, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 5 {
		return 0, false, false
	}
	return n, false, true
}

type lineResult struct {
	line string
	err  error
}

// readLine returns one trimmed line. A final line without a newline is
// returned before io.EOF. The read is abandoned when ctx is cancelled.
func (c *Controller) readLine(ctx context.Context) (string, error) {
	ch := make(chan lineResult, 1)
	go func() {
		line, err := c.in.ReadString('\n')
		if errors.Is(err, io.EOF) && line != "" {
			err = nil
		}
		ch <- lineResult{line: strings.TrimSpace(line), err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.line, r.err
	}
}
