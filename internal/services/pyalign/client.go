package pyalign

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"loom/internal/services"
	"loom/internal/textgrid"
	"loom/internal/timeline"
)

// DefaultBinary is the aligner executable resolved from PATH when the
// configuration does not name one.
const DefaultBinary = "pyalign"

// Tier names the aligner writes into its output TextGrid.
const (
	PhoneTier = "phone"
	WordTier  = "word"
)

// Request describes a single aligner invocation: align the transcript
// against audio channel Channel between T1 and T2 and write the result to
// OutPath.
type Request struct {
	AudioPath      string
	TranscriptPath string
	OutPath        string
	T1             float64
	T2             float64
	Channel        int
}

// Result carries the two tiers parsed from the aligner's output.
type Result struct {
	Phone *timeline.Tier
	Word  *timeline.Tier
}

// Aligner defines the behaviour the alignment driver requires.
type Aligner interface {
	Align(ctx context.Context, req Request) (Result, error)
}

// Executor abstracts command execution for testability. Run returns the
// combined output so failures can quote what the tool said.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (string, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithOutputEncoding sets the encoding used to read the aligner's output
// TextGrid. Defaults to UTF-8.
func WithOutputEncoding(name string) Option {
	return func(c *Client) {
		c.outputEncoding = strings.TrimSpace(name)
	}
}

// Client wraps aligner CLI interactions.
type Client struct {
	binary         string
	timeout        time.Duration
	outputEncoding string
	exec           Executor
}

// New constructs an aligner client. timeoutSeconds bounds each invocation;
// zero means no limit.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("aligner binary required")
	}
	client := &Client{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Align runs the aligner for one segment and parses its output tiers.
func (c *Client) Align(ctx context.Context, req Request) (Result, error) {
	if err := validateRequest(req); err != nil {
		return Result{}, services.Wrap(services.ErrValidation, "pyalign", "align", err.Error(), nil)
	}
	channel := req.Channel
	if channel <= 0 {
		channel = 1
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{
		"-b", timeline.FormatTime(req.T1),
		"-e", timeline.FormatTime(req.T2),
		"-c", strconv.Itoa(channel),
		req.AudioPath,
		req.TranscriptPath,
		req.OutPath,
	}
	output, err := c.exec.Run(runCtx, c.binary, args)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return Result{}, services.Wrap(services.ErrTimeout, "pyalign", "align",
				fmt.Sprintf("%s exceeded %s", c.binary, c.timeout), err)
		}
		detail := fmt.Sprintf("%s %s", c.binary, strings.Join(args, " "))
		if tail := outputTail(output, 4); tail != "" {
			detail += ": " + tail
		}
		return Result{}, services.Wrap(services.ErrExternalTool, "pyalign", "align", detail, err)
	}

	file, err := textgrid.ReadFile(req.OutPath, c.outputEncoding)
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "pyalign", "parse output", req.OutPath, err)
	}
	result := Result{Phone: file.Tier(PhoneTier), Word: file.Tier(WordTier)}
	if result.Phone == nil || result.Word == nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "pyalign", "parse output",
			fmt.Sprintf("%s is missing the %q or %q tier (has %s)", req.OutPath, PhoneTier, WordTier, strings.Join(file.TierNames(), ", ")), nil)
	}
	return result, nil
}

func validateRequest(req Request) error {
	switch {
	case strings.TrimSpace(req.AudioPath) == "":
		return errors.New("audio path required")
	case strings.TrimSpace(req.TranscriptPath) == "":
		return errors.New("transcript path required")
	case strings.TrimSpace(req.OutPath) == "":
		return errors.New("output path required")
	case req.T2 < req.T1:
		return fmt.Errorf("segment window [%s, %s] ends before it starts", timeline.FormatTime(req.T1), timeline.FormatTime(req.T2))
	}
	return nil
}

// outputTail returns the last n non-blank lines of tool output, joined with
// "; " so it fits a single log line.
func outputTail(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	kept := make([]string, 0, n)
	for i := len(lines) - 1; i >= 0 && len(kept) < n; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		kept = append(kept, line)
	}
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return strings.Join(kept, "; ")
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	out, err := cmd.CombinedOutput()
	return string(out), err
}
