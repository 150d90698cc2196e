package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// maxLineBytes bounds a single log line; anything longer aborts the read.
const maxLineBytes = 1024 * 1024

// followPoll is how often follow mode re-reads the file for new lines.
const followPoll = 250 * time.Millisecond

// TailOptions selects the log slice to read. A negative Offset means "the
// last Limit lines"; a non-negative Offset reads forward from that byte.
type TailOptions struct {
	Offset int64
	Limit  int
	Follow bool
	Wait   time.Duration
}

// TailResult carries the lines read and the cursor for the next call.
type TailResult struct {
	Lines  []string
	Offset int64
}

// Tail reads from the log file at path according to opts. A missing file is
// not an error; the cursor resets to zero so rotation restarts the stream.
func Tail(ctx context.Context, path string, opts TailOptions) (TailResult, error) {
	result := TailResult{Offset: opts.Offset}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Offset = 0
			return result, nil
		}
		return result, fmt.Errorf("inspect log file: %w", err)
	}
	if info.IsDir() {
		return result, fmt.Errorf("%q is a directory, not a log file", path)
	}

	var lines []string
	var cursor int64
	switch {
	case opts.Offset >= 0:
		lines, cursor, err = readFrom(path, min(opts.Offset, info.Size()))
	case opts.Limit <= 0:
		cursor = info.Size()
	default:
		lines, cursor, err = lastLines(path, opts.Limit)
	}
	if err != nil {
		return result, err
	}
	result.Lines = lines
	result.Offset = cursor

	if opts.Follow && len(lines) == 0 && opts.Wait > 0 {
		return followFrom(ctx, path, cursor, opts.Wait)
	}
	return result, nil
}

// scanFrom reads whole lines starting at offset, handing each to keep. It
// returns the file position after the last line read, or zero when the file
// does not exist.
func scanFrom(path string, offset int64, keep func(string)) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if offset > 0 {
		if _, err := file.Seek(offset, io.SeekStart); err != nil {
			return 0, fmt.Errorf("seek log file: %w", err)
		}
	}

	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		keep(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("read log file: %w", err)
	}

	pos, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("determine log offset: %w", err)
	}
	return pos, nil
}

func readFrom(path string, offset int64) ([]string, int64, error) {
	var lines []string
	next, err := scanFrom(path, offset, func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		return nil, 0, err
	}
	return lines, next, nil
}

// lastLines keeps the final limit lines in a fixed window while scanning the
// whole file, so memory stays bounded for large logs.
func lastLines(path string, limit int) ([]string, int64, error) {
	window := make([]string, limit)
	seen := 0
	next, err := scanFrom(path, 0, func(line string) {
		window[seen%limit] = line
		seen++
	})
	if err != nil {
		return nil, 0, err
	}

	n := min(seen, limit)
	lines := make([]string, 0, n)
	for i := seen - n; i < seen; i++ {
		lines = append(lines, window[i%limit])
	}
	return lines, next, nil
}

// followFrom polls for new lines until something arrives, wait elapses, or
// ctx is canceled. The returned offset reflects the most recent poll.
func followFrom(ctx context.Context, path string, offset int64, wait time.Duration) (TailResult, error) {
	result := TailResult{Offset: offset}
	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(followPoll)
	defer ticker.Stop()

	for {
		lines, next, err := readFrom(path, offset)
		if err != nil {
			return result, err
		}
		offset = next
		result.Offset = next
		if len(lines) > 0 {
			result.Lines = lines
			return result, nil
		}
		if time.Now().After(deadline) {
			return result, nil
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-ticker.C:
		}
	}
}
