package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"thirdcoast.systems/fetchbox/internal/fetcherr"
	"thirdcoast.systems/fetchbox/pkg/curl"
	"thirdcoast.systems/fetchbox/pkg/ytdlp"
)

// RetryMessage is shown when the extractor was refused with HTTP 403.
const RetryMessage = "A temporary error (403 Forbidden) occurred. Please try the download again."

// Only the end of the extractor's stderr reaches the user.
const (
	stderrTailLines = 10
	stderrTailBytes = 2048
)

// classify maps an executor failure onto the error taxonomy.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fetcherr.Wrap(fetcherr.ErrFatal, "Download was cancelled.", err)
	}

	var ye *ytdlp.ExecError
	if errors.As(err, &ye) {
		switch {
		case !ye.Started() && ye.ExitCode == 0:
			return fetcherr.Wrap(fetcherr.ErrFatal, fmt.Sprintf("yt-dlp could not be started: %v", ye.Cause), err)
		case ye.Forbidden():
			return fetcherr.Wrap(fetcherr.ErrRetryable, RetryMessage, err)
		}
		return fetcherr.Wrap(fetcherr.ErrFatal, fmt.Sprintf("yt-dlp exited with code %d. Stderr: %s", ye.ExitCode, stderrTail(ye.Stderr)), err)
	}

	var ce *curl.ExecError
	if errors.As(err, &ce) {
		return fetcherr.Wrap(fetcherr.ErrFatal, ce.Error(), err)
	}

	return fetcherr.Wrap(fetcherr.ErrFatal, err.Error(), err)
}

func stderrTail(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	if len(lines) > stderrTailLines {
		lines = lines[len(lines)-stderrTailLines:]
	}
	tail := strings.Join(lines, "\n")
	if len(tail) > stderrTailBytes {
		tail = tail[len(tail)-stderrTailBytes:]
		// drop the partial first line
		if i := strings.IndexByte(tail, '\n'); i >= 0 && i < len(tail)-1 {
			tail = tail[i+1:]
		}
		tail = strings.ToValidUTF8(tail, "")
	}
	return tail
}
