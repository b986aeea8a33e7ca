// Package fake provides logging helpers for the tests of the packages that
// accept a zerolog logger.
package fake

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a buffer safe to write from several goroutines.
type syncBuffer struct {
	sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.Lock()
	defer b.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.Lock()
	defer b.Unlock()

	return b.buf.String()
}

// WaitLog returns a logger and a wait function. The function blocks until the
// message is printed by the logger, or fails the test after the timeout.
func WaitLog(msg string, timeout time.Duration) (zerolog.Logger, func(t *testing.T)) {
	buffer := new(syncBuffer)
	pattern := fmt.Sprintf(`"%s"`, msg)

	wait := func(t *testing.T) {
		require.Eventually(t, func() bool {
			return strings.Contains(buffer.String(), pattern)
		}, timeout, 10*time.Millisecond, "log not found in %s", buffer.String())
	}

	return zerolog.New(buffer), wait
}

// CheckLog returns a logger and a check function. When called, the function
// will verify if the logger has seen the message printed.
func CheckLog(msg string) (zerolog.Logger, func(t *testing.T)) {
	buffer := new(syncBuffer)

	check := func(t *testing.T) {
		require.Contains(t, buffer.String(), fmt.Sprintf(`"%s"`, msg))
	}

	return zerolog.New(buffer), check
}
