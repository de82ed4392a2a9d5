package render

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/pkg/term"
	"github.com/rs/zerolog/log"
)

const escapeKey = 0x1b

// KeyDismisser waits for ESC on the terminal at path, usually /dev/tty.
// The terminal is put in raw mode with a short read timeout so that ctx
// is honored between reads.
func KeyDismisser(path string) Dismisser {
	return func(ctx context.Context) error {
		tt, err := term.Open(path, term.RawMode)
		if err != nil {
			return err
		}
		defer func() {
			tt.Restore()
			tt.Close()
		}()
		if err := tt.SetOption(term.ReadTimeout(100 * time.Millisecond)); err != nil {
			return err
		}
		log.Debug().Str("tty", path).Msg("KeyDismisser: waiting for ESC")
		return waitForKey(ctx, tt, escapeKey)
	}
}

// waitForKey reads r until key arrives. A zero-byte read is a timeout.
func waitForKey(ctx context.Context, r io.Reader, key byte) error {
	buf := make([]byte, 64)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if bytes.IndexByte(buf[:n], key) >= 0 {
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	}
}
