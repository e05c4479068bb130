package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
)

// writer writes JSON values as lines to zstd compressed files, starting a new file every hour. A writer is used by a
// single goroutine only.
type writer struct {
	dir, prefix string
	now         func() time.Time

	hour string
	f    *os.File
	enc  *zstd.Encoder
	w    *bufio.Writer
}

func (w *writer) write(v any) error {
	hour := w.now().UTC().Format("2006-01-02-15")
	if hour != w.hour {
		if err := w.rotate(hour); err != nil {
			return err
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// flush flushes buffered lines to the encoder.
func (w *writer) flush() error {
	if w.w == nil {
		return nil
	}
	return w.w.Flush()
}

func (w *writer) rotate(hour string) error {
	if err := w.close(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.path(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f, w.enc, w.w, w.hour = f, enc, bufio.NewWriterSize(enc, 128*1024), hour
	return nil
}

func (w *writer) close() error {
	var err error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w, w.hour = nil, ""
	return err
}

func (w *writer) path(hour string) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}
