package journal

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"investiq/internal/logger"
	"investiq/internal/types"
)

// Entry is one journal line.
type Entry struct {
	Time      string          `json:"time"`
	RequestID string          `json:"request_id,omitempty"`
	Source    string          `json:"source"`
	Decision  *types.Decision `json:"decision"`
}

// Journal appends completed decisions to daily JSONL files under
// <dir>/decisions. Nothing reads them back; it is an audit trail.
type Journal struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

func New(dir string) *Journal {
	if dir == "" {
		dir = "logs"
	}
	return &Journal{dir: dir, now: time.Now}
}

// Path returns the file holding entries written at t (UTC date).
func (j *Journal) Path(t time.Time) string {
	return filepath.Join(j.dir, "decisions", t.UTC().Format("2006-01-02")+".jsonl")
}

// Record appends d tagged with its source (cli or api) and the request id in ctx.
func (j *Journal) Record(ctx context.Context, source string, d *types.Decision) error {
	if d == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now().UTC()
	p := j.Path(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := json.Marshal(Entry{
		Time:      now.Format(time.RFC3339),
		RequestID: logger.RequestID(ctx),
		Source:    source,
		Decision:  d,
	})
	if err != nil {
		return fmt.Errorf("failed to encode journal entry for %s: %w", d.Symbol, err)
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips journal files last modified more than retentionDays
// ago and returns how many were compressed.
func (j *Journal) CompressOlder(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	root := filepath.Join(j.dir, "decisions")
	cutoff := j.now().AddDate(0, 0, -retentionDays)
	compressed := 0

	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || filepath.Ext(p) != ".jsonl" {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		if err := gzipFile(p); err != nil {
			return nil
		}
		compressed++
		return nil
	})
	return compressed, err
}

// gzipFile replaces p with p.gz. An existing archive wins and the original
// is removed.
func gzipFile(p string) error {
	gz := p + ".gz"
	if _, err := os.Stat(gz); err == nil {
		return os.Remove(p)
	}

	in, err := os.Open(p)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		_ = gw.Close()
		_ = out.Close()
		_ = os.Remove(gz)
		return err
	}
	if err := gw.Close(); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(p)
}
