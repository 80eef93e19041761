package logging

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nibzard/webnote/internal/todo"
	"github.com/nibzard/webnote/internal/utils"
)

// Entry is one line of the event journal.
type Entry struct {
	Time  time.Time `json:"time"`
	Run   string    `json:"run"`
	Op    todo.Op   `json:"op"`
	Task  todo.Task `json:"task"`
	Count int       `json:"count"`
}

// Journal appends one JSONL entry per changed transition. The file for the
// run is created on the first entry.
type Journal struct {
	Dir   string
	RunID string
	file  *os.File
	now   func() time.Time
}

// OpenJournal prepares a journal for the slot at location under baseDir.
func OpenJournal(baseDir, key, location string) (*Journal, error) {
	dir, err := JournalDir(baseDir, key, location)
	if err != nil {
		return nil, err
	}
	return &Journal{
		Dir:   dir,
		RunID: runID(),
		now:   time.Now,
	}, nil
}

// JournalDir returns the directory holding journals for one slot.
func JournalDir(baseDir, key, location string) (string, error) {
	if baseDir == "" {
		return "", fmt.Errorf("journal base dir is empty")
	}
	return filepath.Join(filepath.Clean(baseDir), slotSlug(key, location)), nil
}

// Path returns the journal file for this run.
func (j *Journal) Path() string {
	return filepath.Join(j.Dir, j.RunID+".jsonl")
}

// StateChanged appends the event.
func (j *Journal) StateChanged(_ context.Context, ev todo.Event) error {
	if j.file == nil {
		if err := os.MkdirAll(j.Dir, 0755); err != nil {
			return fmt.Errorf("create journal dir: %w", err)
		}
		f, err := os.OpenFile(j.Path(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		j.file = f
	}

	entry := Entry{
		Time:  j.now().UTC(),
		Run:   j.RunID,
		Op:    ev.Op,
		Task:  ev.Task,
		Count: len(ev.List),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}
	if _, err := j.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	return nil
}

// Close closes the journal file if one was opened.
func (j *Journal) Close() error {
	if j == nil || j.file == nil {
		return nil
	}
	return j.file.Close()
}

func slotSlug(key, location string) string {
	sum := sha1.Sum([]byte(location))
	return fmt.Sprintf("%s-%s", utils.Slugify(key, "slot"), hex.EncodeToString(sum[:])[:8])
}

func runID() string {
	return fmt.Sprintf("%s-%d", time.Now().UTC().Format("20060102-150405"), os.Getpid())
}

// FindLatestJournal returns the most recently modified journal in dir, or ""
// when there is none.
func FindLatestJournal(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read journal dir: %w", err)
	}

	var latest string
	var latestTime time.Time
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		// Names start with a UTC timestamp, so they break mod-time ties.
		if latest == "" || info.ModTime().After(latestTime) ||
			(info.ModTime().Equal(latestTime) && entry.Name() > filepath.Base(latest)) {
			latestTime = info.ModTime()
			latest = filepath.Join(dir, entry.Name())
		}
	}
	return latest, nil
}

// Tail writes the last n lines of path to w (all lines when n <= 0). With
// follow it keeps polling for appended lines until ctx is done.
func Tail(ctx context.Context, w io.Writer, path string, n int, follow bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	var lines []string
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			lines = append(lines, line)
			if n > 0 && len(lines) > n {
				lines = lines[1:]
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read journal: %w", err)
		}
	}
	for _, line := range lines {
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	if !follow {
		return nil
	}
	return tailFollow(ctx, w, reader)
}

func tailFollow(ctx context.Context, w io.Writer, reader *bufio.Reader) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		if _, err := io.Copy(w, reader); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
