package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"adapterd/internal/common/fsutil"
	"adapterd/pkg/types"
)

// Scanner discovers adapter checkpoints under a directory.
type Scanner interface {
	Scan(dir string) ([]types.Checkpoint, error)
}

// checkpointScanner recognises:
//   - single-file adapters: *.gguf or *.bin (ID is the name without extension)
//   - checkpoint directories holding adapter_config.json or adapter_model.*
//   - training output directories whose checkpoint-N subdirectories hold
//     adapters; the highest N wins and the ID is the outer directory name.
type checkpointScanner struct{}

// NewCheckpointScanner returns the default Scanner.
func NewCheckpointScanner() Scanner { return checkpointScanner{} }

func (checkpointScanner) Scan(dir string) ([]types.Checkpoint, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var out []types.Checkpoint
	for _, e := range entries {
		p := filepath.Join(abs, e.Name())
		if !e.IsDir() {
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if ext != ".gguf" && ext != ".bin" {
				continue
			}
			id := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
			out = append(out, types.Checkpoint{ID: id, Path: p, SizeMB: fsutil.SizeMB(p)})
			continue
		}
		if isAdapterDir(p) {
			out = append(out, types.Checkpoint{ID: e.Name(), Path: p, SizeMB: fsutil.SizeMB(p)})
			continue
		}
		if latest := latestCheckpoint(p); latest != "" {
			out = append(out, types.Checkpoint{ID: e.Name(), Path: latest, SizeMB: fsutil.SizeMB(latest)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// LoadDir scans dir with the default scanner.
func LoadDir(dir string) ([]types.Checkpoint, error) {
	return NewCheckpointScanner().Scan(dir)
}

func isAdapterDir(dir string) bool {
	if fsutil.PathExists(filepath.Join(dir, "adapter_config.json")) {
		return true
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "adapter_model.*"))
	return len(matches) > 0
}

// latestCheckpoint returns the checkpoint-N subdirectory of dir with the
// highest N that holds an adapter, or "".
func latestCheckpoint(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	best, bestN := "", -1
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "checkpoint-") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(e.Name(), "checkpoint-"))
		if err != nil || n <= bestN {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if isAdapterDir(p) {
			best, bestN = p, n
		}
	}
	return best
}
