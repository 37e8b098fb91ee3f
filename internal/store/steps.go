package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ibeckermayer/sentiview/internal/config"
)

// StepName names a pipeline step whose output is snapshotted.
type StepName string

const (
	StepFetched  StepName = "fetched"
	StepLabeled  StepName = "labeled"
	StepExported StepName = "exported"
	StepSummary  StepName = "summary"
)

// Snapshots keeps timestamped copies of each step's output, one directory
// per step. The zero value writes under <cache dir>/steps.
type Snapshots struct {
	Root string
}

func (sn Snapshots) dir(step StepName) (string, error) {
	if sn.Root != "" {
		return filepath.Join(sn.Root, string(step)), nil
	}
	cacheDir, err := config.CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "steps", string(step)), nil
}

// snapshotLayout is fixed width so names sort chronologically.
const snapshotLayout = "2006-01-02T15-04-05.000000000Z"

// snapshotName is the UTC time plus a random suffix so that writes in the
// same instant never collide.
func snapshotName(at time.Time, ext string) string {
	return at.UTC().Format(snapshotLayout) + "-" + uuid.NewString()[:8] + ext
}

// write stores data as a new file in step's directory.
func (sn Snapshots) write(step StepName, ext string, data []byte) (string, error) {
	dir, err := sn.dir(step)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create %s snapshot dir: %w", step, err)
	}

	path := filepath.Join(dir, snapshotName(time.Now(), ext))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write %s snapshot: %w", step, err)
	}
	return path, nil
}

// SaveStepOutput snapshots data as indented JSON and returns the file path.
func SaveStepOutput[T any](sn Snapshots, step StepName, data T) (string, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal %s snapshot: %w", step, err)
	}
	return sn.write(step, ".json", b)
}

// SaveTextOutput snapshots text content, such as a plain-text report body.
func SaveTextOutput(sn Snapshots, step StepName, content, ext string) (string, error) {
	return sn.write(step, ext, []byte(content))
}

// LoadLatestStepOutput decodes the newest JSON snapshot of step and returns
// it with its path.
func LoadLatestStepOutput[T any](sn Snapshots, step StepName) (T, string, error) {
	var out T

	path, err := sn.LatestStepFile(step, ".json")
	if err != nil {
		return out, "", err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return out, "", fmt.Errorf("read %s snapshot: %w", step, err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, "", fmt.Errorf("decode %s snapshot %s: %w", step, filepath.Base(path), err)
	}
	return out, path, nil
}

// LatestStepFile returns the newest snapshot of step with the given
// extension.
func (sn Snapshots) LatestStepFile(step StepName, ext string) (string, error) {
	dir, err := sn.dir(step)
	if err != nil {
		return "", err
	}

	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return "", err
	}

	// ReadDir sorts by name, which is chronological, so walk backwards
	for _, e := range slices.Backward(entries) {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ext) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("no %s snapshot for step %s", ext, step)
}
