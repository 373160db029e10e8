package dictbuild

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// Metrics counts what a build has done so far.
type Metrics struct {
	Prefixes   int `json:"prefixes_processed"`
	Candidates int `json:"candidates_generated"`
	Reviewed   int `json:"words_reviewed"`
	Accepted   int `json:"words_accepted"`
	Rejected   int `json:"words_rejected"`
	Invalid    int `json:"entries_invalid"`
}

// Progress is the resumable state of a build.
type Progress struct {
	SavedAt        time.Time `json:"saved_at"`
	Model          string    `json:"model_used"`
	TargetLanguage string    `json:"target_language"`
	Mode           string    `json:"mode"`
	Batch          int       `json:"batch"`
	Completed      []string  `json:"completed_prefixes"`
	Failed         []string  `json:"failed_prefixes"`
	Entries        []Entry   `json:"words"`
	Metrics        Metrics   `json:"metrics"`
}

// LoadProgress reads the progress file at path, falling back to its .bak
// copy when the main file is unreadable. A missing file yields an empty
// Progress.
func LoadProgress(path string) (Progress, error) {
	p, err := readProgress(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if bak, bakErr := readProgress(path + ".bak"); bakErr == nil {
		return bak, nil
	}
	return Progress{}, err
}

func readProgress(path string) (Progress, error) {
	var p Progress
	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return Progress{}, fmt.Errorf("decode progress %s: %w", path, err)
	}
	return p, nil
}

// SaveProgress writes p to path. The previous file is kept as path.bak.
func SaveProgress(path string, p Progress) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write progress: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".bak"); err != nil {
			return fmt.Errorf("back up progress: %w", err)
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace progress: %w", err)
	}
	return nil
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

func remove(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
