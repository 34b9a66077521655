package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// SpeakerFileName is the JSON document holding the speaker selection.
const SpeakerFileName = "config_speaker.json"

const selectedSpeakerKey = "selected_speaker"

// Selection is an output device: its index and display name. An index
// of -1 plays on the system default device.
type Selection struct {
	Index int
	Name  string
}

// NoSpeaker is selected when there is no output device.
var NoSpeaker = Selection{Index: -1, Name: "None"}

// SpeakerFile is the persisted speaker selection. Keys other than
// selected_speaker are kept when it is written back.
type SpeakerFile struct {
	path string
	data map[string]json.RawMessage
}

// DefaultSpeakerDir returns the directory of the running executable.
func DefaultSpeakerDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("unable to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// LoadSpeakerFile reads config_speaker.json from dir. A missing file
// yields an empty document; dir defaults to DefaultSpeakerDir.
func LoadSpeakerFile(dir string) (*SpeakerFile, error) {
	if dir == "" {
		d, err := DefaultSpeakerDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	f := &SpeakerFile{
		path: filepath.Join(dir, SpeakerFileName),
		data: make(map[string]json.RawMessage),
	}

	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read speaker file: %w", err)
	}
	if len(b) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(b, &f.data); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", f.path, err)
	}
	return f, nil
}

// Path returns the file location.
func (f *SpeakerFile) Path() string {
	return f.path
}

// Selected returns the stored selection. ok is false when the key is
// missing or malformed.
func (f *SpeakerFile) Selected() (sel Selection, ok bool) {
	raw, exists := f.data[selectedSpeakerKey]
	if !exists {
		return Selection{}, false
	}

	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
		return Selection{}, false
	}

	index, ok := decodeIndex(pair[0])
	if !ok {
		return Selection{}, false
	}
	var name string
	if err := json.Unmarshal(pair[1], &name); err != nil {
		return Selection{}, false
	}
	return Selection{Index: index, Name: name}, true
}

// decodeIndex accepts a number or a numeric string.
func decodeIndex(raw json.RawMessage) (int, bool) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SetSelected stores sel. Call Save to persist it.
func (f *SpeakerFile) SetSelected(sel Selection) {
	b, _ := json.Marshal([]any{sel.Index, sel.Name})
	f.data[selectedSpeakerKey] = b
}

// Save writes the document, creating its directory when needed.
func (f *SpeakerFile) Save() error {
	b, err := json.MarshalIndent(f.data, "", "    ")
	if err != nil {
		return fmt.Errorf("unable to encode speaker file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil { //nolint:gosec
		return fmt.Errorf("unable to create directory: %w", err)
	}
	if err := os.WriteFile(f.path, append(b, '\n'), 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("unable to write speaker file: %w", err)
	}
	return nil
}
