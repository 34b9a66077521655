package engines

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// Status reports whether one synthesis dependency is usable.
type Status struct {
	Name  string
	Found bool
	// Path is the resolved binary, or the first model directory with models.
	Path string
	// Detail is a short note such as the number of models found.
	Detail       string
	Instructions string
}

// Check is the availability of one backend and its parts.
type Check struct {
	Backend string
	Parts   []Status
}

// Usable reports whether every part of the backend was found.
func (c Check) Usable() bool {
	for _, p := range c.Parts {
		if !p.Found {
			return false
		}
	}
	return len(c.Parts) > 0
}

// CheckEspeak looks for the espeak-ng executable the way
// NewEspeakBackend does.
func CheckEspeak(config EspeakConfig) Check {
	status := Status{Name: "espeak-ng"}
	if path, err := findBinary(config.Binary, espeakNames, espeakFallbacks); err == nil {
		status.Found = true
		status.Path = path
	} else {
		status.Instructions = espeakInstructions()
	}
	return Check{Backend: "espeak", Parts: []Status{status}}
}

// CheckPiper looks for the piper executable and at least one .onnx model.
func CheckPiper(config PiperConfig) Check {
	binary := Status{Name: "piper"}
	if path, err := findBinary(config.Binary, piperNames, piperFallbacks); err == nil {
		binary.Found = true
		binary.Path = path
	} else {
		binary.Instructions = piperInstructions()
	}

	dirs := config.ModelDirs
	if len(dirs) == 0 {
		dirs = DefaultPiperModelDirs
	}
	models := Status{Name: "ONNX models"}
	if found := findPiperModels(dirs); len(found) > 0 {
		models.Found = true
		models.Path = modelRoot(found[0].ID, dirs)
		models.Detail = fmt.Sprintf("%d models found", len(found))
	} else {
		models.Instructions = "Download models from: https://github.com/rhasspy/piper/blob/master/VOICES.md\n" +
			"Place in: " + strings.Join(dirs, ", ")
	}

	return Check{Backend: "piper", Parts: []Status{binary, models}}
}

// modelRoot returns the configured directory holding path, or path itself.
func modelRoot(path string, dirs []string) string {
	for _, dir := range dirs {
		if expanded, err := homedir.Expand(dir); err == nil && strings.HasPrefix(path, expanded) {
			return dir
		}
	}
	return path
}

func espeakInstructions() string {
	switch runtime.GOOS {
	case "darwin":
		return "Install with: brew install espeak-ng"
	case "linux":
		return "Install with: sudo apt install espeak-ng\nOr your distribution's espeak-ng package"
	default:
		return "Download from: https://github.com/espeak-ng/espeak-ng/releases"
	}
}

func piperInstructions() string {
	switch runtime.GOOS {
	case "darwin":
		return "Install with: brew install piper-tts\nOr download from: https://github.com/rhasspy/piper/releases"
	default:
		return "Download from: https://github.com/rhasspy/piper/releases\nExtract and add to PATH"
	}
}
