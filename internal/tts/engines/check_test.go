package engines

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckEspeak(t *testing.T) {
	script := writeScript(t, "espeak-ng", "exit 0\n")

	found := CheckEspeak(EspeakConfig{Binary: script})
	if !found.Usable() || found.Parts[0].Path != script {
		t.Errorf("explicit binary not reported: %+v", found)
	}

	missing := CheckEspeak(EspeakConfig{Binary: filepath.Join(t.TempDir(), "nope")})
	if missing.Usable() {
		t.Error("Missing binary reported as usable")
	}
	if missing.Parts[0].Instructions == "" {
		t.Error("Expected install instructions")
	}
}

func TestCheckPiper(t *testing.T) {
	script := writeScript(t, "piper", "exit 0\n")
	dir := t.TempDir()

	noModels := CheckPiper(PiperConfig{Binary: script, ModelDirs: []string{dir}})
	if noModels.Usable() {
		t.Error("Piper without models reported as usable")
	}
	if !noModels.Parts[0].Found || noModels.Parts[1].Found {
		t.Errorf("parts = %+v", noModels.Parts)
	}

	for _, name := range []string{"en_US-amy-medium.onnx", "de_DE-thorsten-low.onnx"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("model"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	ready := CheckPiper(PiperConfig{Binary: script, ModelDirs: []string{dir}})
	if !ready.Usable() {
		t.Fatalf("Expected usable piper, got %+v", ready.Parts)
	}
	models := ready.Parts[1]
	if models.Path != dir || models.Detail != "2 models found" {
		t.Errorf("models = %+v", models)
	}
}

func TestCheck_UsableNeedsParts(t *testing.T) {
	if (Check{Backend: "none"}).Usable() {
		t.Error("A check without parts is not usable")
	}
}
