package engines

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/operavondervollmer/speaks/internal/wav"
)

const espeakVoicesOutput = `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 5  en-gb           --/M      English_(Great_Britain) gmw/en            (en 2)
 2  en-us           --/M      English_(America)  gmw/en-US            (en 3)
 5  de              --/M      German             gmw/de
`

func TestParseEspeakVoices(t *testing.T) {
	voices := parseEspeakVoices([]byte(espeakVoicesOutput))

	want := []Voice{
		{ID: "gmw/af", Name: "Afrikaans", Language: "af"},
		{ID: "gmw/en", Name: "English (Great Britain)", Language: "en-gb"},
		{ID: "gmw/en-US", Name: "English (America)", Language: "en-us"},
		{ID: "gmw/de", Name: "German", Language: "de"},
	}

	if len(voices) != len(want) {
		t.Fatalf("Expected %d voices, got %d: %+v", len(want), len(voices), voices)
	}
	for i := range want {
		if voices[i] != want[i] {
			t.Errorf("voices[%d] = %+v, want %+v", i, voices[i], want[i])
		}
	}
}

func TestParseEspeakVoicesEmpty(t *testing.T) {
	voices := parseEspeakVoices([]byte("Pty Language Age/Gender VoiceName File Other Languages\n"))
	if voices == nil || len(voices) != 0 {
		t.Errorf("Expected empty non-nil list, got %#v", voices)
	}
}

func TestEspeakBackend_FakeBinary(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")

	script := writeScript(t, "espeak-ng", `if [ "$1" = "--voices" ]; then
cat <<'EOF'
`+espeakVoicesOutput+`EOF
exit 0
fi
echo "$@" > `+argsFile+`
cat > /dev/null
`)

	e, err := NewEspeakBackend(EspeakConfig{Binary: script})
	if err != nil {
		t.Fatalf("NewEspeakBackend failed: %v", err)
	}
	if e.Name() != "espeak" {
		t.Errorf("Name() = %q", e.Name())
	}

	voices, err := e.Voices(context.Background())
	if err != nil {
		t.Fatalf("Voices failed: %v", err)
	}
	if len(voices) != 4 {
		t.Fatalf("Expected 4 voices, got %d", len(voices))
	}

	if err := e.SetVoice("gmw/nope"); !errors.Is(err, ErrVoiceNotFound) {
		t.Errorf("Expected ErrVoiceNotFound, got %v", err)
	}
	if err := e.SetVoice("gmw/de"); err != nil {
		t.Fatalf("SetVoice failed: %v", err)
	}

	out := filepath.Join(dir, "out.wav")
	if err := e.Render(context.Background(), "Hallo", out); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	args, _ := os.ReadFile(argsFile)
	want := "-v gmw/de -w " + out + " --stdin"
	if strings.TrimSpace(string(args)) != want {
		t.Errorf("args = %q, want %q", strings.TrimSpace(string(args)), want)
	}
}

// TestEspeakBackend_Real renders with an installed espeak-ng.
func TestEspeakBackend_Real(t *testing.T) {
	if _, err := exec.LookPath("espeak-ng"); err != nil {
		t.Skip("Skipping test: espeak-ng not installed")
	}

	e, err := NewEspeakBackend(EspeakConfig{})
	if err != nil {
		t.Fatalf("NewEspeakBackend failed: %v", err)
	}

	voices, err := e.Voices(context.Background())
	if err != nil || len(voices) == 0 {
		t.Fatalf("Voices() = %d voices, err %v", len(voices), err)
	}

	out := filepath.Join(t.TempDir(), "out.wav")
	if err := e.Render(context.Background(), "Hello world", out); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	audio, err := wav.DecodeFile(out)
	if err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}
	if audio.Frames() == 0 {
		t.Error("Expected rendered audio")
	}
}
