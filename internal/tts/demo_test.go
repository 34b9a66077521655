package tts

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/operavondervollmer/speaks/internal/audio"
	"github.com/operavondervollmer/speaks/internal/tts/engines"
)

func TestDemo_ChangeVoice(t *testing.T) {
	c := newFakeConsole("Y", "abc", "9", "0", "3")
	rig := newTestRig(t, func(o *Options) { o.Console = c })

	if err := rig.speech.Demo(context.Background()); err != nil {
		t.Fatalf("Demo failed: %v", err)
	}

	for _, v := range engines.DefaultMockVoices {
		if c.count("Name: "+v.Name) != 1 {
			t.Errorf("Expected 'Name: %s' line", v.Name)
		}
	}
	if n := c.count("Invalid input. Please enter a valid voice index."); n != 3 {
		t.Errorf("Expected 3 invalid input lines, got %d", n)
	}
	if c.count("1 -> Alpha") == 0 || c.count("3 -> Charlie") == 0 {
		t.Errorf("Expected voice listing, got %v", c.lines)
	}
	if c.count("SUCCESS: Demo voice completed") != 1 {
		t.Error("Expected success line")
	}

	// one sample per voice plus the confirmation, synchronous on the device
	calls := rig.sink.Calls()
	if len(calls) != 4 {
		t.Fatalf("Expected 4 plays, got %d", len(calls))
	}
	for _, call := range calls {
		if call.DeviceIndex != 4 {
			t.Errorf("demo played on device %d, want 4", call.DeviceIndex)
		}
	}

	renders := rig.backend.Renders()
	if last := renders[len(renders)-1]; last.Text != SelectedText || last.Voice != "mock/charlie" {
		t.Errorf("confirmation render = %+v", last)
	}

	// later renders keep the selected voice
	rig.speech.Say(context.Background(), "afterwards")
	renders = rig.backend.Renders()
	if v := renders[len(renders)-1].Voice; v != "mock/charlie" {
		t.Errorf("Say after Demo used %q, want mock/charlie", v)
	}
	if rig.speech.Voice() != 2 {
		t.Errorf("Voice() = %d, want 2", rig.speech.Voice())
	}
}

func TestDemo_KeepVoice(t *testing.T) {
	c := newFakeConsole("n")
	rig := newTestRig(t, func(o *Options) { o.Console = c })

	if err := rig.speech.Demo(context.Background()); err != nil {
		t.Fatalf("Demo failed: %v", err)
	}

	renders := rig.backend.Renders()
	wantVoices := []string{"mock/alpha", "mock/bravo", "mock/charlie", "mock/bravo"}
	for i, r := range renders {
		if r.Voice != wantVoices[i] {
			t.Errorf("render %d voice = %q, want %q", i, r.Voice, wantVoices[i])
		}
	}
	for i := 0; i < 3; i++ {
		if renders[i].Text != DemoText {
			t.Errorf("render %d text = %q", i, renders[i].Text)
		}
	}
	for _, p := range c.prompts {
		if strings.Contains(p, "select a voice") {
			t.Error("Should not ask for an index when the answer is no")
		}
	}
}

func TestDemo_InputEOF(t *testing.T) {
	rig := newTestRig(t, func(o *Options) { o.Console = newFakeConsole("y") })

	err := rig.speech.Demo(context.Background())
	if !errors.Is(err, io.EOF) {
		t.Errorf("Expected io.EOF, got %v", err)
	}
	if rig.speech.Voice() != 1 {
		t.Errorf("Voice should be restored to 1, got %d", rig.speech.Voice())
	}
}

func TestDemo_RefusedWhileWorkerRuns(t *testing.T) {
	rig := newTestRig(t, func(o *Options) { o.Console = newFakeConsole("n") })
	rig.sink.Delay = 50 * time.Millisecond

	rig.speech.Say(context.Background(), "queued speech")
	rig.speech.Start()

	if err := rig.speech.Demo(context.Background()); !errors.Is(err, ErrPlaybackBusy) {
		t.Errorf("Expected ErrPlaybackBusy, got %v", err)
	}
	rig.wait(t)

	if n := rig.sink.CallCount(); n != 1 {
		t.Errorf("Demo should not play while the worker runs, got %d plays", n)
	}
	if peak := rig.sink.PeakConcurrency(); peak != 1 {
		t.Errorf("Expected at most one playback in flight, peak was %d", peak)
	}
	if rig.speech.Voice() != 1 {
		t.Errorf("Voice changed to %d", rig.speech.Voice())
	}
}

func TestDemo_StartIgnoredDuringDemo(t *testing.T) {
	rig := newTestRig(t, func(o *Options) { o.Console = newFakeConsole("n") })
	rig.sink.OnPlay = func(audio.PlayCall) { rig.speech.Start() }

	if err := rig.speech.Demo(context.Background()); err != nil {
		t.Fatalf("Demo failed: %v", err)
	}
	if rig.speech.worker.Running() {
		t.Error("Worker should not start while Demo holds the device")
	}
	if peak := rig.sink.PeakConcurrency(); peak != 1 {
		t.Errorf("peak concurrency = %d", peak)
	}

	// the reservation ends with Demo
	rig.sink.OnPlay = nil
	rig.speech.Start()
	if !rig.speech.worker.Running() {
		t.Error("Start should work after Demo")
	}
}

func TestDemo_CanceledRestoresVoice(t *testing.T) {
	rig := newTestRig(t, func(o *Options) { o.Console = newFakeConsole("y", "3") })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rig.sink.OnPlay = func(audio.PlayCall) { cancel() }

	if err := rig.speech.Demo(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if n := rig.sink.CallCount(); n != 1 {
		t.Errorf("Expected the demo to stop after one sample, got %d", n)
	}
	if rig.speech.Voice() != 1 {
		t.Errorf("Voice should be restored to 1, got %d", rig.speech.Voice())
	}

	renders := rig.backend.Renders()
	rig.speech.Say(context.Background(), "after cancel")
	if v := rig.backend.Renders()[len(renders)].Voice; v != "mock/bravo" {
		t.Errorf("render after cancel used %q, want mock/bravo", v)
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"1", 1, true},
		{" 3 ", 3, true},
		{"0", 0, false},
		{"4", 0, false},
		{"-1", 0, false},
		{"+2", 0, false},
		{"2.0", 0, false},
		{"", 0, false},
		{"two", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseChoice(tt.input, 3)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("parseChoice(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}
