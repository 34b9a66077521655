// Package engines contains the synthesis backends. Each one renders text
// to a WAV file on disk: espeak-ng and Piper run as subprocesses, the
// mock backend synthesizes a tone for tests.
package engines
