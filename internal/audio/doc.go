// Package audio plays decoded utterances on an output device. Indexed
// devices are driven through PortAudio; the system default device uses
// oto/v3. Both block until the last sample has been handed to the device.
package audio
