// Package audio plays synthesized 16-bit PCM through the host's audio
// device using oto/v3. Audio is held in memory for the duration of one
// utterance and never written to disk.
package audio
