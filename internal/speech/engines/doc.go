// Package engines implements speech.Engine on top of the host's
// out-of-process synthesizers (espeak-ng and piper) plus a deterministic
// mock. Each engine runs one utterance at a time and reports back on its
// Events channel.
package engines
