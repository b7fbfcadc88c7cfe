// Package speech provides the utterance lifecycle controller that keeps a
// single host synthesis engine and the UI's speaking state consistent.
package speech
