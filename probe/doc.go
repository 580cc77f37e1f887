// Package probe derives durations from audio payloads.
//
// The catalog only consults a Prober at create time, when the caller did not
// supply a duration. Probe failure rejects the record; it never degrades to a
// guessed value.
package probe
