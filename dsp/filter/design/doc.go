// Package design provides RBJ-style biquad coefficient designers for the
// vox EQ: a Butterworth-Q high-pass and low-pass and a peaking filter
// parameterized by centre frequency and bandwidth in Hz.
//
// Designers never fail. Out-of-range inputs yield the identity section so a
// misconfigured stage passes audio unchanged.
package design
