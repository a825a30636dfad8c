// Package level measures the time-domain level of rendered audio: RMS,
// peak, crest factor and the dominant frequency.
package level
