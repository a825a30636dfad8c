// Package dither provides triangular (TPDF) dither and word-length reduction
// to 16, 20 or 24 bits.
//
// The triangular noise is the difference of two uniform streams drawn from
// different generator algorithms with different seeds, so the two streams can
// never coincide and cancel.
package dither
