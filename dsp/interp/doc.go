// Package interp provides the 4-point cubic Hermite kernel used for
// fractional reads from a delay line.
package interp
