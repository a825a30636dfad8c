// Package biquad provides the second-order IIR runtime used by the vox EQ.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. [Chain] cascades sections
// and can swap coefficients without clearing state, so control changes do
// not click. Coefficient design lives in dsp/filter/design.
package biquad
