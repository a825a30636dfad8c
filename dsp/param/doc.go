// Package param holds the control parameters of the vox chain.
//
// Each parameter is stored in its own atomic word, so a writer on a control
// thread never tears a value read by the audio thread. Out-of-range writes
// are clamped and snapped to the parameter's step or choice list.
package param
