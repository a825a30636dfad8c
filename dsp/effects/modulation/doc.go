// Package modulation provides the vox chain's ring modulator.
package modulation
