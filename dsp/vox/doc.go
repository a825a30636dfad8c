// Package vox composes the powered-armor voice chain:
//
//	pitch -> static EQ -> bitcrusher -> ring mod -> echo -> bass shelf ->
//	compressor -> output stage
//
// The chain runs at a locked 96 kHz. Controls are read from a [param.Store]
// once per control period, and only stages whose controls changed are
// reconfigured. When the host reports any other sample rate the output stage
// mutes while every stage keeps running.
package vox
