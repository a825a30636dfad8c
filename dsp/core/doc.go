// Package core holds small numeric helpers and processor configuration
// shared by every stage of the vox chain.
package core
