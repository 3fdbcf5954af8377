// Package conv provides safe integer type conversion utilities.
//
// Codes are stored one byte per slot, so centroid indices are narrowed
// through IntToUint8 rather than a bare cast that would wrap silently.
package conv
