// Package filter provides the per-pixel arithmetic of the unsharp mask.
//
// This package contains the two pixel functions every execution backend
// maps over an image grid:
//   - Box average over a square window with edge replication
//   - Weighted combination of two images with saturation to [0, 255]
//
// Both functions operate on interleaved 8-bit buffers with a caller-supplied
// channel count. Only the first three channels take part in the arithmetic;
// any further channel (alpha, padding) is copied through untouched.
//
// The functions do not validate their arguments. Callers check radius,
// dimensions and buffer lengths once per pass, not once per pixel.
package filter
