// Package kmeans implements k-means clustering for codebook training.
//
// Used internally by the product quantizer to learn one codebook per slot.
// Seeding is k-means++ driven by a caller-supplied random source, so a fixed
// seed reproduces the same centroids for the same input.
package kmeans
