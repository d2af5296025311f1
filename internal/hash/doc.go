// Package hash computes CRC32-Castagnoli checksums for uploaded blobs.
//
// S3 accepts a CRC32C of the object body as a base64 encoded big-endian
// value; CRC32CBase64 produces that form.
package hash
