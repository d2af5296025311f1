// Package s3 stores hit files and results in Amazon S3.
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("runs/2024-06/"),
//	    s3.WithRegion("us-east-1"),
//	)
//	blob, err := store.Open(ctx, "hits.domtblout.zst")
//
// Blobs are read with ranged GETs and written through multipart uploads
// carrying CRC32C checksums and a content type derived from the name.
package s3
