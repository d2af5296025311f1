// Package minio stores hit files and results on MinIO and other
// S3-compatible servers (Ceph, Garage, SeaweedFS) without the AWS SDK.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds: credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	})
//	if err != nil { ... }
//	store := minioblob.NewStore(client, "searches", minioblob.WithPrefix("runs/"))
//	blob, err := store.Open(ctx, "hits.domtblout")
//
// The location package opens minio://host:port/bucket/key URLs through New,
// which reads credentials from the environment.
package minio
