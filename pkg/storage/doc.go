// Package storage provides the S3-compatible object store adapter used by the gateway.
//
// The adapter never moves file content itself. It mints presigned URLs for
// uploads and downloads, checks object existence, walks listings page by page
// and deletes keys.
//
// # Basic Usage
//
//	store, err := storage.New(ctx, storage.Config{
//		Bucket:    "shared-files",
//		Region:    "eu-central-1",
//		AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
//		SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// One-hour upload grant
//	url, err := store.PresignPut(ctx, "user-1/report.pdf",
//		storage.WithExpiry(time.Hour),
//	)
//
//	// Download grant with Content-Disposition: attachment
//	url, err := store.PresignGet(ctx, "user-1/report.pdf",
//		storage.WithDownload("report.pdf"),
//	)
//
// Leave AccessKey and SecretKey empty to use the default AWS credential chain.
//
// # Permissions
//
// The credentials need s3:PutObject, s3:GetObject and s3:DeleteObject on the
// objects and s3:ListBucket on the bucket. Without s3:ListBucket, S3 answers
// HeadObject for an absent key with 403 instead of 404, so Exists reports
// ErrAccessDenied rather than (false, nil) and missing files surface as
// backend failures.
//
// # Listing
//
// Walk follows every ListObjectsV2 page:
//
//	var total int64
//	err := store.Walk(ctx, "", func(obj storage.Object) error {
//		total += obj.Size
//		return nil
//	})
//
// Pass WithDelimiter("/") to see only direct children of the prefix.
//
// # Errors
//
// SDK errors are normalized to sentinel errors; use errors.Is:
//
//	if errors.Is(err, storage.ErrAccessDenied) {
//		// credentials lack permission
//	}
package storage
