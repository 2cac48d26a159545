package media

import (
	"context"
	"io"
	"os"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// blobStore serves the s3, file and mem drivers through the portable gocloud bucket.
type blobStore struct {
	bk *blob.Bucket
}

func openS3(ctx context.Context, c Config) (Store, error) {
	bk, err := blob.OpenBucket(ctx, buildS3URL(c))
	if err != nil {
		return nil, err
	}
	return &blobStore{bk: bk}, nil
}

func openFile(c Config) (Store, error) {
	if err := os.MkdirAll(c.BaseDir, 0o755); err != nil {
		return nil, err
	}
	bk, err := fileblob.OpenBucket(c.BaseDir, nil)
	if err != nil {
		return nil, err
	}
	return &blobStore{bk: bk}, nil
}

func openMem() Store {
	return &blobStore{bk: memblob.OpenBucket(nil)}
}

// Put writes r under key. A failed copy aborts the write, leaving no partial object.
func (s *blobStore) Put(ctx context.Context, key string, r io.Reader, _ int64, contentType string) error {
	key = sanitizeKey(key)
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := s.bk.NewWriter(wctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		// gocloud discards the write when its context is canceled before Close.
		cancel()
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (s *blobStore) Exists(ctx context.Context, key string) (bool, error) {
	return s.bk.Exists(ctx, sanitizeKey(key))
}

// Delete removes key. A missing object is not an error.
func (s *blobStore) Delete(ctx context.Context, key string) error {
	err := s.bk.Delete(ctx, sanitizeKey(key))
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil
	}
	return err
}

func (s *blobStore) Close() error {
	return s.bk.Close()
}
