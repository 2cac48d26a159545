package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	cos "github.com/tencentyun/cos-go-sdk-v5"
)

type cosStore struct {
	cli *cos.Client
}

func openCOS(c Config) (Store, error) {
	var bucketURL *url.URL
	if c.Endpoint != "" {
		u, err := url.Parse(c.Endpoint)
		if err != nil {
			return nil, err
		}
		// if host does not contain the bucket, use path-style
		if !strings.Contains(u.Host, c.Bucket) && !strings.HasSuffix(u.Path, "/"+c.Bucket) {
			u.Path = "/" + c.Bucket
		}
		bucketURL = u
	} else {
		u, err := url.Parse(fmt.Sprintf("https://%s.cos.%s.myqcloud.com", c.Bucket, c.Region))
		if err != nil {
			return nil, err
		}
		bucketURL = u
	}
	b := &cos.BaseURL{BucketURL: bucketURL}
	cli := cos.NewClient(b, &http.Client{Transport: &cos.AuthorizationTransport{SecretID: c.AccessKey, SecretKey: c.SecretKey}})
	return &cosStore{cli: cli}, nil
}

func (s *cosStore) Put(ctx context.Context, key string, r io.Reader, _ int64, contentType string) error {
	opt := &cos.ObjectPutOptions{}
	if contentType != "" {
		opt.ObjectPutHeaderOptions = &cos.ObjectPutHeaderOptions{ContentType: contentType}
	}
	_, err := s.cli.Object.Put(ctx, sanitizeKey(key), r, opt)
	return err
}

func (s *cosStore) Exists(ctx context.Context, key string) (bool, error) {
	return s.cli.Object.IsExist(ctx, sanitizeKey(key))
}

func (s *cosStore) Delete(ctx context.Context, key string) error {
	_, err := s.cli.Object.Delete(ctx, sanitizeKey(key))
	if cos.IsNotFoundError(err) {
		return nil
	}
	return err
}

func (s *cosStore) Close() error { return nil }
