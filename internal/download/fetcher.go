package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"encoderkit/internal/config"
)

const defaultS3Endpoint = "s3.amazonaws.com"

// Fetcher opens a download source for reading.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error)
}

// HTTPFetcher downloads http and https sources.
type HTTPFetcher struct {
	Client *http.Client
}

// Fetch issues a GET request and returns the response body on HTTP 200.
func (f HTTPFetcher) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	client := f.Client
	if client == nil {
		client = &http.Client{Transport: newTransport()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// S3Fetcher downloads s3://bucket/key sources with minio-go. The client is
// created on first use.
type S3Fetcher struct {
	cfg config.S3

	once   sync.Once
	client *minio.Client
	err    error
}

// NewS3Fetcher returns a fetcher using the given endpoint and credentials.
func NewS3Fetcher(cfg config.S3) *S3Fetcher {
	return &S3Fetcher{cfg: cfg}
}

// Fetch opens the object named by rawURL. The object is stat'ed up front so
// missing keys and auth failures surface here rather than on first read.
func (f *S3Fetcher) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	bucket, key, err := ParseS3URL(rawURL)
	if err != nil {
		return nil, err
	}
	client, err := f.minioClient()
	if err != nil {
		return nil, err
	}
	obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s/%s: %w", bucket, key, err)
	}
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("stat object %s/%s: %w", bucket, key, err)
	}
	return obj, nil
}

func (f *S3Fetcher) minioClient() (*minio.Client, error) {
	f.once.Do(func() {
		endpoint := strings.TrimSpace(f.cfg.Endpoint)
		if endpoint == "" {
			endpoint = defaultS3Endpoint
		}
		var creds *credentials.Credentials
		if f.cfg.AccessKey != "" || f.cfg.SecretKey != "" {
			creds = credentials.NewStaticV4(f.cfg.AccessKey, f.cfg.SecretKey, "")
		} else {
			creds = credentials.NewStatic("", "", "", credentials.SignatureAnonymous)
		}
		f.client, f.err = minio.New(endpoint, &minio.Options{
			Creds:     creds,
			Secure:    f.cfg.UseSSL,
			Region:    f.cfg.Region,
			Transport: newTransport(),
		})
		if f.err != nil {
			f.err = fmt.Errorf("create s3 client: %w", f.err)
		}
	})
	return f.client, f.err
}

// ParseS3URL splits s3://bucket/key into its bucket and object key.
func ParseS3URL(rawURL string) (string, string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("parse s3 url: %w", err)
	}
	if parsed.Scheme != "s3" {
		return "", "", fmt.Errorf("parse s3 url: unexpected scheme %q", parsed.Scheme)
	}
	bucket := parsed.Host
	key := strings.TrimPrefix(parsed.Path, "/")
	if bucket == "" || key == "" {
		return "", "", errors.New("parse s3 url: bucket and key required")
	}
	return bucket, key, nil
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
