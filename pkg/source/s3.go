package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/eunmann/sas7bdat/pkg/logging"
)

// ObjectAPI is the subset of the S3 client used for ranged reads.
type ObjectAPI interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Client wraps an S3 client.
type Client struct {
	api ObjectAPI
	s3  *s3.Client
}

// NewClient creates a client from the default AWS configuration chain.
func NewClient(ctx context.Context) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewClientWithConfig(cfg), nil
}

// NewClientWithConfig creates a client with a custom AWS config.
func NewClientWithConfig(cfg aws.Config) *Client {
	c := s3.NewFromConfig(cfg)
	return &Client{api: c, s3: c}
}

// NewClientWithAPI creates a client over any ObjectAPI. Such a client can
// only serve ranged reads.
func NewClientWithAPI(api ObjectAPI) *Client {
	return &Client{api: api}
}

// Object returns a Source that reads s3://bucket/key with ranged GETs.
// The context is used for every read.
func (c *Client) Object(ctx context.Context, bucket, key string) (*Object, error) {
	head, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("head object s3://%s/%s: %w", bucket, key, err)
	}
	return &Object{
		ctx:    ctx,
		api:    c.api,
		bucket: bucket,
		key:    key,
		size:   aws.ToInt64(head.ContentLength),
	}, nil
}

// Object is a Source over one S3 object.
type Object struct {
	ctx    context.Context
	api    ObjectAPI
	bucket string
	key    string
	size   int64
}

func (o *Object) ReadAt(p []byte, off int64) (int, error) {
	if off >= o.size {
		return 0, io.EOF
	}
	end := min(off+int64(len(p)), o.size)
	resp, err := o.api.GetObject(o.ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", off, end-1)),
	})
	if err != nil {
		return 0, fmt.Errorf("get object s3://%s/%s range %d-%d: %w", o.bucket, o.key, off, end-1, err)
	}
	defer resp.Body.Close()

	n, err := io.ReadFull(resp.Body, p[:end-off])
	if err != nil {
		return n, fmt.Errorf("read object s3://%s/%s: %w", o.bucket, o.key, err)
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (o *Object) Size() int64 { return o.size }

func (o *Object) Name() string { return "s3://" + o.bucket + "/" + o.key }

func (o *Object) Close() error { return nil }

// DownloaderConfig configures the S3 download manager.
type DownloaderConfig struct {
	// Concurrency is the number of parts downloaded in parallel.
	// Default: NumCPU clamped to [4, 16].
	Concurrency int
	// PartSize is the size of each part in bytes. Default: 16MB.
	PartSize int64
}

// DefaultDownloaderConfig returns defaults based on the current machine.
func DefaultDownloaderConfig() DownloaderConfig {
	return DownloaderConfig{
		Concurrency: min(max(runtime.NumCPU(), 4), 16),
		PartSize:    16 * 1024 * 1024,
	}
}

// Downloader fetches whole objects to temp files.
type Downloader struct {
	manager *manager.Downloader
	config  DownloaderConfig
	tempDir string
}

// NewDownloader creates a Downloader. c must have been created from an AWS
// config.
func NewDownloader(c *Client, cfg DownloaderConfig, tempDir string) *Downloader {
	def := DefaultDownloaderConfig()
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.PartSize <= 0 {
		cfg.PartSize = def.PartSize
	}
	mgr := manager.NewDownloader(c.s3, func(d *manager.Downloader) {
		d.Concurrency = cfg.Concurrency
		d.PartSize = cfg.PartSize
		d.BufferProvider = manager.NewPooledBufferedWriterReadFromProvider(int(cfg.PartSize))
	})
	return &Downloader{manager: mgr, config: cfg, tempDir: tempDir}
}

// Download fetches s3://bucket/key to a temp file that is removed when the
// returned Source is closed.
func (d *Downloader) Download(ctx context.Context, bucket, key string) (*File, error) {
	start := time.Now()
	tmp, err := os.CreateTemp(d.tempDir, "sas7bdat-s3-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	n, err := d.manager.Download(ctx, tmp, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("download s3://%s/%s: %w", bucket, key, err)
	}

	logging.PhaseComplete(logging.WithPhase("s3_download"), "s3_download", time.Since(start)).
		Str("object", "s3://"+bucket+"/"+key).
		Bytes("bytes", n).
		Int("concurrency", d.config.Concurrency).
		Throughput(n).
		LogDebug("object downloaded")

	return &File{f: tmp, size: n, name: "s3://" + bucket + "/" + key, remove: true}, nil
}
