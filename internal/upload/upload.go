// Package upload streams finished exports to S3.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/rs/zerolog"
)

// ErrNoBucket is returned by [NewS3] and [New] when the bucket name is empty.
var ErrNoBucket = errors.New("no bucket configured")

// Options configures the S3 session built by [NewS3].
type Options struct {
	Region   string
	Endpoint string
	// PathStyle addresses buckets by path instead of by host name.
	PathStyle bool
}

// S3 uploads readers to one bucket. The body is read in parts, so an
// export is never held in memory as a whole.
type S3 struct {
	api    s3manageriface.UploaderAPI
	bucket string
}

// NewS3 returns an uploader for bucket using the default credential chain.
func NewS3(bucket string, opts Options) (*S3, error) {
	cfg := &aws.Config{Region: aws.String(opts.Region)}
	if opts.Endpoint != "" {
		cfg.Endpoint = aws.String(opts.Endpoint)
	}
	if opts.PathStyle {
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("error making new session: %w", err)
	}
	return New(s3manager.NewUploader(sess), bucket)
}

// New returns an uploader that sends to bucket through api.
func New(api s3manageriface.UploaderAPI, bucket string) (*S3, error) {
	if bucket == "" {
		return nil, ErrNoBucket
	}
	return &S3{api: api, bucket: bucket}, nil
}

// Upload writes body to key and returns the object location.
func (u *S3) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	logger := zerolog.Ctx(ctx)
	start := time.Now()
	out, err := u.api.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("error uploading to s3: %w", err)
	}
	d := time.Since(start)
	logger.Debug().Str("bucket", u.bucket).Str("key", key).Dur("duration", d).Msg("uploaded export to s3")
	return out.Location, nil
}
