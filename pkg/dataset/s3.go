package dataset

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectGetter is the subset of the S3 client used to read objects.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// s3Source reads s3://bucket/key URLs. The client is built on first use so
// deployments that never touch S3 do not need AWS credentials.
type s3Source struct {
	region string

	once    sync.Once
	client  ObjectGetter
	initErr error
}

func newS3Source(client ObjectGetter, region string) *s3Source {
	src := &s3Source{region: region, client: client}
	if client != nil {
		src.once.Do(func() {})
	}
	return src
}

func (s *s3Source) getter(ctx context.Context) (ObjectGetter, error) {
	s.once.Do(func() {
		var opts []func(*awsconfig.LoadOptions) error
		if s.region != "" {
			opts = append(opts, awsconfig.WithRegion(s.region))
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			s.initErr = fmt.Errorf("loading AWS config: %w", err)
			return
		}
		s.client = s3.NewFromConfig(cfg)
	})
	return s.client, s.initErr
}

func (s *s3Source) fetch(ctx context.Context, u *url.URL, limit int64) (*resource, error) {
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, &FetchError{URL: u.String(), Err: fmt.Errorf("s3 URL must be s3://bucket/key")}
	}

	client, err := s.getter(ctx)
	if err != nil {
		return nil, &FetchError{URL: u.String(), Err: err}
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, &FetchError{URL: u.String(), Err: err}
	}
	defer out.Body.Close()

	body, err := readCapped(out.Body, limit)
	if err != nil {
		return nil, &FetchError{URL: u.String(), Err: err}
	}

	return &resource{
		body:        body,
		contentType: strings.ToLower(aws.ToString(out.ContentType)),
		ext:         extension(u),
	}, nil
}
