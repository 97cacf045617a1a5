// Package docstore persists long-lived coaching documents (goal docs and the
// coach doc) as versioned S3 objects. Each write creates a new timestamped
// object under the document's prefix; reads return the newest version.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3API is the minimal S3 surface the store needs. *s3.Client satisfies it.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ErrNotFound is returned by GetLatest when the prefix holds no documents.
var ErrNotFound = errors.New("docstore: no document found")

// Doc is one stored document version.
type Doc struct {
	Key   string
	Title string
	Body  string
}

// Store reads and writes markdown documents in a single bucket.
type Store struct {
	api    s3API
	bucket string
	now    func() time.Time
}

// New creates a Store over the given bucket.
func New(api s3API, bucket string) (*Store, error) {
	if api == nil {
		return nil, errors.New("docstore: api must not be nil")
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("docstore: bucket must not be empty")
	}
	return &Store{api: api, bucket: bucket, now: time.Now}, nil
}

// Put writes a new version of the document under prefix and returns its key.
// The title is slugged into the key so versions stay human-readable in the
// bucket listing.
func (s *Store) Put(ctx context.Context, prefix, title, body string) (string, error) {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return "", errors.New("docstore: prefix must not be empty")
	}
	if strings.TrimSpace(body) == "" {
		return "", errors.New("docstore: body must not be empty")
	}

	key := fmt.Sprintf("%s/%s-%s.md", prefix, s.now().UTC().Format("20060102T150405Z"), slug(title))
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(body),
		ContentType: aws.String("text/markdown"),
		Metadata:    map[string]string{"title": title},
	})
	if err != nil {
		return "", fmt.Errorf("docstore: put %s: %w", key, err)
	}
	return key, nil
}

// GetLatest returns the most recently written document under prefix, or
// ErrNotFound when none exists.
func (s *Store) GetLatest(ctx context.Context, prefix string) (Doc, error) {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return Doc{}, errors.New("docstore: prefix must not be empty")
	}

	var (
		latestKey string
		latestAt  time.Time
		token     *string
	)
	for {
		out, err := s.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix + "/"),
			ContinuationToken: token,
		})
		if err != nil {
			return Doc{}, fmt.Errorf("docstore: list %s: %w", prefix, err)
		}
		for _, obj := range out.Contents {
			if obj.Key == nil || obj.LastModified == nil {
				continue
			}
			if obj.LastModified.After(latestAt) {
				latestAt = *obj.LastModified
				latestKey = *obj.Key
			}
		}
		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		token = out.NextContinuationToken
	}
	if latestKey == "" {
		return Doc{}, ErrNotFound
	}
	return s.get(ctx, latestKey)
}

func (s *Store) get(ctx context.Context, key string) (Doc, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return Doc{}, fmt.Errorf("docstore: get %s: %w", key, err)
	}
	defer func() { _ = out.Body.Close() }()

	buf, err := io.ReadAll(out.Body)
	if err != nil {
		return Doc{}, fmt.Errorf("docstore: read %s: %w", key, err)
	}
	return Doc{Key: key, Title: out.Metadata["title"], Body: string(buf)}, nil
}

// slug reduces a title to a lowercase hyphenated key fragment.
func slug(title string) string {
	var b strings.Builder
	prevHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen && b.Len() > 0 {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "untitled"
	}
	return out
}
