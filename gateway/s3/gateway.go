// Package s3 provides a gateway persisting tags as S3 object tags,
// suitable for sources that already live in object storage.
//
// S3 object tagging is restrictive: at most ten tags per object, limited
// key and value lengths and a narrow character set, and no multi-valued
// tags. Multi-valued tags are joined with "+" on write and split on read;
// updates that do not fit the S3 rules are rejected up front as a
// WriteError, so a failed write never applies partially.
package s3

import (
	"context"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/tags"

	"github.com/tagsfs/tagsfs/data"
	"github.com/tagsfs/tagsfs/gateway"
)

const (
	maxTags        = 10
	maxKeyLength   = 128
	maxValueLength = 256
	multiValueSep  = "+"
)

type S3Gateway struct {
	mu sync.RWMutex

	client     *minio.Client
	bucketName string
	prefix     string
}

func NewS3Gateway(endpoint, bucketName, prefix, accessKey, secretKey string, useSsl bool) (*S3Gateway, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSsl,
	})
	if err != nil {
		return nil, err
	}

	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &S3Gateway{
		client:     client,
		bucketName: bucketName,
		prefix:     prefix,
	}, nil
}

// Returns the identifier name defined for this gateway
func (*S3Gateway) Name() string {
	return "s3"
}

func (sg *S3Gateway) Open(ctx context.Context) error {
	exists, err := sg.client.BucketExists(ctx, sg.bucketName)
	if err != nil {
		return err
	}
	if !exists {
		return data.ErrNotExist
	}
	return nil
}

func (sg *S3Gateway) Close(ctx context.Context) error {
	return nil
}

func (sg *S3Gateway) object(fileID string) string {
	return sg.prefix + fileID
}

func (sg *S3Gateway) ReadTags(ctx context.Context, fileID string) (data.TagSet, error) {
	sg.mu.RLock()
	defer sg.mu.RUnlock()

	return sg.readLocked(ctx, fileID)
}

func (sg *S3Gateway) WriteTags(ctx context.Context, fileID string, update data.TagUpdateSet) error {
	sg.mu.Lock()
	defer sg.mu.Unlock()

	current, err := sg.readLocked(ctx, fileID)
	if err != nil {
		return err
	}

	merged := current.Apply(update)
	flat, writeErr := flatten(fileID, merged, update)
	if writeErr != nil {
		return writeErr
	}

	objectTags, err := tags.NewTags(flat, true)
	if err != nil {
		return &gateway.WriteError{
			FileID:   fileID,
			Rejected: update.Names(),
			Reason:   err,
		}
	}

	return sg.client.PutObjectTagging(ctx, sg.bucketName, sg.object(fileID), objectTags, minio.PutObjectTaggingOptions{})
}

func (sg *S3Gateway) readLocked(ctx context.Context, fileID string) (data.TagSet, error) {
	objectTags, err := sg.client.GetObjectTagging(ctx, sg.bucketName, sg.object(fileID), minio.GetObjectTaggingOptions{})
	if err != nil {
		return nil, err
	}

	result := data.TagSet{}
	for name, joined := range objectTags.ToMap() {
		result[name] = strings.Split(joined, multiValueSep)
	}
	return result, nil
}

// flatten joins multi-values and validates the merged set against the S3
// tagging rules, attributing violations to the tags the update touched.
func flatten(fileID string, merged data.TagSet, update data.TagUpdateSet) (map[string]string, *gateway.WriteError) {
	if len(merged) > maxTags {
		return nil, &gateway.WriteError{
			FileID:   fileID,
			Rejected: update.Names(),
			Reason:   data.ErrInvalid,
		}
	}

	flat := make(map[string]string, len(merged))
	var rejected []string

	for name, values := range merged {
		// A value containing the separator would read back split apart.
		lossy := false
		for _, value := range values {
			if strings.Contains(value, multiValueSep) {
				lossy = true
				break
			}
		}

		joined := strings.Join(values, multiValueSep)
		if lossy || len(name) > maxKeyLength || len(joined) > maxValueLength || !validTagText(name) || !validTagText(joined) {
			rejected = append(rejected, name)
			continue
		}
		flat[name] = joined
	}

	if len(rejected) > 0 {
		return nil, &gateway.WriteError{
			FileID:   fileID,
			Rejected: rejected,
			Reason:   data.ErrInvalid,
		}
	}
	return flat, nil
}

// validTagText checks the S3 tag character set: letters, digits, space
// and + - = . _ : / @.
func validTagText(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case strings.ContainsRune(" +-=._:/@", r):
		default:
			return false
		}
	}
	return true
}

func (sg *S3Gateway) DeleteTags(ctx context.Context, fileID string) error {
	sg.mu.Lock()
	defer sg.mu.Unlock()

	return sg.client.RemoveObjectTagging(ctx, sg.bucketName, sg.object(fileID), minio.RemoveObjectTaggingOptions{})
}

func (sg *S3Gateway) ListIDs(ctx context.Context) ([]string, error) {
	sg.mu.RLock()
	defer sg.mu.RUnlock()

	var ids []string
	for object := range sg.client.ListObjects(ctx, sg.bucketName, minio.ListObjectsOptions{
		Prefix:    sg.prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, object.Err
		}
		ids = append(ids, strings.TrimPrefix(object.Key, sg.prefix))
	}
	return ids, nil
}
