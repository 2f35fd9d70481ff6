package s3

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
)

const (
	MaxUploadSize = 5 << 20
	uploadPrefix  = "uploads"
)

var allowedTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/jpg":       ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"application/pdf": ".pdf",
}

var (
	ErrUnsupportedType = types.NewValidation("unsupported file type, allowed: jpeg, png, gif, pdf")
	ErrTooLarge        = types.NewValidation("file exceeds the 5MB limit")
	ErrEmptyFile       = types.NewValidation("no file sent")
)

type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PublicURL string
}

// Storage keeps uploaded files in an S3 compatible bucket.
type Storage struct {
	client    s3iface.S3API
	bucket    string
	publicURL string
}

func New(cfg Config) (*Storage, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(cfg.Region),
		Endpoint:         aws.String(cfg.Endpoint),
		S3ForcePathStyle: aws.Bool(true),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 session: %w", err)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return NewWithClient(s3.New(sess), cfg.Bucket, publicURL), nil
}

func NewWithClient(client s3iface.S3API, bucket, publicURL string) *Storage {
	return &Storage{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

// Validate checks the size and the declared content type of an upload.
func Validate(u models.Upload) error {
	if u.Body == nil || u.Size == 0 {
		return ErrEmptyFile
	}
	if u.Size > MaxUploadSize {
		return ErrTooLarge
	}
	if _, ok := allowedTypes[u.ContentType]; !ok {
		return ErrUnsupportedType
	}
	return nil
}

// Put stores the upload under a generated key and returns where it can be fetched.
func (s *Storage) Put(ctx context.Context, u models.Upload) (models.StoredObject, error) {
	const op = "Storage.Put"

	if err := Validate(u); err != nil {
		return models.StoredObject{}, err
	}

	ext := strings.ToLower(path.Ext(u.Name))
	if ext == "" {
		ext = allowedTypes[u.ContentType]
	}
	key := uploadPrefix + "/" + uuid.NewString() + ext

	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          u.Body,
		ContentLength: aws.Int64(u.Size),
		ContentType:   aws.String(u.ContentType),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return models.StoredObject{}, types.NewService("failed to store file", fmt.Errorf("%s: %w", op, err))
	}

	return models.StoredObject{
		Key:         key,
		URL:         s.url(key),
		Size:        u.Size,
		ContentType: u.ContentType,
	}, nil
}

func (s *Storage) Info(ctx context.Context, key string) (models.StoredObject, error) {
	const op = "Storage.Info"

	key, err := cleanKey(key)
	if err != nil {
		return models.StoredObject{}, err
	}

	out, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return models.StoredObject{}, types.ErrObjectNotFound
		}
		return models.StoredObject{}, types.NewService("failed to read file info", fmt.Errorf("%s: %w", op, err))
	}

	return models.StoredObject{
		Key:          key,
		URL:          s.url(key),
		Size:         aws.Int64Value(out.ContentLength),
		ContentType:  aws.StringValue(out.ContentType),
		LastModified: aws.TimeValue(out.LastModified),
	}, nil
}

// Delete removes key. S3 reports success for missing keys, so existence is checked first.
func (s *Storage) Delete(ctx context.Context, key string) error {
	const op = "Storage.Delete"

	obj, err := s.Info(ctx, key)
	if err != nil {
		return err
	}

	if _, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(obj.Key),
	}); err != nil {
		return types.NewService("failed to delete file", fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

func (s *Storage) url(key string) string {
	return s.publicURL + "/" + key
}

// cleanKey keeps lookups inside the upload prefix.
func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(path.Clean("/"+key), "/")
	if key == "" || key == "." {
		return "", types.NewValidation("file path is required")
	}
	if !strings.HasPrefix(key, uploadPrefix+"/") {
		key = uploadPrefix + "/" + key
	}
	return key, nil
}

func isNotFound(err error) bool {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
		return true
	}
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		return aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound"
	}
	return false
}
