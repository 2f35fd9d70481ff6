package s3

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
)

type fakeS3 struct {
	s3iface.S3API

	objects map[string]*s3.PutObjectInput
	deleted []string
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: map[string]*s3.PutObjectInput{}} }

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	f.objects[aws.StringValue(in.Key)] = in
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadObjectWithContext(_ aws.Context, in *s3.HeadObjectInput, _ ...request.Option) (*s3.HeadObjectOutput, error) {
	obj, ok := f.objects[aws.StringValue(in.Key)]
	if !ok {
		return nil, awserr.NewRequestFailure(awserr.New("NotFound", "Not Found", nil), http.StatusNotFound, "req-1")
	}
	return &s3.HeadObjectOutput{
		ContentLength: obj.ContentLength,
		ContentType:   obj.ContentType,
		LastModified:  aws.Time(time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)),
	}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	key := aws.StringValue(in.Key)
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return &s3.DeleteObjectOutput{}, nil
}

func upload(name, contentType string, size int) models.Upload {
	return models.Upload{Name: name, ContentType: contentType, Size: int64(size), Body: bytes.NewReader(make([]byte, size))}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		u    models.Upload
		want error
	}{
		{"png", upload("a.png", "image/png", 10), nil},
		{"pdf at limit", upload("a.pdf", "application/pdf", MaxUploadSize), nil},
		{"too large", upload("a.pdf", "application/pdf", MaxUploadSize+1), ErrTooLarge},
		{"svg", upload("a.svg", "image/svg+xml", 10), ErrUnsupportedType},
		{"empty", models.Upload{Name: "a.png", ContentType: "image/png"}, ErrEmptyFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Validate(tt.u); !errors.Is(err, tt.want) {
				t.Fatalf("Validate = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStorage_Lifecycle(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	st := NewWithClient(fake, "dispatch", "https://cdn.example.com/")

	obj, err := st.Put(ctx, upload("Photo.JPG", "image/jpeg", 128))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !strings.HasPrefix(obj.Key, "uploads/") || !strings.HasSuffix(obj.Key, ".jpg") {
		t.Fatalf("key = %q", obj.Key)
	}
	if obj.URL != "https://cdn.example.com/"+obj.Key {
		t.Fatalf("url = %q", obj.URL)
	}
	if in := fake.objects[obj.Key]; aws.StringValue(in.Bucket) != "dispatch" || aws.StringValue(in.ACL) != "public-read" {
		t.Fatalf("unexpected put input %+v", in)
	}

	name := strings.TrimPrefix(obj.Key, "uploads/")
	info, err := st.Info(ctx, name)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Size != 128 || info.ContentType != "image/jpeg" || info.LastModified.IsZero() {
		t.Fatalf("unexpected info %+v", info)
	}

	if err := st.Delete(ctx, obj.Key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := st.Delete(ctx, obj.Key); !errors.Is(err, types.ErrObjectNotFound) {
		t.Fatalf("second Delete = %v", err)
	}
	if len(fake.deleted) != 1 {
		t.Fatalf("deleted %v", fake.deleted)
	}
}

func TestCleanKey(t *testing.T) {
	tests := map[string]string{
		"a.png":                  "uploads/a.png",
		"uploads/a.png":          "uploads/a.png",
		"../../etc/passwd":       "uploads/etc/passwd",
		"/uploads/../secret.pdf": "uploads/secret.pdf",
	}
	for in, want := range tests {
		if got, err := cleanKey(in); err != nil || got != want {
			t.Errorf("cleanKey(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := cleanKey(""); types.KindOf(err) != types.KindValidation {
		t.Fatalf("empty key: %v", err)
	}
}
