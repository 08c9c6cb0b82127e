package storage

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

type bucketWriter interface {
	write(ctx context.Context, path, contentType string, data []byte) error
}

// FirebaseStorage writes to the project's Cloud Storage bucket through the admin SDK.
type FirebaseStorage struct {
	bucket string
	writer bucketWriter
}

func NewFirebaseStorage(ctx context.Context, credentialsFile, bucket string) (*FirebaseStorage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("firebase storage needs FIREBASE_BUCKET")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucket}, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting storage client: %w", err)
	}
	handle, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("error opening bucket %s: %w", bucket, err)
	}

	return &FirebaseStorage{
		bucket: bucket,
		writer: writerFunc(func(ctx context.Context, path, contentType string, data []byte) error {
			w := handle.Object(path).NewWriter(ctx)
			w.ContentType = contentType
			if _, err := w.Write(data); err != nil {
				_ = w.Close()
				return err
			}
			return w.Close()
		}),
	}, nil
}

type writerFunc func(ctx context.Context, path, contentType string, data []byte) error

func (f writerFunc) write(ctx context.Context, path, contentType string, data []byte) error {
	return f(ctx, path, contentType, data)
}

func (s *FirebaseStorage) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	if err := s.writer.write(ctx, path, contentType, data); err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	return s.PublicURL(path), nil
}

func (s *FirebaseStorage) PublicURL(path string) string {
	return "https://storage.googleapis.com/" + s.bucket + "/" + path
}
