package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"visa_crm_go/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// StorageProvider stores client documents and generated files
type StorageProvider interface {
	Put(ctx context.Context, reader io.Reader, key, contentType string, size int64) (*StoredFile, error)
	Get(ctx context.Context, key string) (io.ReadCloser, string, error) // reader, content type
	Delete(ctx context.Context, key string) error
	SignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
	Name() string
}

// StoredFile describes a file after upload
type StoredFile struct {
	Key      string
	FileName string
	FileSize int64
	MimeType string
}

// Storage is the global storage instance
var Storage StorageProvider

// InitializeStorage picks R2 when fully configured and reachable, else local disk
func InitializeStorage(cfg *config.Config) {
	if cfg.R2AccountID == "" || cfg.R2AccessKeyID == "" || cfg.R2SecretAccessKey == "" || cfg.R2BucketName == "" {
		Storage = NewLocalStorage(cfg.UploadDir)
		log.Printf("Storage ready (local filesystem: %s)", cfg.UploadDir)
		return
	}

	r2, err := NewR2Storage(cfg)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, err = r2.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.R2BucketName)})
	}
	if err != nil {
		log.Printf("[WARNING] R2 storage unavailable (%v), falling back to local storage", err)
		Storage = NewLocalStorage(cfg.UploadDir)
		return
	}

	Storage = r2
	log.Printf("Storage ready (Cloudflare R2 bucket: %s)", cfg.R2BucketName)
}

// R2Storage talks to Cloudflare R2 through the S3 API
type R2Storage struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
}

func NewR2Storage(cfg *config.Config) (*R2Storage, error) {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	creds := credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(creds),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &R2Storage{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.R2BucketName,
	}, nil
}

func (r *R2Storage) Name() string { return "r2" }

func (r *R2Storage) Put(ctx context.Context, reader io.Reader, key, contentType string, size int64) (*StoredFile, error) {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          reader,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to R2: %w", err)
	}
	return &StoredFile{Key: key, FileName: filepath.Base(key), FileSize: size, MimeType: contentType}, nil
}

func (r *R2Storage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	result, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get object from R2: %w", err)
	}
	contentType := "application/octet-stream"
	if result.ContentType != nil {
		contentType = *result.ContentType
	}
	return result.Body, contentType, nil
}

func (r *R2Storage) Delete(ctx context.Context, key string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from R2: %w", err)
	}
	return nil
}

func (r *R2Storage) SignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	req, err := r.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiration))
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return req.URL, nil
}

// LocalStorage keeps files under a base directory
type LocalStorage struct {
	baseDir string
}

func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{baseDir: baseDir}
}

func (l *LocalStorage) Name() string { return "local" }

func (l *LocalStorage) path(key string) (string, error) {
	full := filepath.Join(l.baseDir, filepath.Clean("/"+key))
	if !strings.HasPrefix(full, filepath.Clean(l.baseDir)) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return full, nil
}

func (l *LocalStorage) Put(ctx context.Context, reader io.Reader, key, contentType string, size int64) (*StoredFile, error) {
	fullPath, err := l.path(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}
	return &StoredFile{Key: key, FileName: filepath.Base(key), FileSize: written, MimeType: contentType}, nil
}

func (l *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	fullPath, err := l.path(key)
	if err != nil {
		return nil, "", err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(key)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return file, contentType, nil
}

func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	fullPath, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// SignedURL is not supported locally; callers stream through Get instead
func (l *LocalStorage) SignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return "", nil
}

// GenerateStorageKey creates a unique storage key under prefix
func GenerateStorageKey(prefix, originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	return fmt.Sprintf("%s/%s_%d%s", prefix, uuid.New().String(), time.Now().Unix(), ext)
}

// ClientDocumentKey creates a storage key for a client document
func ClientDocumentKey(workspaceID, clientID, originalFilename string) string {
	return GenerateStorageKey(fmt.Sprintf("workspaces/%s/clients/%s/documents", workspaceID, clientID), originalFilename)
}

// ImportArchiveKey creates a storage key for an uploaded lead import file
func ImportArchiveKey(workspaceID, originalFilename string) string {
	return GenerateStorageKey(fmt.Sprintf("workspaces/%s/imports", workspaceID), originalFilename)
}
