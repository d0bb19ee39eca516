// Package s3 は社員写真を S3 互換オブジェクトストレージに保存する MediaStore 実装です。
package s3

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/ogurasousui/codex-graphql-employee/internal/core/apperror"
	"github.com/ogurasousui/codex-graphql-employee/internal/platform/config"
)

var (
	errInvalidImage     = apperror.Validation("Invalid image data")
	errUnsupportedImage = apperror.Validation("Unsupported image format")
)

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
	"image/bmp":  "bmp",
}

// objectAPI は Store が利用する S3 クライアントの操作です。
type objectAPI interface {
	PutObject(ctx context.Context, in *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *awss3.DeleteObjectInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error)
}

// Store は MediaStore の S3 実装です。
type Store struct {
	client  objectAPI
	bucket  string
	baseURL string
	folder  string
	newKey  func() string
}

// New は設定から S3 クライアントを構築し Store を返します。
func New(ctx context.Context, cfg config.MediaConfig) (*Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newStore(client, cfg), nil
}

func newStore(client objectAPI, cfg config.MediaConfig) *Store {
	return &Store{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		folder:  strings.Trim(cfg.Folder, "/"),
		newKey:  uuid.NewString,
	}
}

// Upload は画像を保存し、公開 URL を返します。
// http(s) の URL はそのまま返し、data URL と base64 文字列はデコードしてアップロードします。
func (s *Store) Upload(ctx context.Context, data string) (string, error) {
	data = strings.TrimSpace(data)
	if isRemoteURL(data) {
		return data, nil
	}

	body, contentType, err := decodeImage(data)
	if err != nil {
		return "", err
	}

	key := s.newKey() + "." + imageExtensions[contentType]
	if s.folder != "" {
		key = s.folder + "/" + key
	}

	if _, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	}); err != nil {
		return "", fmt.Errorf("s3: put object %s: %w", key, err)
	}

	return s.baseURL + "/" + key, nil
}

// Delete は公開 URL が指すオブジェクトを削除します。
// このストアが発行していない URL は何もしません。
func (s *Store) Delete(ctx context.Context, url string) error {
	key, ok := s.keyFromURL(url)
	if !ok {
		return nil
	}

	if _, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("s3: delete object %s: %w", key, err)
	}
	return nil
}

func (s *Store) keyFromURL(url string) (string, bool) {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" {
		return "", false
	}
	return key, true
}

func isRemoteURL(data string) bool {
	lower := strings.ToLower(data)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// decodeImage は data URL または base64 文字列をデコードし、検出した Content-Type を返します。
func decodeImage(data string) ([]byte, string, error) {
	payload := data
	if strings.HasPrefix(strings.ToLower(data), "data:") {
		header, encoded, found := strings.Cut(data, ",")
		if !found || !strings.HasSuffix(strings.ToLower(header), ";base64") {
			return nil, "", errInvalidImage
		}
		if !strings.HasPrefix(strings.ToLower(header), "data:image/") {
			return nil, "", errUnsupportedImage
		}
		payload = encoded
	}

	body, err := decodeBase64(payload)
	if err != nil || len(body) == 0 {
		return nil, "", errInvalidImage
	}

	contentType := http.DetectContentType(body)
	if _, ok := imageExtensions[contentType]; !ok {
		return nil, "", errUnsupportedImage
	}
	return body, contentType, nil
}

func decodeBase64(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if body, err := base64.StdEncoding.DecodeString(payload); err == nil {
		return body, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
}
