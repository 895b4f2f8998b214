package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"serrano/api/internal/apperr"
	"serrano/api/internal/config"
	"serrano/api/internal/ids"
	"serrano/api/internal/media/sniffer"
	"serrano/api/internal/media/svg"
	"serrano/api/internal/storage"
)

const maxUploadBytes = 10 << 20 // 10 MB per file

// UploadService proxies avatar, shop document and product image uploads to
// the image host. Files are sniffed before upload; the declared content
// type alone is never trusted.
type UploadService struct {
	store *storage.ObjectStore
	queue *redis.Client
	cfg   *config.AppConfig
	log   zerolog.Logger
}

func NewUploadService(store *storage.ObjectStore, queue *redis.Client, cfg *config.AppConfig, log zerolog.Logger) *UploadService {
	return &UploadService{
		store: store,
		queue: queue,
		cfg:   cfg,
		log:   log,
	}
}

// UploadAvatar stores a profile picture and returns its public URL. If
// oldURL points at a previously stored avatar, its object is queued for
// cleanup.
func (s *UploadService) UploadAvatar(ctx context.Context, file multipart.File, header *multipart.FileHeader, oldURL *string) (string, error) {
	url, err := s.upload(ctx, file, header, s.cfg.Storage.BucketAvatars, sniffer.AvatarTypes)
	if err != nil {
		return "", err
	}

	if oldURL != nil {
		if key := storage.KeyFromURL(*oldURL, s.cfg.Storage.BucketAvatars); key != "" {
			s.enqueueCleanup(ctx, s.cfg.Storage.BucketAvatars, key)
		}
	}
	return url, nil
}

// UploadDocument stores a shop identity document (image or PDF).
func (s *UploadService) UploadDocument(ctx context.Context, file multipart.File, header *multipart.FileHeader) (string, error) {
	return s.upload(ctx, file, header, s.cfg.Storage.BucketDocuments, sniffer.DocumentTypes)
}

// UploadProductImages stores up to five product images.
func (s *UploadService) UploadProductImages(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return nil, apperr.New(apperr.KindValidation, "at least one image is required")
	}
	if len(files) > 5 {
		return nil, apperr.New(apperr.KindValidation, "at most five images are allowed")
	}

	urls := make([]string, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, "open uploaded file", err)
		}
		url, err := s.upload(ctx, file, header, s.cfg.Storage.BucketProducts, sniffer.AvatarTypes)
		file.Close()
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *UploadService) upload(ctx context.Context, file multipart.File, header *multipart.FileHeader, bucket string, allowed map[sniffer.MediaType]struct{}) (string, error) {
	if file == nil || header == nil {
		return "", apperr.New(apperr.KindValidation, "invalid file payload")
	}
	if header.Size > maxUploadBytes {
		return "", apperr.New(apperr.KindValidation, "file too large")
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "read file", err)
	}
	if len(data) == 0 {
		return "", apperr.New(apperr.KindValidation, "empty file")
	}
	if len(data) > maxUploadBytes {
		return "", apperr.New(apperr.KindValidation, "file too large")
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	result, err := sniffer.DetectHead(head)
	if err != nil {
		return "", apperr.Wrap(apperr.KindValidation, "unsupported file type", err)
	}
	if _, ok := allowed[result.Type]; !ok {
		return "", apperr.New(apperr.KindValidation, fmt.Sprintf("%s files are not accepted here", result.Type))
	}

	if declared := sniffer.MimeTypeFromHTTP(http.Header(header.Header)); declared != "" && declared != result.MIME {
		return "", apperr.New(apperr.KindValidation,
			fmt.Sprintf("content type mismatch: declared %s, actual %s", declared, result.MIME))
	}

	if result.Type == sniffer.TypeSVG {
		clean, err := svg.Sanitize(data)
		if err != nil {
			return "", apperr.Wrap(apperr.KindValidation, "sanitize svg", err)
		}
		data = clean
	}

	objectKey := storage.ObjectKey(ids.New(), string(result.Type))
	url, err := s.store.Put(ctx, bucket, objectKey, data, result.MIME)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "store file", err)
	}
	return url, nil
}

// enqueueCleanup hands a replaced object to the background worker. Failures
// only cost storage, so they are logged and dropped.
func (s *UploadService) enqueueCleanup(ctx context.Context, bucket, objectKey string) {
	if s.queue == nil {
		return
	}
	_, err := s.queue.XAdd(ctx, &redis.XAddArgs{
		Stream: "uploads:cleanup",
		Values: map[string]any{
			"type":   "remove",
			"bucket": bucket,
			"object": objectKey,
		},
	}).Result()
	if err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn().Err(err).Str("object", objectKey).Msg("enqueue cleanup failed")
	}
}
