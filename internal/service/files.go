package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"

	"dietcascade/portal-api/internal/storage"
)

const (
	MaxPhotoSize    = 5 << 20
	MaxDietPlanSize = 10 << 20
)

// FileUpload is a file received from a multipart form.
type FileUpload struct {
	Filename string
	Content  io.Reader
}

// sniffedFile is an upload that passed size and type checks.
type sniffedFile struct {
	data        []byte
	contentType string
	ext         string
}

// readUpload buffers f (at most maxSize bytes) and checks its sniffed type.
// The declared content type of the request is ignored.
func readUpload(field string, f *FileUpload, maxSize int64, accept func(*mimetype.MIME) bool, typeMessage string) (*sniffedFile, error) {
	data, err := io.ReadAll(io.LimitReader(f.Content, maxSize+1))
	if err != nil {
		return nil, newValidationError(field, fmt.Sprintf("%s could not be read", field))
	}
	if len(data) == 0 {
		return nil, newValidationError(field, fmt.Sprintf("%s is empty", field))
	}
	if int64(len(data)) > maxSize {
		return nil, newValidationError(field, fmt.Sprintf("%s must be under %dMB", field, maxSize>>20))
	}

	mt := mimetype.Detect(data)
	if !accept(mt) {
		return nil, newValidationError(field, typeMessage)
	}

	ext := strings.TrimPrefix(mt.Extension(), ".")
	if ext == "" {
		ext = strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Filename)), ".")
	}
	return &sniffedFile{data: data, contentType: mt.String(), ext: ext}, nil
}

func isImage(mt *mimetype.MIME) bool {
	return strings.HasPrefix(mt.String(), "image/")
}

func isDietPlanDocument(mt *mimetype.MIME) bool {
	return mt.Is("application/pdf") || mt.Is("image/jpeg") || mt.Is("image/png")
}

// putFile uploads f under a fresh key owned by ownerID and returns the key and public URL.
func putFile(ctx context.Context, store storage.FileStorage, ownerID string, now time.Time, f *sniffedFile) (string, string, error) {
	key := storage.ObjectKey(ownerID, now, f.ext)
	if err := store.Upload(ctx, key, bytes.NewReader(f.data), int64(len(f.data)), f.contentType); err != nil {
		return "", "", storeError("upload file", err)
	}
	return key, store.PublicURL(key), nil
}

// releaseObject deletes key once. Failure is logged and swallowed: the
// primary operation already succeeded (or already failed with its own error).
func releaseObject(ctx context.Context, store storage.FileStorage, log *logrus.Logger, key, reason string) {
	if err := store.DeleteObject(context.WithoutCancel(ctx), key); err != nil {
		log.WithFields(logrus.Fields{"key": key, "reason": reason}).Warnf("Failed to release stored file: %+v", err)
	}
}

// releaseObjectByURL derives the key from a public URL and releases it.
func releaseObjectByURL(ctx context.Context, store storage.FileStorage, log *logrus.Logger, url, reason string) {
	key, err := storage.KeyFromURL(url)
	if err != nil {
		log.WithFields(logrus.Fields{"url": url, "reason": reason}).Warnf("Failed to derive storage key: %+v", err)
		return
	}
	releaseObject(ctx, store, log, key, reason)
}
