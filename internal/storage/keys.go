package storage

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
)

// ObjectKey builds the key for a file owned by ownerID: {ownerID}/{unixMillis}.{ext}.
func ObjectKey(ownerID string, now time.Time, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return fmt.Sprintf("%s/%d", ownerID, now.UnixMilli())
	}
	return fmt.Sprintf("%s/%d.%s", ownerID, now.UnixMilli(), ext)
}

// KeyFromURL recovers the object key from a public URL. Keys are always
// {ownerID}/{file}, so the last two path segments are the key.
func KeyFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", ErrInvalidObjectURL
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || segments[len(segments)-2] == "" || segments[len(segments)-1] == "" {
		return "", ErrInvalidObjectURL
	}
	return path.Join(segments[len(segments)-2], segments[len(segments)-1]), nil
}

// publicURL joins base, bucket and key without doubling slashes.
func publicURL(base, bucket, key string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + strings.TrimLeft(key, "/")
}
