// Package storage keeps uploaded binaries outside the database and exposes them by URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

var ErrBlobNotFound = errors.New("blob not found")

type BlobStore interface {
	Upload(ctx context.Context, objectPath string, r io.Reader) (int64, error)
	Download(ctx context.Context, objectPath string) (io.ReadCloser, error)
	Remove(ctx context.Context, objectPaths ...string) error
	PublicURL(objectPath string) string
	PathFromURL(fileURL string) (string, bool)
}

type FSStore struct {
	fs      afero.Fs
	baseURL string
}

// NewFSStore roots the store at dir on the local disk.
func NewFSStore(dir, publicBaseURL string) (*FSStore, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %s: %w", dir, err)
	}
	return NewStore(afero.NewBasePathFs(osFs, dir), publicBaseURL), nil
}

func NewStore(fs afero.Fs, publicBaseURL string) *FSStore {
	return &FSStore{
		fs:      fs,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (s *FSStore) Upload(ctx context.Context, objectPath string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	p, err := cleanPath(objectPath)
	if err != nil {
		return 0, err
	}

	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create directory for %s: %w", p, err)
	}

	// refuse to overwrite, uploads are never updated in place
	f, err := s.fs.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", p, err)
	}

	n, copyErr := io.Copy(f, &ctxReader{ctx: ctx, r: r})
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = s.fs.Remove(p)
		if copyErr != nil {
			return 0, fmt.Errorf("failed to write %s: %w", p, copyErr)
		}
		return 0, fmt.Errorf("failed to close %s: %w", p, closeErr)
	}
	return n, nil
}

func (s *FSStore) Download(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := cleanPath(objectPath)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to open %s: %w", p, err)
	}
	return f, nil
}

// Remove deletes every path given; missing objects are not an error.
func (s *FSStore) Remove(ctx context.Context, objectPaths ...string) error {
	var errs []error
	for _, objectPath := range objectPaths {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, err := cleanPath(objectPath)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := s.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

func (s *FSStore) PublicURL(objectPath string) string {
	p, _ := cleanPath(objectPath)
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.baseURL + "/" + strings.Join(segments, "/")
}

// PathFromURL recovers the object path from a URL produced by PublicURL.
func (s *FSStore) PathFromURL(fileURL string) (string, bool) {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(fileURL, prefix) {
		return "", false
	}
	p, err := url.PathUnescape(strings.TrimPrefix(fileURL, prefix))
	if err != nil || p == "" {
		return "", false
	}
	if _, err := cleanPath(p); err != nil {
		return "", false
	}
	return p, true
}

// Handler serves stored objects read-only under the public base URL. Directories are not listed.
func (s *FSStore) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := cleanPath(r.URL.Path)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		f, err := s.fs.Open(p)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer f.Close()

		fi, err := f.Stat()
		if err != nil || fi.IsDir() {
			http.NotFound(w, r)
			return
		}
		http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
	})
}

func cleanPath(objectPath string) (string, error) {
	p := path.Clean("/" + strings.TrimSpace(objectPath))
	p = strings.TrimPrefix(p, "/")
	if p == "" || p == "." {
		return "", fmt.Errorf("invalid object path %q", objectPath)
	}
	return p, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
