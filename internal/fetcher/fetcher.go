// Package fetcher downloads and parses incident source data from HTTP,
// FTP, local file, CSV, and XLSX sources.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// Open resolves a source URL to a reader. http(s) and ftp schemes go
// through the matching fetcher; file URLs and plain paths are read from
// the local filesystem.
func Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return openFile(rawURL)
	}

	switch u.Scheme {
	case "http", "https":
		return NewHTTPFetcher(HTTPOptions{}).Download(ctx, rawURL)
	case "ftp":
		return NewFTPFetcher(FTPOptions{}).Download(ctx, rawURL)
	case "file":
		return openFile(u.Path)
	default:
		// Windows drive letters and dotted relative paths parse as schemes.
		if len(u.Scheme) == 1 || strings.Contains(u.Scheme, ".") {
			return openFile(rawURL)
		}
		return nil, eris.Errorf("fetcher: unsupported scheme %q in %s", u.Scheme, rawURL)
	}
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open %s", path)
	}
	return f, nil
}
