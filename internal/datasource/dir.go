package datasource

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vanderheijden86/aidscope/pkg/api"
)

// DirSource serves pages from JSON files: a URL whose path ends in
// "<endpoint>/" maps to <dir>/<endpoint>.json, and a "page=N" query above 1
// maps to <dir>/<endpoint>.<N>.json. Other query parameters are ignored.
type DirSource struct {
	Dir string
}

// NewDirSource returns a fixture transport rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{Dir: dir}
}

// Type returns SourceTypeDir.
func (s *DirSource) Type() SourceType { return SourceTypeDir }

// FileFor returns the fixture file that serves rawURL.
func (s *DirSource) FileFor(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing url %q: %w", rawURL, err)
	}
	name := path.Base(strings.TrimSuffix(u.Path, "/"))
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("no endpoint in url %q", rawURL)
	}
	if p := u.Query().Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			return "", fmt.Errorf("page %q in url %q is not a page number", p, rawURL)
		}
		if n > 1 {
			name += "." + strconv.Itoa(n)
		}
	}
	return filepath.Join(s.Dir, name+".json"), nil
}

// Get implements api.Getter.
func (s *DirSource) Get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := s.FileFor(rawURL)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &api.HTTPError{URL: rawURL, Status: 404, Body: "no fixture " + filepath.Base(file)}
		}
		return nil, fmt.Errorf("%w: %v", api.ErrNetwork, err)
	}
	return data, nil
}
