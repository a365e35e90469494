package assets

import (
	"crypto/sha256"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-chi/chi/v5"
)

// Web facing prefix on assets in static folder
const AssetPrefix string = "/assets/"

var (
	mu     sync.RWMutex
	static fs.FS
	hashes = map[string]string{}
)

// Load hashes every static asset once so pages can reference cache-busted
// paths without touching the filesystem per request.
func Load(fsys fs.FS) error {
	files, err := doublestar.Glob(fsys, "**/*.{css,js,svg,png,ico}")
	if err != nil {
		return fmt.Errorf("assets: glob: %w", err)
	}

	computed := make(map[string]string, len(files))
	for _, f := range files {
		data, err := fs.ReadFile(fsys, f)
		if err != nil {
			return fmt.Errorf("assets: read %s: %w", f, err)
		}
		computed[f] = fmt.Sprintf("%x", sha256.Sum256(data))[:16]
	}

	mu.Lock()
	static = fsys
	hashes = computed
	mu.Unlock()
	return nil
}

// Read returns the contents of a loaded static file.
func Read(name string) ([]byte, error) {
	mu.RLock()
	fsys := static
	mu.RUnlock()
	if fsys == nil {
		return nil, fs.ErrNotExist
	}
	return fs.ReadFile(fsys, strings.TrimPrefix(name, "/"))
}

func HttpHandler(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(permCache) // Perma cache all static assets, should use cache busting version
		r.Use(versionedAssets)
		r.Get(AssetPrefix+"*", func(w http.ResponseWriter, r *http.Request) {
			mu.RLock()
			fsys := static
			mu.RUnlock()
			if fsys == nil {
				http.NotFound(w, r)
				return
			}
			http.StripPrefix(AssetPrefix, http.FileServerFS(fsys)).ServeHTTP(w, r)
		})
	})
}

func permCache(h http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "max-age=31536000")
		h.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}

// versionedAssets is Middleware that strips the version from an asset.
// Example: styles.80b2c87c0b9a5af9.css forwards as styles.css
func versionedAssets(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sections := strings.Split(r.URL.Path, ".")
		if len(sections) != 3 {
			next.ServeHTTP(w, r)
			return
		}

		r.URL.Path = strings.Join([]string{sections[0], sections[2]}, ".")
		next.ServeHTTP(w, r)
	})
}

// GetHashedAssetPath takes the web facing path of an asset, and returns a hashed path to the asset
func GetHashedAssetPath(webPath string) string {
	trimmedPath := strings.TrimPrefix(webPath, AssetPrefix)
	ext := path.Ext(webPath)
	if ext == "" {
		panic("no extension found")
	}

	mu.RLock()
	hash, ok := hashes[trimmedPath]
	mu.RUnlock()
	if !ok {
		return fmt.Sprintf(AssetPrefix+"%v.x%v", strings.TrimSuffix(trimmedPath, ext), ext)
	}

	return fmt.Sprintf(AssetPrefix+"%v.%v%v", strings.TrimSuffix(trimmedPath, ext), hash, ext)
}
