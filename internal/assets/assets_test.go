package assets

import (
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashedPathsAndServing(t *testing.T) {
	fsys := fstest.MapFS{
		"app.css":         {Data: []byte("body{margin:0}")},
		"icons/play.svg":  {Data: []byte("<svg></svg>")},
		"notes/readme.md": {Data: []byte("skip")},
	}
	require.NoError(t, Load(fsys))

	css := GetHashedAssetPath("/assets/app.css")
	assert.Regexp(t, regexp.MustCompile(`^/assets/app\.[0-9a-f]{16}\.css$`), css)
	assert.Regexp(t, regexp.MustCompile(`^/assets/icons/play\.[0-9a-f]{16}\.svg$`), GetHashedAssetPath("/assets/icons/play.svg"))
	assert.Equal(t, "/assets/missing.x.css", GetHashedAssetPath("/assets/missing.css"))

	mux := chi.NewMux()
	HttpHandler(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + css)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "body{margin:0}", string(body))
	assert.Equal(t, "max-age=31536000", resp.Header.Get("Cache-Control"))

	data, err := Read("icons/play.svg")
	require.NoError(t, err)
	assert.Equal(t, "<svg></svg>", string(data))
}
