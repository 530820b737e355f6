package api

import (
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

// SPAHandler serves the built frontend from a directory on disk.
// Paths that do not match a file fall back to index.html so
// client-side routes survive a page reload. Fingerprinted build
// outputs under assets/ get an immutable cache policy; index.html and
// everything else stay no-cache so a redeploy is picked up.
type SPAHandler struct {
	root       fs.FS
	fileServer http.Handler
}

func NewSPAHandler(staticDir string) *SPAHandler {
	return NewSPAHandlerFS(os.DirFS(staticDir))
}

func NewSPAHandlerFS(root fs.FS) *SPAHandler {
	return &SPAHandler{
		root:       root,
		fileServer: http.FileServer(http.FS(root)),
	}
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	if name == "" || name == "." {
		h.serveIndex(w, r)
		return
	}

	info, err := fs.Stat(h.root, name)
	if err != nil || info.IsDir() {
		h.serveIndex(w, r)
		return
	}

	cache := cacheControlNoCache
	if isImmutableAsset(name) {
		cache = cacheControlImmutable
	}
	setSecurityHeaders(w, cache)
	r.URL.Path = "/" + name
	h.fileServer.ServeHTTP(w, r)
}

func (h *SPAHandler) serveIndex(w http.ResponseWriter, r *http.Request) {
	setSecurityHeaders(w, cacheControlNoCache)
	r.URL.Path = "/"
	h.fileServer.ServeHTTP(w, r)
}

// isImmutableAsset reports whether name looks like a fingerprinted
// build output, e.g. assets/index-BT2p5nWp.js. Only files under
// assets/ whose stem ends in a dash-separated fingerprint of at least
// 8 alphanumeric characters qualify.
func isImmutableAsset(name string) bool {
	if !strings.HasPrefix(name, "assets/") {
		return false
	}
	base := path.Base(name)
	stem := strings.TrimSuffix(base, path.Ext(base))
	dash := strings.LastIndex(stem, "-")
	if dash < 0 {
		return false
	}
	fingerprint := stem[dash+1:]
	if len(fingerprint) < 8 {
		return false
	}
	for _, char := range fingerprint {
		switch {
		case char >= '0' && char <= '9':
		case char >= 'a' && char <= 'z':
		case char >= 'A' && char <= 'Z':
		default:
			return false
		}
	}
	return true
}
