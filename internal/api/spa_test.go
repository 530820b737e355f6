package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
)

func spaTestFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html":               {Data: []byte("<html>parley</html>")},
		"favicon.ico":              {Data: []byte("icon")},
		"assets/index-BT2p5nWp.js": {Data: []byte("console.log('app')")},
		"assets/vendor.js":         {Data: []byte("console.log('vendor')")},
	}
}

func serveSPA(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	handler := NewSPAHandlerFS(spaTestFS())
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
	return recorder
}

func TestSPAHandlerServesIndex(t *testing.T) {
	recorder := serveSPA(t, "/")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if body := recorder.Body.String(); body != "<html>parley</html>" {
		t.Fatalf("unexpected body %q", body)
	}
	if recorder.Header().Get("Cache-Control") != cacheControlNoCache {
		t.Fatalf("index must be no-cache, got %q", recorder.Header().Get("Cache-Control"))
	}
	if recorder.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("missing security headers")
	}
}

func TestSPAHandlerFallsBackToIndexForClientRoutes(t *testing.T) {
	recorder := serveSPA(t, "/negotiations/42")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if body := recorder.Body.String(); body != "<html>parley</html>" {
		t.Fatalf("client route must serve index, got %q", body)
	}
	if recorder.Header().Get("Cache-Control") != cacheControlNoCache {
		t.Fatalf("fallback must be no-cache, got %q", recorder.Header().Get("Cache-Control"))
	}
}

func TestSPAHandlerCachesFingerprintedAssets(t *testing.T) {
	recorder := serveSPA(t, "/assets/index-BT2p5nWp.js")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if recorder.Header().Get("Cache-Control") != cacheControlImmutable {
		t.Fatalf("fingerprinted asset must be immutable, got %q", recorder.Header().Get("Cache-Control"))
	}

	recorder = serveSPA(t, "/assets/vendor.js")
	if recorder.Header().Get("Cache-Control") != cacheControlNoCache {
		t.Fatalf("unfingerprinted asset must be no-cache, got %q", recorder.Header().Get("Cache-Control"))
	}
}

func TestIsImmutableAsset(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"assets/index-BT2p5nWp.js", true},
		{"assets/style-0a1b2c3d.css", true},
		{"assets/vendor.js", false},
		{"assets/index-abc.js", false},
		{"assets/logo-with-dash.png", false},
		{"index-BT2p5nWp.js", false},
		{"index.html", false},
	}
	for _, tc := range cases {
		if got := isImmutableAsset(tc.name); got != tc.want {
			t.Errorf("isImmutableAsset(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}
