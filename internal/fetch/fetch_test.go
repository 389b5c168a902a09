package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func bigPayload() []byte {
	return []byte(strings.Repeat("x", 2*minTemplateBytes))
}

func routeTo(name string, srv *httptest.Server) Route {
	return Route{Name: name, Build: func(string) string { return srv.URL }}
}

func TestLoader_Fetch_Direct(t *testing.T) {
	var gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		w.Write(bigPayload())
	}))
	defer srv.Close()

	l := NewLoader(nil, WithHTTPClient(srv.Client()), WithRoutes([]Route{DirectRoute()}))
	b, err := l.Fetch(context.Background(), srv.URL+"/template.docx")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(b) != 2*minTemplateBytes {
		t.Errorf("Fetch() returned %d bytes", len(b))
	}
	if !strings.Contains(gotURL, "cb=") {
		t.Errorf("request URL %q lacks cache-bust parameter", gotURL)
	}
}

func TestLoader_Fetch_FallsBackOnSmallPayload(t *testing.T) {
	small := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("error page"))
	}))
	defer small.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bigPayload())
	}))
	defer good.Close()

	l := NewLoader(nil, WithRoutes([]Route{routeTo("small", small), routeTo("good", good)}))
	b, err := l.Fetch(context.Background(), "http://example.invalid/t.docx")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(b) != 2*minTemplateBytes {
		t.Errorf("Fetch() returned %d bytes, want the second route's payload", len(b))
	}
}

func TestLoader_Fetch_AllRoutesFail(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer bad.Close()

	l := NewLoader(nil, WithRoutes([]Route{routeTo("a", bad), routeTo("b", bad)}))
	_, err := l.Fetch(context.Background(), "http://example.invalid/t.docx")
	if err == nil {
		t.Fatal("Fetch() error = nil, want aggregate failure")
	}
	for _, name := range []string{"route a", "route b"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not mention %q", err, name)
		}
	}
}

type mapCache struct {
	data map[string][]byte
	sets int
}

func (c *mapCache) GetBytes(_ context.Context, key string) ([]byte, bool) {
	b, ok := c.data[key]
	return b, ok
}

func (c *mapCache) SetBytes(_ context.Context, key string, value []byte, _ time.Duration) {
	c.data[key] = value
	c.sets++
}

func TestLoader_Fetch_Cache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write(bigPayload())
	}))
	defer srv.Close()

	cache := &mapCache{data: map[string][]byte{}}
	l := NewLoader(nil, WithRoutes([]Route{DirectRoute()}), WithCache(cache, time.Minute))

	for i := 0; i < 3; i++ {
		if _, err := l.Fetch(context.Background(), srv.URL); err != nil {
			t.Fatalf("Fetch() #%d error = %v", i, err)
		}
	}
	if hits != 1 {
		t.Errorf("upstream hits = %d, want 1", hits)
	}
	if cache.sets != 1 {
		t.Errorf("cache sets = %d, want 1", cache.sets)
	}
}

func TestProxyRoutesEscapeTarget(t *testing.T) {
	target := "https://docs.google.com/export?format=docx&id=1"
	for _, r := range []Route{CodeTabsRoute(), CorsProxyRoute()} {
		u := r.Build(target)
		if strings.Contains(u, "format=docx&id") {
			t.Errorf("%s route did not escape the target: %q", r.Name, u)
		}
		if !strings.Contains(u, "docs.google.com") {
			t.Errorf("%s route lost the target host: %q", r.Name, u)
		}
	}
}
