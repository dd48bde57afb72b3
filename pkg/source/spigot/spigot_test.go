package spigot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jarlock-dev/jarlock/pkg/checksum"
	"github.com/jarlock-dev/jarlock/pkg/errors"
	"github.com/jarlock-dev/jarlock/pkg/httputil"
)

func testSource(t *testing.T, handler http.HandlerFunc) *Source {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	s := New(httputil.NewClient("jarlock-test"))
	s.baseURL = srv.URL
	return s
}

const versionsJSON = `[
  {"id": 101, "name": "5.1", "releaseDate": 1700000000, "testedVersions": ["1.20"]},
  {"id": 100, "name": "5.0", "releaseDate": 1600000000, "testedVersions": ["1.19"]}
]`

func TestResolveNumericID(t *testing.T) {
	jar := []byte("spigot jar bytes")
	s := testSource(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/resources/12345":
			w.Write([]byte(`{"id": 12345, "name": "Vault"}`))
		case "/resources/12345/versions":
			w.Write([]byte(versionsJSON))
		case "/resources/12345/versions/101/download":
			w.Header().Set("Content-Disposition", `attachment; filename="vault-5.1.jar"`)
			w.Write(jar)
		default:
			http.NotFound(w, r)
		}
	})

	got, err := s.Resolve(context.Background(), "12345", "", "1.20")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if got.Version != "5.1" {
		t.Errorf("Version = %s, want 5.1", got.Version)
	}
	if got.Filename != "vault-5.1.jar" {
		t.Errorf("Filename = %q", got.Filename)
	}
	want, _ := checksum.Sum(jar, checksum.SHA256)
	if got.Hash != want {
		t.Errorf("Hash = %s, want %s", got.Hash, want)
	}
}

func TestResolveEmptyTestedVersionsIsCompatible(t *testing.T) {
	s := testSource(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/resources/77":
			w.Write([]byte(`{"id": 77, "name": "NoMeta"}`))
		case "/resources/77/versions":
			w.Write([]byte(`[{"id": 1, "name": "1.0", "releaseDate": 1700000000}]`))
		case "/resources/77/versions/1/download":
			w.Write([]byte("bytes"))
		default:
			http.NotFound(w, r)
		}
	})

	got, err := s.Resolve(context.Background(), "77", "", "1.21")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if got.Version != "1.0" {
		t.Errorf("Version = %s", got.Version)
	}
}

func TestResolveSearchByName(t *testing.T) {
	s := testSource(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/search/resources/"):
			w.Write([]byte(`[
				{"id": 2, "name": "Vault Extras"},
				{"id": 1, "name": "Vault"}
			]`))
		case r.URL.Path == "/resources/1":
			w.Write([]byte(`{"id": 1, "name": "Vault"}`))
		case r.URL.Path == "/resources/1/versions":
			w.Write([]byte(`[{"id": 9, "name": "1.7", "releaseDate": 1700000000, "testedVersions": ["1.20"]}]`))
		case r.URL.Path == "/resources/1/versions/9/download":
			w.Write([]byte("vault bytes"))
		default:
			http.NotFound(w, r)
		}
	})

	got, err := s.Resolve(context.Background(), "vault", "", "1.20")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if got.Version != "1.7" {
		t.Errorf("Version = %s", got.Version)
	}
}

func TestResolveExternalURLFallback(t *testing.T) {
	external := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/java-archive")
		w.Header().Set("Content-Disposition", `attachment; filename="ext-2.0.jar"`)
		w.Write([]byte("external jar"))
	}))
	defer external.Close()

	s := testSource(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/resources/55":
			w.Write([]byte(`{"id": 55, "name": "Ext", "file": {"externalUrl": "` + external.URL + `"}}`))
		case "/resources/55/versions":
			w.Write([]byte(`[{"id": 3, "name": "2.0", "releaseDate": 1700000000, "testedVersions": ["1.20"]}]`))
		case "/resources/55/versions/3/download":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	})

	got, err := s.Resolve(context.Background(), "55", "", "1.20")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if got.URL != external.URL {
		t.Errorf("URL = %s, want external", got.URL)
	}
	if got.Filename != "ext-2.0.jar" {
		t.Errorf("Filename = %q", got.Filename)
	}
}

func TestResolveExternalURLNotJAR(t *testing.T) {
	external := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>download page</html>"))
	}))
	defer external.Close()

	s := testSource(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/resources/56":
			w.Write([]byte(`{"id": 56, "name": "Page", "file": {"externalUrl": "` + external.URL + `"}}`))
		case "/resources/56/versions":
			w.Write([]byte(`[{"id": 4, "name": "1.0", "releaseDate": 1700000000, "testedVersions": ["1.20"]}]`))
		case "/resources/56/versions/4/download":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	})

	_, err := s.Resolve(context.Background(), "56", "", "1.20")
	if err == nil || !strings.Contains(err.Error(), "does not point to a JAR file") {
		t.Errorf("want JAR content-type error, got %v", err)
	}
}

func TestResolveCloudflareBlockedWithoutExternalURL(t *testing.T) {
	s := testSource(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/resources/57":
			w.Write([]byte(`{"id": 57, "name": "Blocked"}`))
		case "/resources/57/versions":
			w.Write([]byte(`[{"id": 5, "name": "1.0", "releaseDate": 1700000000, "testedVersions": ["1.20"]}]`))
		case "/resources/57/versions/5/download":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	})

	_, err := s.Resolve(context.Background(), "57", "", "1.20")
	if err == nil || !strings.Contains(err.Error(), "Cloudflare") {
		t.Errorf("want Cloudflare hint, got %v", err)
	}
}

func TestResolveUnknownResource(t *testing.T) {
	s := testSource(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := s.Resolve(context.Background(), "99999", "", "")
	if !errors.Is(err, errors.CodeNotFound) {
		t.Errorf("want CodeNotFound, got %v", err)
	}
}
