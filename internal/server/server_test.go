package server_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/psst/internal/server"
)

func testConfig() server.Config {
	return server.Config{
		TemplateDir: filepath.Join("..", "..", "web", "templates"),
		StaticDir:   filepath.Join("..", "..", "web", "static"),
		DBPath:      ":memory:",
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := server.New(testConfig(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	require.NoError(t, srv.DB().SampleData(context.Background(), false))

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// browser returns a client that keeps cookies and follows redirects.
func browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func page(t *testing.T, resp *http.Response) *goquery.Document {
	t.Helper()
	defer resp.Body.Close()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	return doc
}

func TestNew_BadTemplateDir(t *testing.T) {
	cfg := testConfig()
	cfg.TemplateDir = t.TempDir()

	_, err := server.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func TestLoginPostLogout(t *testing.T) {
	ts := newTestServer(t)
	client := browser(t)

	// Log in; the redirect lands on the home page with the session cookie.
	resp, err := client.PostForm(ts.URL+"/login", url.Values{"nick": {"Bean"}, "password": {"jb"}})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := page(t, resp)
	require.Equal(t, 1, doc.Find("form#logoutform").Length())

	// Post something.
	resp, err = client.PostForm(ts.URL+"/post", url.Values{"post": {"end to end @Contrary"}})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc = page(t, resp)
	first := doc.Find("article.post").First()
	assert.Equal(t, "Bean", first.Find(".author").Text())
	assert.Equal(t, "@Contrary", first.Find(".content a").Text())

	// It shows up on the mentions page.
	resp, err = client.Get(ts.URL + "/mentions/Contrary")
	require.NoError(t, err)
	assert.Equal(t, 3, page(t, resp).Find("article.post").Length())

	// Log out; posting is refused afterwards.
	resp, err = client.PostForm(ts.URL+"/logout", nil)
	require.NoError(t, err)
	doc = page(t, resp)
	assert.Equal(t, 1, doc.Find("form#loginform").Length())

	resp, err = client.PostForm(ts.URL+"/post", url.Values{"post": {"after logout"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestStaticFiles(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/static/style.css")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/css")
}

func TestAPI(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/posts?limit=1")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestAPICreatePost_RequiresLogin(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/posts", "application/json", strings.NewReader(`{"content":"hi"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	client := browser(t)
	resp, err = client.PostForm(ts.URL+"/login", url.Values{"nick": {"Bean"}, "password": {"jb"}})
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.Post(ts.URL+"/api/posts", "application/json", strings.NewReader(`{"content":"hi"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nowhere")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
