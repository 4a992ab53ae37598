package opensubtitles

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kolo/xmlrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamkit/popcorn/internal/app"
)

func testClient(t *testing.T, srvURL string) *Client {
	t.Helper()
	rpc, err := xmlrpc.NewClient(srvURL, nil)
	require.NoError(t, err)
	return &Client{rpc: rpc, username: "user", password: "pass"}
}

func xmlString(name, value string) string {
	return "<member><name>" + name + "</name><value><string>" + value + "</string></value></member>"
}

func subtitleStruct(language, iso, link string) string {
	return "<value><struct>" +
		xmlString("LanguageName", language) +
		xmlString("ISO639", iso) +
		xmlString("SubDownloadLink", link) +
		"</struct></value>"
}

func searchResponse(rows ...string) string {
	return `<?xml version="1.0"?><methodResponse><params><param><value><struct>` +
		xmlString("status", "200 OK") +
		"<member><name>data</name><value><array><data>" +
		strings.Join(rows, "") +
		"</data></array></value></member>" +
		"</struct></value></param></params></methodResponse>"
}

func TestLogin(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Write([]byte(`<?xml version="1.0"?><methodResponse><params><param><value><struct>` +
			xmlString("status", "200 OK") +
			xmlString("token", "session-token") +
			"</struct></value></param></params></methodResponse>"))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	token, err := c.Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "session-token", token)
	assert.Contains(t, gotBody, "<methodName>LogIn</methodName>")
	assert.Contains(t, gotBody, "user")
}

func TestSearchDeduplicatesAndSorts(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Write([]byte(searchResponse(
			subtitleStruct("Portuguese", "pt", "https://dl/pt1"),
			subtitleStruct("English", "en", "https://dl/en1"),
			subtitleStruct("English", "en", "https://dl/en2"),
			subtitleStruct("", "xx", "https://dl/none"),
		)))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	subtitles, err := c.Search(context.Background(), app.SubtitleQuery{Token: "session-token", ImdbID: "tt1375666"})
	require.NoError(t, err)

	// the imdb id goes over the wire without its tt prefix
	assert.NotContains(t, gotBody, "tt1375666")
	assert.Contains(t, gotBody, "1375666")

	// one subtitle per language, first hit wins, sorted by language
	require.Len(t, subtitles, 2)
	assert.Equal(t, "English", subtitles[0].Language)
	assert.Equal(t, "https://dl/en1", subtitles[0].Link)
	assert.Equal(t, "Portuguese", subtitles[1].Language)
}

func TestSearchRejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0"?><methodResponse><params><param><value><struct>` +
			xmlString("status", "401 Unauthorized") +
			"</struct></value></param></params></methodResponse>"))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.Search(context.Background(), app.SubtitleQuery{Token: "bad"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "401")
}
