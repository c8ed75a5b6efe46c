package templates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var brand = Brand{CompanyName: "Loopers", AppName: "commerce", SupportURL: "https://support.example.com"}

func TestRenderWelcome(t *testing.T) {
	data := NewWelcomeData(brand, "홍길동", "testuser1", "test@example.com",
		WithTime(time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)))

	subject, text, html, err := Render(Welcome, data)
	require.NoError(t, err)
	assert.Equal(t, "Welcome to commerce, 홍길동", subject)
	assert.Contains(t, text, "Login ID: testuser1")
	assert.Contains(t, text, "02 January 2026, 03:04")
	assert.Contains(t, html, "<strong>testuser1</strong>")
}

func TestRenderPasswordChangedEscapesHTML(t *testing.T) {
	data := NewPasswordChangedData(brand, "홍길동", "testuser1", "test@example.com",
		WithIP("203.0.113.9"), WithUserAgent("<script>x</script>"))

	subject, text, html, err := Render(PasswordChanged, data)
	require.NoError(t, err)
	assert.Equal(t, "Your commerce password was changed", subject)
	assert.Contains(t, text, "IP address: 203.0.113.9")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestExists(t *testing.T) {
	assert.True(t, Exists(Welcome))
	assert.True(t, Exists(PasswordChanged))
	assert.False(t, Exists("universal"))
}

func TestDefaultFn(t *testing.T) {
	assert.Equal(t, "fallback", defaultFn("fallback", ""))
	assert.Equal(t, "fallback", defaultFn("fallback", nil))
	assert.Equal(t, "fallback", defaultFn("fallback", 0))
	assert.Equal(t, "value", defaultFn("fallback", "value"))
	assert.Equal(t, 3, defaultFn("fallback", 3))
}

func TestIPAPIResolver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json/203.0.113.9", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","country":"South Korea","regionName":"Seoul","city":"Seoul","timezone":"Asia/Seoul"}`))
	}))
	defer srv.Close()

	r := IPAPIResolver{Client: srv.Client(), BaseURL: srv.URL}
	g, err := r.Lookup(context.Background(), "203.0.113.9")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Seoul", g.Timezone)
	assert.Equal(t, "Seoul, Seoul, South Korea", FormatGeo(g))

	d := NewBaseEmailData(brand, PasswordChanged, "n", "l", "e", WithGeoFromIP(context.Background(), r, "203.0.113.9"))
	assert.Equal(t, "Seoul, Seoul, South Korea", d.Location)
}

func TestIPAPIResolverSkipsPrivateAddresses(t *testing.T) {
	r := IPAPIResolver{BaseURL: "http://127.0.0.1:1"}
	for _, ip := range []string{"", "garbage", "10.0.0.1", "127.0.0.1", "192.168.1.5"} {
		_, err := r.Lookup(context.Background(), ip)
		assert.Error(t, err, ip)
	}
}
