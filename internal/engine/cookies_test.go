package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func withConfig(t *testing.T, c Config) {
	t.Helper()
	orig := cfg
	Init(c)
	t.Cleanup(func() { Init(orig) })
}

func TestParseCookiesTxt(t *testing.T) {
	content := "# Netscape HTTP Cookie File\n" +
		"# https://curl.se/docs/http-cookies.html\n" +
		"\n" +
		".google.com\tTRUE\t/\tTRUE\t1999999999\tSID\tabc123\n" +
		".google.com\tTRUE\t/\tFALSE\t0\tSESSIONID\ttemp\n" +
		".example.com\tTRUE\t/\tTRUE\t1999999999\ttracker\tnope\n" +
		"malformed line without tabs\n" +
		".youtube.com\tTRUE\t/\tTRUE\t1999999999\tVISITOR\tyt1\n"

	cookies, err := ParseCookiesTxt(writeTempFile(t, "cookies.txt", content))
	require.NoError(t, err)
	require.Len(t, cookies, 3, "non-google and malformed lines must be dropped")

	sid := cookies[0]
	assert.Equal(t, "SID", sid.Name)
	assert.Equal(t, "abc123", sid.Value)
	assert.Equal(t, ".google.com", sid.Domain)
	assert.Equal(t, "/", sid.Path)
	assert.True(t, sid.Secure)
	assert.Equal(t, float64(1999999999), sid.Expires)

	session := cookies[1]
	assert.Equal(t, "SESSIONID", session.Name)
	assert.False(t, session.Secure)
	assert.Zero(t, session.Expires, "expiration 0 means session cookie")

	assert.Equal(t, ".youtube.com", cookies[2].Domain)
}

func TestParseCookiesTxtMissingFile(t *testing.T) {
	_, err := ParseCookiesTxt(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestParseCookieCloud(t *testing.T) {
	content := `[
	  {
	    "data": {
	      "google.com": [
	        {
	          "domain": ".google.com",
	          "name": "SID",
	          "value": "abc",
	          "expirationDate": 1999999999.913,
	          "path": "/",
	          "secure": true,
	          "httpOnly": true,
	          "sameSite": "lax"
	        },
	        {
	          "domain": ".google.com",
	          "name": "NID",
	          "value": "x",
	          "path": "/",
	          "sameSite": "no_restriction"
	        }
	      ],
	      "example.com": [
	        {"domain": ".example.com", "name": "tracker", "value": "nope", "path": "/"}
	      ]
	    }
	  }
	]`

	cookies, err := ParseCookieCloud(writeTempFile(t, "cookie.json", content))
	require.NoError(t, err)
	require.Len(t, cookies, 2)

	byName := map[string]AuthCookie{}
	for _, c := range cookies {
		byName[c.Name] = c
	}

	sid := byName["SID"]
	assert.Equal(t, "Lax", sid.SameSite)
	assert.True(t, sid.HTTPOnly)
	assert.Equal(t, float64(1999999999), sid.Expires, "fractional expiration is truncated")

	nid := byName["NID"]
	assert.Equal(t, "None", nid.SameSite, "no_restriction maps to None")
	assert.Zero(t, nid.Expires)
}

func TestParseCookieCloudInvalid(t *testing.T) {
	t.Run("empty array", func(t *testing.T) {
		_, err := ParseCookieCloud(writeTempFile(t, "cookie.json", "[]"))
		assert.Error(t, err)
	})
	t.Run("not json", func(t *testing.T) {
		_, err := ParseCookieCloud(writeTempFile(t, "cookie.json", "not json"))
		assert.Error(t, err)
	})
}

func TestLoadStorageState(t *testing.T) {
	content := `{
	  "cookies": [
	    {"name": "SID", "value": "abc", "domain": ".google.com", "path": "/", "expires": 1999999999, "httpOnly": true, "secure": true, "sameSite": "Lax"}
	  ],
	  "origins": []
	}`

	cookies, err := LoadStorageState(writeTempFile(t, "storage_state.json", content))
	require.NoError(t, err)
	require.Len(t, cookies, 1)
	assert.Equal(t, "SID", cookies[0].Name)
	assert.Equal(t, "Lax", cookies[0].SameSite)
}

func TestLoadAuthCookiesPriority(t *testing.T) {
	storage := writeTempFile(t, "storage_state.json",
		`{"cookies":[{"name":"FROM_STATE","value":"1","domain":".google.com","path":"/"}]}`)
	cloud := writeTempFile(t, "cookie.json",
		`[{"data":{"google.com":[{"domain":".google.com","name":"FROM_CLOUD","value":"1","path":"/"}]}}]`)
	txt := writeTempFile(t, "cookies.txt",
		".google.com\tTRUE\t/\tTRUE\t0\tFROM_TXT\t1\n")

	t.Run("storage state wins", func(t *testing.T) {
		withConfig(t, Config{StorageStateFile: storage, CookieCloudFile: cloud, CookiesFile: txt})
		cookies, source := LoadAuthCookies()
		require.Equal(t, "storage_state", source)
		require.Len(t, cookies, 1)
		assert.Equal(t, "FROM_STATE", cookies[0].Name)
	})

	t.Run("cookiecloud next", func(t *testing.T) {
		withConfig(t, Config{CookieCloudFile: cloud, CookiesFile: txt})
		cookies, source := LoadAuthCookies()
		require.Equal(t, "cookiecloud", source)
		assert.Equal(t, "FROM_CLOUD", cookies[0].Name)
	})

	t.Run("cookies txt last", func(t *testing.T) {
		withConfig(t, Config{CookiesFile: txt})
		cookies, source := LoadAuthCookies()
		require.Equal(t, "cookies_txt", source)
		assert.Equal(t, "FROM_TXT", cookies[0].Name)
	})

	t.Run("broken source falls through", func(t *testing.T) {
		withConfig(t, Config{
			StorageStateFile: filepath.Join(t.TempDir(), "missing.json"),
			CookiesFile:      txt,
		})
		_, source := LoadAuthCookies()
		assert.Equal(t, "cookies_txt", source)
	})

	t.Run("nothing configured", func(t *testing.T) {
		withConfig(t, Config{})
		cookies, source := LoadAuthCookies()
		assert.Empty(t, source)
		assert.Nil(t, cookies)
	})
}

func TestCookieParams(t *testing.T) {
	cookies := []AuthCookie{
		{Name: "a", Value: "1", Domain: ".google.com", Path: "/", Expires: 1999999999, Secure: true, HTTPOnly: true, SameSite: "Strict"},
		{Name: "b", Value: "2", Domain: ".google.com", Path: "/", SameSite: "None"},
		{Name: "c", Value: "3", Domain: ".google.com", Path: "/"},
	}

	params := CookieParams(cookies)
	require.Len(t, params, 3)

	assert.Equal(t, proto.NetworkCookieSameSiteStrict, params[0].SameSite)
	assert.Equal(t, proto.TimeSinceEpoch(1999999999), params[0].Expires)
	assert.True(t, params[0].Secure)

	assert.Equal(t, proto.NetworkCookieSameSiteNone, params[1].SameSite)
	assert.Zero(t, params[1].Expires)

	assert.Empty(t, params[2].SameSite, "unset sameSite stays browser default")
}

func TestHasChromeLoginState(t *testing.T) {
	t.Run("no profile dir", func(t *testing.T) {
		withConfig(t, Config{ChromeUserDataDir: filepath.Join(t.TempDir(), "nope")})
		assert.False(t, HasChromeLoginState())
	})

	t.Run("unreadable db counts as present", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "Default"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "Default", "Cookies"), []byte("not a database"), 0o644))
		withConfig(t, Config{ChromeUserDataDir: dir})
		assert.True(t, HasChromeLoginState())
	})
}
