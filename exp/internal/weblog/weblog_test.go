package weblog

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `IP,Time,URL,Staus
10.128.2.1,[29/Nov/2017:06:58:55,GET /login.php HTTP/1.1,200
10.131.0.1,[29/Nov/2017:06:59:02,POST /process.php HTTP/1.1,302
chmod:,cannot,access 'a.txt': No such file,
10.130.2.1,[29/Nov/2017:07:00:10,GET /home.php HTTP/1.1, 404 
::1,[29/Nov/2017:07:01:00,GET / HTTP/1.1,[500]
10.128.2.1,[29/Nov/2017:07:02:00,GET / HTTP/1.1,
`

func TestParse(t *testing.T) {
	records, stats, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	assert.Equal(t, Stats{Rows: 6, Kept: 4, BadIP: 1, BadCode: 1}, stats)

	exp := []Record{
		{IP: netip.MustParseAddr("10.128.2.1"), Status: 200},
		{IP: netip.MustParseAddr("10.131.0.1"), Status: 302},
		{IP: netip.MustParseAddr("10.130.2.1"), Status: 404},
		{IP: netip.MustParseAddr("::1"), Status: 500},
	}
	assert.Equal(t, exp, records)
}

func TestParseHeader(t *testing.T) {
	_, _, err := Parse(strings.NewReader("Addr,Status\n1.2.3.4,200\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, _, err = Parse(strings.NewReader("IP,Code\n1.2.3.4,200\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)

	records, _, err := Parse(strings.NewReader("Status, ip \n200,1.2.3.4\n"))
	require.NoError(t, err)
	assert.Equal(t, []Record{{IP: netip.MustParseAddr("1.2.3.4"), Status: 200}}, records)
}

func TestEncodeIP(t *testing.T) {
	test := []struct {
		ip  string
		exp float64
	}{
		{"0.0.0.1", 1},
		{"10.128.2.1", 10<<24 | 128<<16 | 2<<8 | 1},
		{"::ffff:10.128.2.1", 10<<24 | 128<<16 | 2<<8 | 1},
		{"::1", 1},
		{"2001:db8::2:1", 2<<16 | 1},
	}
	for _, tt := range test {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.exp, EncodeIP(netip.MustParseAddr(tt.ip)))
		})
	}
}

func TestVectors(t *testing.T) {
	v := Vectors([]Record{{IP: netip.MustParseAddr("0.0.1.0"), Status: 404}})
	assert.Equal(t, [][]float64{{256, 404}}, v)
}

func TestLoader(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(sample))
	}))
	defer srv.Close()

	l := NewLoader(t.TempDir(), 5*time.Second)
	records, stats, err := l.Load(srv.URL + "/weblog.csv")
	require.NoError(t, err)
	assert.Len(t, records, 4)
	assert.Equal(t, 4, stats.Kept)
	assert.GreaterOrEqual(t, hits, 1)

	path := filepath.Join(t.TempDir(), "weblog.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	fromFile, _, err := l.Load(path)
	require.NoError(t, err)
	assert.Equal(t, records, fromFile)

	_, _, err = l.Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
