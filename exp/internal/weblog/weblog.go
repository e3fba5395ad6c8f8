package weblog

import (
	"encoding/binary"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/yyyoichi/httpcache-go"
)

var ErrMissingColumn = errors.New("weblog: missing column")

// Record is one cleaned weblog row.
type Record struct {
	IP     netip.Addr
	Status int
}

// Vector encodes r as (ip, status). IPv4 addresses map to their 32-bit integer value and
// IPv6 addresses to their low 64 bits.
func (r Record) Vector() []float64 {
	return []float64{EncodeIP(r.IP), float64(r.Status)}
}

func EncodeIP(ip netip.Addr) float64 {
	ip = ip.Unmap()
	if ip.Is4() {
		b := ip.As4()
		return float64(binary.BigEndian.Uint32(b[:]))
	}
	b := ip.As16()
	return float64(binary.BigEndian.Uint64(b[8:]))
}

// Stats counts what Parse kept and dropped.
type Stats struct {
	Rows    int
	Kept    int
	BadIP   int
	BadCode int
}

// Parse reads a weblog CSV. The IP and status columns are located by header name;
// "Staus" is accepted for the status column since the public weblog dataset ships with
// that spelling. Rows with an empty or unparsable field are dropped. Status cells keep
// only their digits, so "404 " and "[200]" both read as codes.
func Parse(r io.Reader) ([]Record, Stats, error) {
	var stats Stats
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read header: %w", err)
	}
	ipCol, statusCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "ip":
			ipCol = i
		case "status", "staus":
			statusCol = i
		}
	}
	if ipCol < 0 {
		return nil, stats, fmt.Errorf("%w: IP", ErrMissingColumn)
	}
	if statusCol < 0 {
		return nil, stats, fmt.Errorf("%w: Status", ErrMissingColumn)
	}

	var records []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("failed to read row %d: %w", stats.Rows+1, err)
		}
		stats.Rows++
		if max(ipCol, statusCol) >= len(row) {
			stats.BadIP++
			continue
		}
		ip, err := netip.ParseAddr(strings.TrimSpace(row[ipCol]))
		if err != nil {
			stats.BadIP++
			continue
		}
		code, ok := cleanStatus(row[statusCol])
		if !ok {
			stats.BadCode++
			continue
		}
		records = append(records, Record{IP: ip, Status: code})
	}
	stats.Kept = len(records)
	return records, stats, nil
}

func cleanStatus(s string) (int, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 || b.Len() > 3 {
		return 0, false
	}
	code, err := strconv.Atoi(b.String())
	if err != nil || code < 100 {
		return 0, false
	}
	return code, true
}

// Loader opens weblog sources from disk or over http(s). Remote sources are cached on
// disk so repeated sweeps do not refetch them.
type Loader struct {
	client httpcache.Client
}

func NewLoader(cacheDir string, timeout time.Duration) *Loader {
	return &Loader{
		client: httpcache.Client{
			Client:  &http.Client{Timeout: timeout},
			Cache:   httpcache.NewStorageCache(cacheDir),
			Handler: httpcache.NewDefaultHandler(),
		},
	}
}

// Load parses the weblog at src, a file path or an http(s) URL.
func (l *Loader) Load(src string) ([]Record, Stats, error) {
	body, err := l.open(src)
	if err != nil {
		return nil, Stats{}, err
	}
	defer body.Close()

	records, stats, err := Parse(body)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to parse %s: %w", src, err)
	}
	log.Info().
		Str("source", src).
		Int("rows", stats.Rows).
		Int("kept", stats.Kept).
		Int("bad_ip", stats.BadIP).
		Int("bad_status", stats.BadCode).
		Msg("weblog loaded")
	return records, stats, nil
}

func (l *Loader) open(src string) (io.ReadCloser, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("failed to open weblog: %w", err)
		}
		return f, nil
	}
	resp, err := l.client.Get(src)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("bad status: %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// Vectors encodes records as clustering input.
func Vectors(records []Record) [][]float64 {
	out := make([][]float64, len(records))
	for i, r := range records {
		out[i] = r.Vector()
	}
	return out
}
