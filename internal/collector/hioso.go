package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/oltwatch/pkg/models"
)

// Hioso scrapes HIOSO OLTs over their embedded web server. The UI serves
// ONU tables as a JavaScript array (ponOnuTable) embedded in ASP pages;
// plain HTTP basic auth, no session state.
type Hioso struct {
	client *http.Client
	logger *zap.Logger
}

// NewHioso creates a HIOSO collector with the given per-request timeout.
func NewHioso(timeout time.Duration, logger *zap.Logger) *Hioso {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Hioso{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// hiosoOnuFields is the column count of one ONU entry in ponOnuTable.
const hiosoOnuFields = 13

var (
	hiosoPonRe   = regexp.MustCompile(`'(\d+/\d+/\d+)'`)
	hiosoTableRe = regexp.MustCompile(`(?s)var\s+ponOnuTable\s*=\s*new Array\s*\((.*?)\);`)
	hiosoFieldRe = regexp.MustCompile(`'(.*?)'`)
)

// Fetch implements Collector.
func (h *Hioso) Fetch(ctx context.Context, device *models.Device) ([]models.OnuRecord, error) {
	base := "http://" + device.Host

	// Login test: the root page 401s on bad credentials.
	if _, err := h.get(ctx, device, base+"/"); err != nil {
		return nil, &Error{Host: device.Host, Err: fmt.Errorf("login: %w", err)}
	}

	body, err := h.get(ctx, device, base+"/onuConfigPonList.asp")
	if err != nil {
		return nil, &Error{Host: device.Host, Err: fmt.Errorf("pon list: %w", err)}
	}

	pons := parseHiosoPonList(body)
	if len(pons) == 0 {
		return nil, &Error{Host: device.Host, Err: fmt.Errorf("no PON ports found")}
	}

	var records []models.OnuRecord
	for _, ponPath := range pons {
		pon, ok := ponFromPath(ponPath)
		if !ok {
			continue
		}

		page, err := h.get(ctx, device, base+"/onuConfigOnuList.asp?oltponno="+ponPath)
		if err != nil {
			return nil, &Error{Host: device.Host, Err: fmt.Errorf("pon %s: %w", ponPath, err)}
		}

		for _, row := range parseHiosoOnuRows(page) {
			rec, ok := hiosoRecord(pon, row)
			if !ok {
				continue
			}
			records = append(records, rec)
		}
	}

	h.logger.Debug("hioso fetch complete",
		zap.String("host", device.Host),
		zap.Int("pons", len(pons)),
		zap.Int("onu", len(records)),
	)
	return records, nil
}

func (h *Hioso) get(ctx context.Context, device *models.Device, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(device.Username, device.Password)
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", url, err)
	}
	return string(body), nil
}

// parseHiosoPonList extracts the sorted unique PON paths ("0/0/1" style)
// from the PON list page.
func parseHiosoPonList(page string) []string {
	seen := make(map[string]bool)
	var pons []string
	for _, m := range hiosoPonRe.FindAllStringSubmatch(page, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			pons = append(pons, m[1])
		}
	}
	sort.Strings(pons)
	return pons
}

// parseHiosoOnuRows splits the embedded ponOnuTable JS array into per-ONU
// field rows. Short trailing rows are dropped.
func parseHiosoOnuRows(page string) [][]string {
	m := hiosoTableRe.FindStringSubmatch(page)
	if m == nil {
		return nil
	}

	var fields []string
	for _, f := range hiosoFieldRe.FindAllStringSubmatch(m[1], -1) {
		fields = append(fields, f[1])
	}

	var rows [][]string
	for i := 0; i+hiosoOnuFields <= len(fields); i += hiosoOnuFields {
		rows = append(rows, fields[i:i+hiosoOnuFields])
	}
	return rows
}

// ponFromPath takes the trailing number of a "rack/shelf/port" path.
func ponFromPath(path string) (int, bool) {
	parts := strings.Split(path, "/")
	n, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// hiosoRecord converts one ponOnuTable row into an OnuRecord. Field layout:
// 0 = "pon:onu" id, 1 = name, 2 = MAC, 3 = status, 9 = tx, 11 = rx.
func hiosoRecord(pon int, row []string) (models.OnuRecord, bool) {
	if len(row) < hiosoOnuFields {
		return models.OnuRecord{}, false
	}

	idPart := row[0]
	if i := strings.LastIndex(idPart, ":"); i >= 0 {
		idPart = idPart[i+1:]
	}
	onuID, err := strconv.Atoi(idPart)
	if err != nil {
		return models.OnuRecord{}, false
	}

	return models.OnuRecord{
		Pon:     pon,
		OnuID:   onuID,
		Name:    row[1],
		MAC:     row[2],
		Status:  normalizeHiosoStatus(strings.TrimSpace(row[3])),
		TxPower: parseLevel(row[9]),
		RxPower: parseLevel(row[11]),
	}, true
}

// normalizeHiosoStatus maps the web UI's status spellings to the tokens
// stored in onu_status.
func normalizeHiosoStatus(raw string) string {
	switch raw {
	case "Up":
		return "ONLINE"
	case "Down":
		return "DOWN"
	case "PwrDown", "Power Down", "PowerOff":
		return "POWER_OFF"
	default:
		return "UNKNOWN"
	}
}

// parseLevel parses an optical level field; empty or junk means the device
// didn't report one.
func parseLevel(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
