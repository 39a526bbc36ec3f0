package collector

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/HerbHall/oltwatch/pkg/models"
)

// VSOL scrapes V-SOL OLTs through their web UI with a headless browser.
// The UI renders ONU tables client-side behind a login form, so a plain
// HTTP fetch sees nothing; rod drives a real Chromium session instead.
type VSOL struct {
	timeout    time.Duration
	logger     *zap.Logger
	controlURL string // optional pre-launched browser, used by tests
}

// NewVSOL creates a V-SOL collector. timeout bounds the whole fetch,
// including browser launch.
func NewVSOL(timeout time.Duration, logger *zap.Logger) *VSOL {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &VSOL{timeout: timeout, logger: logger}
}

const defaultPonCount = 4

// Fetch implements Collector.
func (v *VSOL) Fetch(ctx context.Context, device *models.Device) ([]models.OnuRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	records, err := v.fetch(ctx, device)
	if err != nil {
		return nil, &Error{Host: device.Host, Err: err}
	}
	return records, nil
}

func (v *VSOL) fetch(ctx context.Context, device *models.Device) ([]models.OnuRecord, error) {
	base := "http://" + device.Host

	controlURL := v.controlURL
	if controlURL == "" {
		url, err := launcher.New().Headless(true).Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = url
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: base + "/action/login.html"})
	if err != nil {
		return nil, fmt.Errorf("open login page: %w", err)
	}

	if err := v.login(page, device); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	ponCount := device.PonCount
	if ponCount <= 0 {
		ponCount = defaultPonCount
	}

	units := make(map[models.OnuKey]vsolUnit)
	levels := make(map[models.OnuKey]vsolLevels)

	for pon := 1; pon <= ponCount; pon++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		statusPage, err := v.ponPage(ctx, page, base+"/action/onustatusinfo.html", pon)
		if err != nil {
			// A PON with no units never populates its table; skip it.
			v.logger.Debug("vsol status table empty",
				zap.String("host", device.Host), zap.Int("pon", pon), zap.Error(err))
			continue
		}

		ponUnits := parseVSOLStatus(statusPage)
		online := make(map[models.OnuKey]bool)
		for k, u := range ponUnits {
			units[k] = u
			if u.Status == "ONLINE" {
				online[k] = true
			}
		}

		if len(online) == 0 {
			continue
		}

		opmPage, err := v.ponPage(ctx, page, base+"/action/onuopmdiag.html", pon)
		if err != nil {
			v.logger.Debug("vsol optics table empty",
				zap.String("host", device.Host), zap.Int("pon", pon), zap.Error(err))
			continue
		}
		for k, l := range parseVSOLOptics(opmPage, online) {
			levels[k] = l
		}
	}

	records := mergeVSOL(units, levels)
	v.logger.Debug("vsol fetch complete",
		zap.String("host", device.Host),
		zap.Int("onu", len(records)),
	)
	return records, nil
}

func (v *VSOL) login(page *rod.Page, device *models.Device) error {
	user, err := page.Element(`input[name="user"]`)
	if err != nil {
		return fmt.Errorf("user field: %w", err)
	}
	if err := user.Input(device.Username); err != nil {
		return err
	}

	pass, err := page.Element(`input[name="pass"]`)
	if err != nil {
		return fmt.Errorf("password field: %w", err)
	}
	if err := pass.Input(device.Password); err != nil {
		return err
	}

	btn, err := page.Element("#loginBtn")
	if err != nil {
		return fmt.Errorf("login button: %w", err)
	}
	if err := btn.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}

	// Landing page renders a table once the session is up.
	if _, err := page.Element("table"); err != nil {
		return fmt.Errorf("post-login page: %w", err)
	}
	return nil
}

// ponPage navigates to url, switches the PON selector, and returns the page
// HTML once the data table has rows.
func (v *VSOL) ponPage(ctx context.Context, page *rod.Page, url string, pon int) (string, error) {
	if err := page.Navigate(url); err != nil {
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("load %s: %w", url, err)
	}

	if _, err := page.Element(`select[name="select"]`); err != nil {
		return "", fmt.Errorf("pon selector: %w", err)
	}
	_, err := page.Eval(`(v) => {
		const s = document.querySelector('select[name="select"]');
		s.value = v;
		s.dispatchEvent(new Event('change', {bubbles: true}));
	}`, strconv.Itoa(pon))
	if err != nil {
		return "", fmt.Errorf("select pon %d: %w", pon, err)
	}

	return v.waitTable(ctx, page)
}

// waitTable polls until the bordered data table has at least one data row.
// A PON with no units never grows rows, so the wait is bounded separately
// from the fetch deadline.
func (v *VSOL) waitTable(ctx context.Context, page *rod.Page) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		src, err := page.HTML()
		if err == nil && len(lastBorderTable(src)) > 0 {
			return src, nil
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("waiting for table: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
