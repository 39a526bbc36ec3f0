package collector

import (
	"testing"

	"github.com/HerbHall/oltwatch/pkg/models"
)

// The VSOL UI renders layout tables before the live data table; only the
// data table carries border="1" and it is always the last one.
const vsolStatusPage = `
<html><body>
<table><tr><td>nav</td></tr></table>
<table border="1">
<tr><th>ONU</th><th>Status</th><th>MAC</th><th>Name</th><th>c4</th><th>c5</th><th>c6</th><th>c7</th><th>Reason</th><th>c9</th></tr>
<tr><td>0/1:1</td><td>Online</td><td>80:14:A8:00:00:01</td><td>CustomerA</td><td></td><td></td><td></td><td></td><td>-</td><td></td></tr>
<tr><td>0/1:2</td><td>Offline</td><td>80:14:A8:00:00:02</td><td>CustomerB</td><td></td><td></td><td></td><td></td><td>Power Off</td><td></td></tr>
<tr><td>0/1:3</td><td>Offline</td><td>80:14:A8:00:00:03</td><td>CustomerC</td><td></td><td></td><td></td><td></td><td>Wire Down</td><td></td></tr>
<tr><td>0/1:4</td><td>Offline</td><td>80:14:A8:00:00:04</td><td>CustomerD</td><td></td><td></td><td></td><td></td><td>Unknown Reason</td><td></td></tr>
</table>
</body></html>`

const vsolOpticsPage = `
<html><body>
<table border="1">
<tr><th>ONU</th><th>c1</th><th>c2</th><th>c3</th><th>c4</th><th>c5</th><th>c6</th><th>Tx</th><th>Rx</th></tr>
<tr><td>0/1:1</td><td></td><td></td><td></td><td></td><td></td><td></td><td>2.1</td><td>-19.4</td></tr>
<tr><td>0/1:2</td><td></td><td></td><td></td><td></td><td></td><td></td><td>-</td><td>-</td></tr>
</table>
</body></html>`

func TestParseVSOLStatus(t *testing.T) {
	units := parseVSOLStatus(vsolStatusPage)
	if len(units) != 4 {
		t.Fatalf("units = %d, want 4", len(units))
	}

	tests := []struct {
		key    models.OnuKey
		status string
		name   string
	}{
		{models.OnuKey{Pon: 1, OnuID: 1}, "ONLINE", "CustomerA"},
		{models.OnuKey{Pon: 1, OnuID: 2}, "POWER_OFF", "CustomerB"},
		{models.OnuKey{Pon: 1, OnuID: 3}, "WIRE_DOWN", "CustomerC"},
		{models.OnuKey{Pon: 1, OnuID: 4}, "UNKNOWN", "CustomerD"},
	}
	for _, tt := range tests {
		u, ok := units[tt.key]
		if !ok {
			t.Errorf("missing unit %v", tt.key)
			continue
		}
		if u.Status != tt.status {
			t.Errorf("unit %v status = %q, want %q", tt.key, u.Status, tt.status)
		}
		if u.Name != tt.name {
			t.Errorf("unit %v name = %q, want %q", tt.key, u.Name, tt.name)
		}
	}
}

func TestParseVSOLOptics_OnlineOnly(t *testing.T) {
	online := map[models.OnuKey]bool{
		{Pon: 1, OnuID: 1}: true,
		// 0/1:2 is offline; its row must be ignored even though present.
	}
	levels := parseVSOLOptics(vsolOpticsPage, online)

	if len(levels) != 1 {
		t.Fatalf("levels = %d, want 1", len(levels))
	}
	l := levels[models.OnuKey{Pon: 1, OnuID: 1}]
	if l.Rx == nil || *l.Rx != -19.4 {
		t.Errorf("Rx = %v, want -19.4", l.Rx)
	}
	if l.Tx == nil || *l.Tx != 2.1 {
		t.Errorf("Tx = %v, want 2.1", l.Tx)
	}
}

func TestParseVSOLKey(t *testing.T) {
	tests := []struct {
		in   string
		want models.OnuKey
		ok   bool
	}{
		{"0/1:2", models.OnuKey{Pon: 1, OnuID: 2}, true},
		{"1:7", models.OnuKey{Pon: 1, OnuID: 7}, true},
		{" 0/4:16 ", models.OnuKey{Pon: 4, OnuID: 16}, true},
		{"0/4:16", models.OnuKey{Pon: 4, OnuID: 16}, true},
		{"garbage", models.OnuKey{}, false},
		{"", models.OnuKey{}, false},
	}
	for _, tt := range tests {
		got, ok := parseVSOLKey(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("parseVSOLKey(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMergeVSOL_SortedByKey(t *testing.T) {
	units := map[models.OnuKey]vsolUnit{
		{Pon: 2, OnuID: 1}: {Name: "b", Status: "ONLINE"},
		{Pon: 1, OnuID: 9}: {Name: "a2", Status: "POWER_OFF"},
		{Pon: 1, OnuID: 2}: {Name: "a1", Status: "ONLINE"},
	}
	rx := -20.5
	levels := map[models.OnuKey]vsolLevels{
		{Pon: 1, OnuID: 2}: {Rx: &rx},
	}

	records := mergeVSOL(units, levels)
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}

	wantOrder := []models.OnuKey{{Pon: 1, OnuID: 2}, {Pon: 1, OnuID: 9}, {Pon: 2, OnuID: 1}}
	for i, want := range wantOrder {
		if records[i].Key() != want {
			t.Errorf("records[%d].Key() = %v, want %v", i, records[i].Key(), want)
		}
	}
	if records[0].RxPower == nil || *records[0].RxPower != -20.5 {
		t.Errorf("records[0].RxPower = %v, want -20.5", records[0].RxPower)
	}
	if records[1].RxPower != nil {
		t.Errorf("records[1].RxPower = %v, want nil (no optics row)", records[1].RxPower)
	}
}

func TestLastBorderTable(t *testing.T) {
	rows := lastBorderTable(vsolStatusPage)
	if len(rows) != 4 {
		t.Fatalf("data rows = %d, want 4 (header stripped)", len(rows))
	}
	if rows[0][0] != "0/1:1" {
		t.Errorf("rows[0][0] = %q, want 0/1:1", rows[0][0])
	}

	if rows := lastBorderTable("<html><p>no tables</p></html>"); rows != nil {
		t.Errorf("pageless table = %v, want nil", rows)
	}
	if rows := lastBorderTable(`<table border="1"><tr><th>only header</th></tr></table>`); rows != nil {
		t.Errorf("header-only table = %v, want nil", rows)
	}
}
