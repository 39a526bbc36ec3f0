package collector

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/HerbHall/oltwatch/pkg/models"
)

// vsolUnit is the per-unit state scraped from the VSOL status page before
// optical levels are merged in.
type vsolUnit struct {
	MAC    string
	Name   string
	Status string
}

// vsolLevels holds one unit's optical readings from the OPM page.
type vsolLevels struct {
	Rx *float64
	Tx *float64
}

// parseBorderTables returns the cell text of every <table border="1"> in the
// page, one [][]string per table, header rows included.
func parseBorderTables(page string) [][][]string {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil
	}

	var tables [][][]string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" && attrVal(n, "border") == "1" {
			tables = append(tables, tableRows(n))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return tables
}

func attrVal(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func tableRows(table *html.Node) [][]string {
	var rows [][]string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, strings.TrimSpace(nodeText(c)))
				}
			}
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	return rows
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}

// lastBorderTable returns the data rows (header stripped) of the last
// bordered table on the page, the VSOL UI's convention for the live table.
func lastBorderTable(page string) [][]string {
	tables := parseBorderTables(page)
	if len(tables) == 0 {
		return nil
	}
	rows := tables[len(tables)-1]
	if len(rows) <= 1 {
		return nil
	}
	return rows[1:]
}

// parseVSOLKey parses a "0/1:2"-style interface id into (pon, onu).
func parseVSOLKey(s string) (models.OnuKey, bool) {
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	ponStr, onuStr, ok := strings.Cut(s, ":")
	if !ok {
		return models.OnuKey{}, false
	}
	pon, err1 := strconv.Atoi(strings.TrimSpace(ponStr))
	onu, err2 := strconv.Atoi(strings.TrimSpace(onuStr))
	if err1 != nil || err2 != nil {
		return models.OnuKey{}, false
	}
	return models.OnuKey{Pon: pon, OnuID: onu}, true
}

// parseVSOLStatus extracts unit state from the status page. Columns:
// 0 = interface id, 1 = status, 2 = MAC, 3 = name, 8 = offline reason.
func parseVSOLStatus(page string) map[models.OnuKey]vsolUnit {
	units := make(map[models.OnuKey]vsolUnit)
	for _, cols := range lastBorderTable(page) {
		if len(cols) < 10 {
			continue
		}
		key, ok := parseVSOLKey(cols[0])
		if !ok {
			continue
		}

		status := "UNKNOWN"
		switch {
		case cols[1] == "Online":
			status = "ONLINE"
		case cols[8] == "Power Off":
			status = "POWER_OFF"
		case cols[8] == "Wire Down":
			status = "WIRE_DOWN"
		}

		units[key] = vsolUnit{MAC: cols[2], Name: cols[3], Status: status}
	}
	return units
}

// parseVSOLOptics extracts rx/tx levels from the OPM page for units in the
// online set. Columns: 0 = interface id, 7 = tx, 8 = rx.
func parseVSOLOptics(page string, online map[models.OnuKey]bool) map[models.OnuKey]vsolLevels {
	levels := make(map[models.OnuKey]vsolLevels)
	for _, cols := range lastBorderTable(page) {
		if len(cols) < 9 {
			continue
		}
		key, ok := parseVSOLKey(cols[0])
		if !ok || !online[key] {
			continue
		}
		levels[key] = vsolLevels{
			Tx: parseLevel(cols[7]),
			Rx: parseLevel(cols[8]),
		}
	}
	return levels
}

// mergeVSOL joins status and optics into records ordered by (pon, onu).
func mergeVSOL(units map[models.OnuKey]vsolUnit, levels map[models.OnuKey]vsolLevels) []models.OnuRecord {
	keys := make([]models.OnuKey, 0, len(units))
	for k := range units {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Pon != keys[j].Pon {
			return keys[i].Pon < keys[j].Pon
		}
		return keys[i].OnuID < keys[j].OnuID
	})

	records := make([]models.OnuRecord, 0, len(keys))
	for _, k := range keys {
		u := units[k]
		rec := models.OnuRecord{
			Pon:    k.Pon,
			OnuID:  k.OnuID,
			MAC:    u.MAC,
			Name:   u.Name,
			Status: u.Status,
		}
		if l, ok := levels[k]; ok {
			rec.RxPower = l.Rx
			rec.TxPower = l.Tx
		}
		records = append(records, rec)
	}
	return records
}
