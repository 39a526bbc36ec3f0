package probe

import (
	"testing"

	"github.com/gosnmp/gosnmp"
)

func TestStripPort(t *testing.T) {
	tests := map[string]string{
		"192.168.1.10:8080": "192.168.1.10",
		"192.168.1.10":      "192.168.1.10",
		"olt-1.example.com": "olt-1.example.com",
		"olt-1.example:80":  "olt-1.example",
	}
	for in, want := range tests {
		if got := stripPort(in); got != want {
			t.Errorf("stripPort(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSnmpString(t *testing.T) {
	if got := snmpString(gosnmp.SnmpPDU{Value: []byte("router-1")}); got != "router-1" {
		t.Errorf("bytes value = %q", got)
	}
	if got := snmpString(gosnmp.SnmpPDU{Value: "router-2"}); got != "router-2" {
		t.Errorf("string value = %q", got)
	}
	if got := snmpString(gosnmp.SnmpPDU{Value: 42}); got != "" {
		t.Errorf("non-string value = %q, want empty", got)
	}
}
