package probe

import (
	"fmt"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/HerbHall/oltwatch/pkg/models"
)

// System group OIDs (RFC 1213).
const (
	oidSysDescr  = "1.3.6.1.2.1.1.1.0"
	oidSysUptime = "1.3.6.1.2.1.1.3.0"
	oidSysName   = "1.3.6.1.2.1.1.5.0"
)

// SystemInfo is the result of a router poll.
type SystemInfo struct {
	SysName   string
	SysDescr  string
	SysUptime int64 // hundredths of a second
}

// SNMPPoller reads the system group from uplink routers over SNMPv2c.
type SNMPPoller struct {
	timeout time.Duration
	retries int
}

// NewSNMPPoller creates a poller with the given per-request timeout.
func NewSNMPPoller(timeout time.Duration) *SNMPPoller {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SNMPPoller{timeout: timeout, retries: 1}
}

// Poll fetches sysName, sysDescr and sysUptime from one router.
func (p *SNMPPoller) Poll(router *models.UplinkRouter) (*SystemInfo, error) {
	port := router.Port
	if port == 0 {
		port = 161
	}
	community := router.Community
	if community == "" {
		community = "public"
	}

	client := &gosnmp.GoSNMP{
		Target:    router.Host,
		Port:      uint16(port),
		Community: community,
		Version:   gosnmp.Version2c,
		Timeout:   p.timeout,
		Retries:   p.retries,
	}

	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("snmp connect %s: %w", router.Host, err)
	}
	defer client.Conn.Close()

	packet, err := client.Get([]string{oidSysName, oidSysDescr, oidSysUptime})
	if err != nil {
		return nil, fmt.Errorf("snmp get %s: %w", router.Host, err)
	}

	var info SystemInfo
	for _, v := range packet.Variables {
		switch v.Name {
		case "." + oidSysName:
			info.SysName = snmpString(v)
		case "." + oidSysDescr:
			info.SysDescr = snmpString(v)
		case "." + oidSysUptime:
			info.SysUptime = gosnmp.ToBigInt(v.Value).Int64()
		}
	}
	return &info, nil
}

func snmpString(v gosnmp.SnmpPDU) string {
	switch val := v.Value.(type) {
	case []byte:
		return string(val)
	case string:
		return val
	default:
		return ""
	}
}
