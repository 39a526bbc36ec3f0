package models

import (
	"strings"
	"time"
)

// Brand identifies the vendor family of an OLT. Brand strings are stored
// lower-cased; ParseBrand normalizes before lookup.
type Brand string

const (
	BrandHioso   Brand = "hioso"
	BrandVSOL    Brand = "vsol"
	BrandUnknown Brand = "unknown"
)

// ParseBrand normalizes a free-form brand string to a Brand value.
// Unrecognized brands map to BrandUnknown; the collector registry rejects
// them at startup.
func ParseBrand(s string) Brand {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hioso":
		return BrandHioso
	case "vsol":
		return BrandVSOL
	default:
		return BrandUnknown
	}
}

// Device represents a physical OLT tracked by OLTWatch. Immutable during a
// reconciliation run; owned by the inventory repository.
type Device struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Brand    Brand     `json:"brand"`
	Host     string    `json:"host"`
	Username string    `json:"username"`
	Password string    `json:"-"`
	PonCount int       `json:"pon_count"`
	Active   bool      `json:"active"`
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"last_seen,omitempty"`
}

// UplinkRouter is an upstream router polled over SNMP for basic system info.
type UplinkRouter struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Host      string    `json:"host"`
	Community string    `json:"-"`
	Port      int       `json:"port"`
	Enabled   bool      `json:"enabled"`
	SysName   string    `json:"sys_name,omitempty"`
	SysDescr  string    `json:"sys_descr,omitempty"`
	SysUptime int64     `json:"sys_uptime,omitempty"`
	LastSeen  time.Time `json:"last_seen,omitempty"`
}
