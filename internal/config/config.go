package config

import "github.com/tamzrod/rebootloopd/internal/logger"

type Config struct {
	Detector   DetectorConfig   `yaml:"detector"`
	Escalation EscalationConfig `yaml:"escalation"`
	Log        logger.Config    `yaml:"log"`
}

// ---- DETECTOR ----

type DetectorConfig struct {
	StartupInfoFile      string  `yaml:"startup_info_file"`
	MinRebootIntervalSec int     `yaml:"min_reboot_interval_sec"`
	MaxRebootCount       *uint32 `yaml:"max_reboot_count"` // nil => default; 0 is a valid policy
}

// ---- ESCALATION ----

const (
	TransportNone   = "none"
	TransportModbus = "modbus"
	TransportIngest = "ingest"
	TransportNATS   = "nats"
)

const (
	RequestMalf     = "malf"
	RequestShutdown = "shutdown"
)

type EscalationConfig struct {
	Transport  string `yaml:"transport"`
	Request    string `yaml:"request"`
	TimeoutMs  int    `yaml:"timeout_ms"`
	DeviceName string `yaml:"device_name"`

	Modbus RegisterTargetConfig `yaml:"modbus"`
	Ingest RegisterTargetConfig `yaml:"ingest"`
	NATS   NATSConfig           `yaml:"nats"`
}

// RegisterTargetConfig locates the request block in a register memory.
type RegisterTargetConfig struct {
	Endpoint string `yaml:"endpoint"`
	UnitID   uint8  `yaml:"unit_id"`
	Slot     uint16 `yaml:"slot"` // block index; address = slot * status.SlotsPerDevice
}

type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
	Name    string `yaml:"name"` // client connection name
}
