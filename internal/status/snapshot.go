package status

// Snapshot is exactly what a request writer is allowed to deliver.
// It contains no logic.
type Snapshot struct {
	RequestCode uint16
	RebootCount uint32
	LastStartup int64
	DetectedAt  int64
	DeviceName  string
}
