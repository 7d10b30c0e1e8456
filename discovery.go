package regclient

import "github.com/horockey/regclient/internal/model"

type (
	RegistryEntry = model.RegistryEntry
	ActiveWindow  = model.ActiveWindow
)

// MonitorServiceName is the logical name heartbeats and logs are sent to.
const MonitorServiceName = "monitor"
