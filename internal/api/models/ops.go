package models

// Health is the payload for the liveness and readiness endpoints.
type Health struct {
	Status    HealthStatus `json:"status"`
	Time      Timestamp    `json:"time"`
	Version   string       `json:"version,omitempty"`
	BuildTime string       `json:"buildTime,omitempty"`
	Detail    string       `json:"detail,omitempty"`
}

// SystemStatus is the payload for the status endpoint: per-subsystem and
// per-provider health, plus any feature flags currently degrading service.
type SystemStatus struct {
	Status        HealthStatus      `json:"status"`
	Time          Timestamp         `json:"time"`
	Subsystems    []SubsystemStatus `json:"subsystems"`
	Providers     []ProviderStatus  `json:"providers"`
	DisabledFlags []string          `json:"disabledFlags,omitempty"`
}

// SubsystemStatus reports one internal dependency, such as postgres.
type SubsystemStatus struct {
	Name   string       `json:"name"`
	Status HealthStatus `json:"status"`
	Detail string       `json:"detail,omitempty"`
}

// ProviderStatus reports one external mapping provider.
type ProviderStatus struct {
	Provider      string       `json:"provider"`
	Status        HealthStatus `json:"status"`
	LastSuccessAt *Timestamp   `json:"lastSuccessAt,omitempty"`
	LastFailureAt *Timestamp   `json:"lastFailureAt,omitempty"`
	LastError     string       `json:"lastError,omitempty"`
}
