package services

// HealthReply is the fixed liveness document.
type HealthReply struct {
	Status string `json:"status" example:"alive"`
}

// Health reports liveness. It has no dependencies and cannot fail.
func Health() HealthReply {
	return HealthReply{Status: "alive"}
}
