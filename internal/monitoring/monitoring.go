package monitoring

import (
	"time"

	nuts "github.com/vaudience/go-nuts"
)

// Config holds monitoring configuration
type Config struct {
	LogLevel string
}

// Service provides lightweight event monitoring
type Service struct {
	config Config
}

// NewService creates a new monitoring service
func NewService(config Config) *Service {
	return &Service{
		config: config,
	}
}

// RecordEvent records a monitored event with labels
func (s *Service) RecordEvent(eventName string, labels map[string]string) {
	ts := time.Now()
	nuts.L.Infof("[Monitoring] Event %s recorded at %v with labels: %v", eventName, ts, labels)
}
