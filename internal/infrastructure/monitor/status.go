package monitor

import "time"

const (
	StorePostgres = "postgresql"
	StoreRedis    = "redis"
	StoreBuffer   = "buffer"
)

// Status is the last probe result for every store the service writes to.
type Status struct {
	PostgreSQL bool              `json:"postgresql"`
	Redis      bool              `json:"redis"`
	Buffer     bool              `json:"buffer"`
	BufferSize int               `json:"buffer_size"`
	Pending    map[string]int    `json:"pending,omitempty"`
	Failures   map[string]string `json:"failures,omitempty"`
	LastCheck  time.Time         `json:"last_check"`
}

// Online reports whether the primary stores are reachable, so buffered writes may be replayed.
func (s Status) Online() bool {
	return s.PostgreSQL && s.Redis
}

// Healthy additionally requires the local buffer to be usable.
func (s Status) Healthy() bool {
	return s.Online() && s.Buffer
}

func (s *Status) set(store string, err error) {
	ok := err == nil
	switch store {
	case StorePostgres:
		s.PostgreSQL = ok
	case StoreRedis:
		s.Redis = ok
	case StoreBuffer:
		s.Buffer = ok
	}
	if ok {
		return
	}
	if s.Failures == nil {
		s.Failures = make(map[string]string)
	}
	s.Failures[store] = err.Error()
}
