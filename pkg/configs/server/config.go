package server

import "time"

// ServerConfig is the sealed configuration of footprintweb.
//
// To get one, use TrySeal on a ServerConfigMarshall, or Load.
type ServerConfig struct {
	port         int32
	database     string
	seeds        string
	session      *SessionConfig
	housekeeping *HousekeepingConfig
}

func (c *ServerConfig) Port() int32 {
	return c.port
}

// Connection string of postgres. Empty means graphs are kept in memory.
func (c *ServerConfig) Database() string {
	return c.database
}

// Path of a seed file extending the built-in seeds. It may be empty.
func (c *ServerConfig) Seeds() string {
	return c.seeds
}

func (c *ServerConfig) Session() *SessionConfig {
	return c.session
}

func (c *ServerConfig) Housekeeping() *HousekeepingConfig {
	return c.housekeeping
}

type SessionConfig struct {
	cookie string
	key    []byte
	ttl    time.Duration
}

// Name of the cookie carrying session tokens.
func (s *SessionConfig) Cookie() string {
	return s.cookie
}

// Key signing session tokens.
func (s *SessionConfig) Key() []byte {
	return s.key
}

// Lifetime of session tokens.
func (s *SessionConfig) TTL() time.Duration {
	return s.ttl
}

type HousekeepingConfig struct {
	interval time.Duration
	idle     time.Duration
}

// How often idle graphs are expired.
func (h *HousekeepingConfig) Interval() time.Duration {
	return h.interval
}

// Graphs not saved for this duration are expired.
func (h *HousekeepingConfig) Idle() time.Duration {
	return h.idle
}
