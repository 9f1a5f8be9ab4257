package isp

import "time"

// Config holds the session configuration.
type Config struct {
	// ProgressCallback is called during Flash to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// CommandDelay is slept between writing a request and reading its
	// response, giving the ROM time to act
	CommandDelay time.Duration
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		CommandDelay: 200 * time.Millisecond,
	}
}

// Option is a functional option for configuring the Session.
type Option func(*Config)

// WithProgressCallback sets a callback to track provisioning progress.
//
// Example:
//
//	sess := isp.New(port,
//	    isp.WithProgressCallback(func(p isp.Progress) {
//	        fmt.Printf("%s: %d/%d\n", p.Phase, p.BytesWritten, p.TotalBytes)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for session operations.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithCommandDelay sets the delay between writing a request and reading
// its response. Mostly useful for tests driving an in-memory transport.
func WithCommandDelay(delay time.Duration) Option {
	return func(c *Config) {
		if delay >= 0 {
			c.CommandDelay = delay
		}
	}
}
