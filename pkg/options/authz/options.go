// Package authz provides authorization engine configuration options.
package authz

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
)

// Options defines configuration options for the authorization engine.
type Options struct {
	// ModelPath points to a Casbin model file. Empty means the built-in
	// domain RBAC model.
	ModelPath string `json:"model-path" mapstructure:"model-path"`

	// OperationTimeout bounds each adapter storage operation.
	OperationTimeout time.Duration `json:"operation-timeout" mapstructure:"operation-timeout"`

	// WatcherEnabled turns on policy replication over Redis pub/sub.
	WatcherEnabled bool `json:"watcher-enabled" mapstructure:"watcher-enabled"`

	// CacheKeyPrefix namespaces role cache keys in Redis.
	CacheKeyPrefix string `json:"cache-key-prefix" mapstructure:"cache-key-prefix"`
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		OperationTimeout: 10 * time.Second,
		WatcherEnabled:   true,
		CacheKeyPrefix:   "aegis:roles:",
	}
}

// Validate checks if the options are valid.
func (o *Options) Validate() error {
	if o.ModelPath != "" {
		if _, err := os.Stat(o.ModelPath); err != nil {
			return fmt.Errorf("authz model path: %w", err)
		}
	}
	if o.OperationTimeout <= 0 {
		return fmt.Errorf("authz operation timeout must be positive")
	}
	return nil
}

// AddFlags adds flags for authorization options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.ModelPath, "authz.model-path", o.ModelPath, "Casbin model file (empty = built-in domain RBAC model)")
	fs.DurationVar(&o.OperationTimeout, "authz.operation-timeout", o.OperationTimeout, "Policy storage operation timeout")
	fs.BoolVar(&o.WatcherEnabled, "authz.watcher-enabled", o.WatcherEnabled, "Enable policy replication via Redis pub/sub")
	fs.StringVar(&o.CacheKeyPrefix, "authz.cache-key-prefix", o.CacheKeyPrefix, "Role cache key prefix")
}
