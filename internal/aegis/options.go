package aegis

import (
	"github.com/spf13/pflag"

	authzopts "github.com/kart-io/aegis/pkg/options/authz"
	dbopts "github.com/kart-io/aegis/pkg/options/db"
	jwtopts "github.com/kart-io/aegis/pkg/options/jwt"
	logopts "github.com/kart-io/aegis/pkg/options/logger"
	redisopts "github.com/kart-io/aegis/pkg/options/redis"
	serveropts "github.com/kart-io/aegis/pkg/options/server"
)

// Options aggregates the configuration of all server components.
type Options struct {
	Server *serveropts.Options `json:"server" mapstructure:"server"`
	DB     *dbopts.Options     `json:"db" mapstructure:"db"`
	Redis  *redisopts.Options  `json:"redis" mapstructure:"redis"`
	JWT    *jwtopts.Options    `json:"jwt" mapstructure:"jwt"`
	Authz  *authzopts.Options  `json:"authz" mapstructure:"authz"`
	Log    *logopts.Options    `json:"log" mapstructure:"log"`
}

// NewOptions creates Options with default values.
func NewOptions() *Options {
	return &Options{
		Server: serveropts.NewOptions(),
		DB:     dbopts.NewOptions(),
		Redis:  redisopts.NewOptions(),
		JWT:    jwtopts.NewOptions(),
		Authz:  authzopts.NewOptions(),
		Log:    logopts.NewOptions(),
	}
}

// AddFlags adds all component flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.Server.AddFlags(fs)
	o.DB.AddFlags(fs)
	o.Redis.AddFlags(fs)
	o.JWT.AddFlags(fs)
	o.Authz.AddFlags(fs)
	o.Log.AddFlags(fs)
}

// Complete fills in derived defaults.
func (o *Options) Complete() error {
	return nil
}

// Validate validates all component options.
func (o *Options) Validate() error {
	if err := o.Server.Validate(); err != nil {
		return err
	}
	if err := o.DB.Validate(); err != nil {
		return err
	}
	if err := o.Redis.Validate(); err != nil {
		return err
	}
	if err := o.JWT.Validate(); err != nil {
		return err
	}
	if err := o.Authz.Validate(); err != nil {
		return err
	}
	return o.Log.Validate()
}
