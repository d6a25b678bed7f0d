package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env"

	"github.com/coreman2200/gridzilla/internal/layout"
)

// Overrides are read from the environment and win over the config file.
type Overrides struct {
	TargetEnv string `env:"TARGET_ENV"`
	Show      string `env:"SHOW"`
	Port      string `env:"PORT"`
	Transform string `env:"GRIDZILLA_TRANSFORM"`
	ImageDir  string `env:"GRIDZILLA_IMAGE_DIR"`

	NamesPassword string `env:"GRIDZILLA_NAMES_PASSWORD"`
}

// ApplyEnv copies every set variable onto c.
func (c *Config) ApplyEnv() error {
	var o Overrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("%w: environment: %v", layout.ErrConfiguration, err)
	}
	c.Apply(o)
	return nil
}

func (c *Config) Apply(o Overrides) {
	if o.TargetEnv != "" {
		c.TargetEnv = o.TargetEnv
	}
	if o.Show != "" {
		c.Show = o.Show
	}
	if o.Port != "" {
		c.Addr = ":" + strings.TrimPrefix(o.Port, ":")
	}
	if o.Transform != "" {
		c.Transform = o.Transform
	}
	if o.ImageDir != "" {
		c.ImageDir = o.ImageDir
	}
	if o.NamesPassword != "" {
		c.Names.Password = o.NamesPassword
	}
}
