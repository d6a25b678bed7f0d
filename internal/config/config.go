package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/gridzilla/internal/layout"
	"github.com/coreman2200/gridzilla/internal/scheduler"
	"github.com/coreman2200/gridzilla/internal/transform"
)

type Topology struct {
	Controllers      []string `yaml:"controllers"`
	ControllerWidth  int      `yaml:"controller_width"`  // universes across
	ControllerHeight int      `yaml:"controller_height"` // universes down
	UniverseWidth    int      `yaml:"universe_width"`    // pixels
	UniverseHeight   int      `yaml:"universe_height"`   // pixels

	SourcePort          int  `yaml:"source_port"`
	SendOnlyChangeData  bool `yaml:"send_only_change_data"`
	SendSequenceNumbers bool `yaml:"send_sequence_numbers"`
}

type Scheduler struct {
	PeriodMs      int `yaml:"period_ms"`
	GraceMs       int `yaml:"grace_ms"`
	IdleBackoffMs int `yaml:"idle_backoff_ms"`
}

// Names are the plain text lists message names are checked against.
type Names struct {
	CensusFile     string `yaml:"census_file"`
	AdditionalFile string `yaml:"additional_file"` // also where added names are saved
	Password       string `yaml:"password,omitempty"`
}

type Strip struct {
	Port         string `yaml:"port"` // e.g. /dev/spidev0.0, empty for the first one
	FlipEveryRow bool   `yaml:"flip_every_row"`
}

type Config struct {
	TargetEnv string `yaml:"target_env"` // "Dev" picks the preview when transform is auto
	Transform string `yaml:"transform"`  // artnet | preview | terminal | strip | auto
	Mirror    bool   `yaml:"mirror_preview"`
	Addr      string `yaml:"addr"`
	ImageDir  string `yaml:"image_dir"`
	Show      string `yaml:"show"`

	Topology  Topology  `yaml:"topology"`
	Scheduler Scheduler `yaml:"scheduler"`
	Strip     Strip     `yaml:"strip,omitempty"`
	Names     Names     `yaml:"names"`

	Shows map[string][]SceneSpec `yaml:"shows"`
}

// Default is the Farmstead installation: three controllers, each driving
// 4x3 universes of 14x12 pixels.
func Default() *Config {
	return &Config{
		TargetEnv: "Prod",
		Transform: transform.KindAuto,
		Addr:      ":8000",
		ImageDir:  "images",
		Show:      "Holiday",
		Topology: Topology{
			Controllers:      []string{"10.7.87.6", "10.7.87.8", "10.7.87.10"},
			ControllerWidth:  4,
			ControllerHeight: 3,
			UniverseWidth:    14,
			UniverseHeight:   12,
			SourcePort:       6454,
		},
		Scheduler: Scheduler{
			PeriodMs:      int(scheduler.DefaultPeriod / time.Millisecond),
			GraceMs:       int(scheduler.DefaultGrace / time.Millisecond),
			IdleBackoffMs: int(scheduler.DefaultIdleBackoff / time.Millisecond),
		},
		Names: Names{
			CensusFile:     "names-census.txt",
			AdditionalFile: "names-additional.txt",
		},
		Shows: DefaultShows(),
	}
}

// Load reads path over the defaults, so a file only needs the keys it
// changes. Shows in the file are added to the built-in ones.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", layout.ErrConfiguration, path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate checks everything that can be checked before any output is
// opened.
func (c *Config) Validate() error {
	if err := c.LayoutTopology().Validate(); err != nil {
		return err
	}
	if _, ok := c.Shows[c.Show]; !ok {
		return fmt.Errorf("%w: unknown show %q", layout.ErrConfiguration, c.Show)
	}
	for name, specs := range c.Shows {
		for i, s := range specs {
			if err := s.validate(); err != nil {
				return fmt.Errorf("show %s scene %d: %w", name, i, err)
			}
		}
	}
	return nil
}

func (c *Config) LayoutTopology() layout.Topology {
	t := c.Topology
	return layout.Topology{
		Controllers:         append([]string(nil), t.Controllers...),
		ControllerWidth:     t.ControllerWidth,
		ControllerHeight:    t.ControllerHeight,
		UniverseWidth:       t.UniverseWidth,
		UniverseHeight:      t.UniverseHeight,
		SourcePort:          t.SourcePort,
		SendOnlyChangeData:  t.SendOnlyChangeData,
		SendSequenceNumbers: t.SendSequenceNumbers,
	}
}

func (c *Config) SchedulerOptions() scheduler.Options {
	return scheduler.Options{
		Period:      ms(c.Scheduler.PeriodMs),
		Grace:       ms(c.Scheduler.GraceMs),
		IdleBackoff: ms(c.Scheduler.IdleBackoffMs),
	}
}

func (c *Config) TransformOptions() transform.Options {
	return transform.Options{
		Kind:         c.Transform,
		TargetEnv:    c.TargetEnv,
		Topology:     c.LayoutTopology(),
		Mirror:       c.Mirror,
		StripPort:    c.Strip.Port,
		FlipEveryRow: c.Strip.FlipEveryRow,
	}
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }
