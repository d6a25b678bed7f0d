package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/coreman2200/gridzilla/internal/config"
	"github.com/coreman2200/gridzilla/internal/layout"
	"github.com/coreman2200/gridzilla/internal/loop"
	"github.com/coreman2200/gridzilla/internal/names"
	"github.com/coreman2200/gridzilla/internal/pixel"
	"github.com/coreman2200/gridzilla/internal/scene"
	"github.com/coreman2200/gridzilla/internal/scheduler"
	"github.com/coreman2200/gridzilla/internal/server"
	"github.com/coreman2200/gridzilla/internal/transform"
)

var (
	configPath string
	logLevel   string
	show       string
	output     string
	addr       string
	targetEnv  string
	imageView  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "gridzilla",
		Short:         "drive the Gridzilla light grid",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
		RunE: runShow,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config.yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug | info | warn | error")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the selected show until interrupted",
		RunE:  runShow,
	}
	for _, c := range []*cobra.Command{rootCmd, runCmd} {
		c.Flags().StringVar(&show, "show", "", "show to run (overrides config and SHOW)")
		c.Flags().StringVar(&output, "transform", "", "artnet | preview | terminal | strip | auto")
		c.Flags().StringVar(&addr, "addr", "", "HTTP listen address")
		c.Flags().StringVar(&targetEnv, "env", "", "target environment, Dev selects the preview")
	}

	topologyCmd := &cobra.Command{
		Use:   "topology",
		Short: "list every universe and the canvas area it covers",
		RunE:  printTopology,
	}

	locateCmd := &cobra.Command{
		Use:   "locate [x] [y]",
		Short: "print the controller, universe and channel of a pixel",
		Args:  cobra.ExactArgs(2),
		RunE:  locatePixel,
	}
	locateCmd.Flags().BoolVar(&imageView, "image", false, "y counts down from the top row")

	showsCmd := &cobra.Command{
		Use:   "shows",
		Short: "list the configured shows",
		RunE:  listShows,
	}

	initCmd := &cobra.Command{
		Use:   "init-config",
		Short: "write the default configuration to --config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("%s already exists", configPath)
			}
			return config.Save(configPath, config.Default())
		},
	}

	rootCmd.AddCommand(runCmd, topologyCmd, locateCmd, showsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("gridzilla")
	}
}

func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	return nil
}

// loadConfig reads --config if present, then the environment, then flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Warn().Str("path", configPath).Msg("no config file, using defaults")
		cfg = config.Default()
	case err != nil:
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if show != "" {
		cfg.Show = show
	}
	if output != "" {
		cfg.Transform = output
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if targetEnv != "" {
		cfg.TargetEnv = targetEnv
	}
	return cfg, cfg.Validate()
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	topo := cfg.LayoutTopology()
	mapper, err := layout.NewMapper(topo)
	if err != nil {
		return err
	}

	l := loop.New()
	sched := scheduler.New(l, cfg.SchedulerOptions(), log.With().Str("component", "scheduler").Logger())
	srv := server.New(l, sched, log.With().Str("component", "server").Logger())

	to := cfg.TransformOptions()
	to.Publisher = srv
	to.Log = log.With().Str("component", "transform").Logger()
	out, err := transform.New(to)
	if err != nil {
		return err
	}
	defer closeOutput(out)

	canvas := pixel.New(topo.Width(), topo.Height())
	env := scene.Env{
		Loop:      l,
		Transform: out,
		Canvas:    canvas,
		Done:      sched.Completed,
		Log:       log.With().Str("component", "scene").Logger(),
	}
	sh, err := cfg.BuildShow(env, mapper)
	if err != nil {
		return err
	}
	srv.Attach(sh.Scenes, sh.Messages)

	nl, err := names.Load(cfg.Names.CensusFile, cfg.Names.AdditionalFile, log.With().Str("component", "names").Logger())
	if err != nil {
		return err
	}
	if nl.Len() == 0 {
		log.Warn().Str("census", cfg.Names.CensusFile).Msg("no name lists, message names are not checked")
	} else {
		for _, m := range sh.Messages {
			m.CheckNames(nl)
		}
	}
	srv.ServeNames(nl, cfg.Names.Password)

	httpSrv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	l.Post(func() {
		if err := sched.Start(sh.Scenes); err != nil {
			log.Error().Err(err).Msg("start scheduler")
		}
	})
	g.Go(func() error {
		if err := l.Run(gctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr).Str("show", sh.Name).Str("transform", to.Resolve()).
			Int("width", topo.Width()).Int("height", topo.Height()).Msg("HTTP server starting")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(sctx)
	})
	err = g.Wait()

	// loop has stopped; blank the grid on the way out
	canvas.Clear()
	if terr := out.TransformScreen(canvas); terr != nil {
		log.Warn().Err(terr).Msg("blank grid")
	}
	return err
}

func closeOutput(t transform.Transform) {
	if c, ok := t.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("close output")
		}
	}
}

func printTopology(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	m, err := layout.NewMapper(cfg.LayoutTopology())
	if err != nil {
		return err
	}
	t := m.Topology()
	fmt.Fprintf(cmd.OutOrStdout(), "canvas %dx%d, %d controllers, %d universes each, %d channels per universe\n\n",
		m.Width(), m.Height(), len(t.Controllers), t.UniversesPerController(), t.ChannelsPerUniverse())

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CONTROLLER\tADDRESS\tUNIVERSE\tCANVAS X\tCANVAS Y")
	per := t.UniversesPerController()
	for i, u := range t.Universes() {
		r, err := m.Region(i/per, u.Universe)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d-%d\t%d-%d\n", i/per, u.Address, u.Universe,
			r.Min.X, r.Max.X-1, r.Min.Y, r.Max.Y-1)
	}
	return w.Flush()
}

func locatePixel(cmd *cobra.Command, args []string) error {
	x, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("x: %w", err)
	}
	y, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("y: %w", err)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	m, err := layout.NewMapper(cfg.LayoutTopology())
	if err != nil {
		return err
	}
	if imageView {
		y = m.Height() - 1 - y
	}
	a, err := m.Map(x, y)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "pixel (%d,%d): controller %d (%s) universe %d channels %d-%d\n",
		x, y, a.Controller, a.Device, a.Universe, a.Channel, a.Channel+2)
	return nil
}

func listShows(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	for _, name := range cfg.ShowNames() {
		mark := " "
		if name == cfg.Show {
			mark = "*"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d scenes)\n", mark, name, len(cfg.Shows[name]))
	}
	return nil
}
