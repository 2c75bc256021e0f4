package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/prometheus/common/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/sema/vgaharness/pkg/bench"
	"github.com/sema/vgaharness/pkg/frame"
	"github.com/sema/vgaharness/pkg/timing"
)

type runCmd struct {
	Script    string `help:"Run a Lua script instead of a built-in scenario" type:"path"`
	Setup     string `help:"Setup to run on (vga, xga, mini), defaults to the scenario's"`
	Backend   string `help:"Register driver (spi, cpu)" default:"spi"`
	Reference string `help:"Validate the acquired frame against this image" type:"path"`
	Update    bool   `help:"Write the acquired frame to --reference instead of validating"`
	Output    string `help:"Where to write the acquired frame" default:"vga_grab.png" type:"path"`
	Zoom      int    `help:"Magnify the written frame" default:"1"`
	Frames    int    `help:"Number of consecutive identical frames to acquire" default:"1"`

	Scenario string `arg:"" optional:"" name:"scenario" help:"Built-in scenario to run"`
}

func (r *runCmd) Run() error {
	if err := r.validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fs := afero.NewOsFs()

	var scenario bench.Scenario
	switch {
	case r.Script == "":
		if r.Scenario == "" {
			r.Scenario = bench.ScenarioCIRO.Name
		}
		s, err := bench.LookupScenario(r.Scenario)
		if err != nil {
			return err
		}
		scenario = s
	default:
		scenario = bench.Scenario{Name: filepath.Base(r.Script), Setup: bench.SetupVGA}
	}

	setup := scenario.Setup
	if r.Setup != "" {
		s, err := bench.LookupSetup(r.Setup)
		if err != nil {
			return err
		}
		setup = s
	}

	opts := []bench.Option{bench.WithBackend(bench.Backend(r.Backend))}
	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	if interactive {
		opts = append(opts, bench.WithLineCallback(progress(setup.Timing)))
	}
	b, err := bench.New(setup, opts...)
	if err != nil {
		return err
	}

	program := scenario.Program
	if r.Script != "" {
		script, err := bench.LoadScript(fs, r.Script)
		if err != nil {
			return err
		}
		program = script.Program(b.Clock())
	}

	got, runErr := b.Run(ctx, program, r.Frames)
	if interactive {
		fmt.Println()
	}
	if got == nil {
		return runErr
	}

	store, err := frame.NewStore(fs)
	if err != nil {
		return err
	}
	if err := saveFrame(store, r.Output, got, r.Zoom); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}

	fmt.Printf("%s on %s: %dx%d frame in %s simulated time\n",
		scenario.Name, setup.Name, got.Width, got.Height, b.Now())

	if r.Reference == "" {
		return nil
	}
	if r.Update {
		log.Infof("updating reference %s", r.Reference)
		return store.Save(r.Reference, got)
	}
	if err := store.Validate(got, r.Reference, ""); err != nil {
		return err
	}
	fmt.Printf("frame matches %s\n", r.Reference)
	return nil
}

func (r *runCmd) validate() error {
	switch {
	case r.Update && r.Reference == "":
		return errors.New("--update needs --reference")
	case r.Script != "" && r.Scenario != "":
		return errors.New("either a scenario or --script, not both")
	case r.Frames < 1:
		return errors.Errorf("--frames must be at least 1, got %d", r.Frames)
	case r.Zoom < 1:
		return errors.Errorf("--zoom must be at least 1, got %d", r.Zoom)
	}
	return nil
}

func saveFrame(store *frame.Store, path string, f *frame.Frame, zoom int) error {
	if zoom > 1 {
		return store.SaveZoomed(path, f, zoom)
	}
	return store.Save(path, f)
}

// progress redraws a single status line per scanline
func progress(cfg timing.Config) func(line, lines int) {
	return func(line, lines int) {
		if line%16 != 0 && line != lines-1 {
			return
		}
		fmt.Printf("\racquiring %s: line %d/%d", cfg.Name, line+1, lines)
	}
}

type checkCmd struct {
	Dir      string `help:"Directory holding <scenario>.png references" default:"pkg/bench/testdata" type:"path"`
	Backend  string `help:"Register driver (spi, cpu)" default:"spi"`
	Parallel int    `help:"Number of scenarios run at once" default:"2"`
	Update   bool   `help:"Rewrite the references instead of validating"`

	Scenarios []string `arg:"" optional:"" name:"scenario" help:"Scenarios to check, all by default"`
}

func (c *checkCmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var scenarios []bench.Scenario
	if len(c.Scenarios) == 0 {
		scenarios = bench.Scenarios()
	}
	for _, name := range c.Scenarios {
		s, err := bench.LookupScenario(name)
		if err != nil {
			return err
		}
		scenarios = append(scenarios, s)
	}

	store, err := frame.NewStore(afero.NewOsFs())
	if err != nil {
		return err
	}

	var (
		mu     sync.Mutex
		failed []string
	)
	var g errgroup.Group
	if c.Parallel > 0 {
		g.SetLimit(c.Parallel)
	}
	for _, s := range scenarios {
		s := s
		g.Go(func() error {
			if err := c.check(ctx, store, s); err != nil {
				log.With("scenario", s.Name).Errorf("%v", err)
				mu.Lock()
				failed = append(failed, s.Name)
				mu.Unlock()
				return nil
			}
			fmt.Printf("ok   %s (%s)\n", s.Name, s.Setup.Name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(failed) > 0 {
		return errors.Errorf("%d of %d scenarios failed: %v", len(failed), len(scenarios), failed)
	}
	return nil
}

func (c *checkCmd) check(ctx context.Context, store *frame.Store, s bench.Scenario) error {
	b, err := bench.New(s.Setup,
		bench.WithBackend(bench.Backend(c.Backend)),
		bench.WithLogger(log.With("scenario", s.Name)))
	if err != nil {
		return err
	}
	got, err := b.Run(ctx, s.Program, 1)
	if err != nil {
		return err
	}

	reference := filepath.Join(c.Dir, s.Name+".png")
	if c.Update {
		return store.Save(reference, got)
	}
	return store.Validate(got, reference, filepath.Join(c.Dir, s.Name+".grab.png"))
}

type listCmd struct{}

func (l *listCmd) Run() error {
	fmt.Println("scenarios:")
	for _, s := range bench.Scenarios() {
		fmt.Printf("  %-10s %-5s %s\n", s.Name, s.Setup.Name, s.Description)
	}

	fmt.Println("setups:")
	for _, name := range bench.SetupNames() {
		s, err := bench.LookupSetup(name)
		if err != nil {
			return err
		}
		fmt.Printf("  %-10s %s, pixel clock %s\n", name, s.Mode,
			humanize.SIWithDigits(s.Mode.ClockPeriod.Frequency(), 3, "Hz"))
	}
	return nil
}

var root struct {
	Debug bool `help:"Enable debug logging"`

	Run   runCmd   `cmd:"" help:"Acquire a frame from a scenario or script"`
	Check checkCmd `cmd:"" help:"Validate built-in scenarios against reference images"`
	List  listCmd  `cmd:"" help:"List scenarios and setups"`
}

func main() {
	cli := kong.Parse(&root)
	if root.Debug {
		if err := log.Base().SetLevel("debug"); err != nil {
			cli.FatalIfErrorf(err)
		}
	}
	err := cli.Run()
	cli.FatalIfErrorf(err)
}
