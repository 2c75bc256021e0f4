package bench

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/sema/vgaharness/pkg/console"
	"github.com/sema/vgaharness/pkg/timing"
)

// Setup pairs a console video mode with the timing the grabber uses to
// decode it. The two are configured independently; a mismatch shows up as a
// skewed frame.
type Setup struct {
	Name   string
	Mode   console.Mode
	Timing timing.Config
}

var (
	SetupVGA = Setup{
		Name:   "vga",
		Mode:   console.ModeVGA,
		Timing: timing.VGA640x480,
	}

	SetupXGA = Setup{
		Name:   "xga",
		Mode:   console.ModeXGA,
		Timing: timing.XGA1024x768,
	}

	SetupMini = Setup{
		Name:   "mini",
		Mode:   console.ModeMini,
		Timing: timing.Mini96x56,
	}
)

var setups = map[string]Setup{
	SetupVGA.Name:  SetupVGA,
	SetupXGA.Name:  SetupXGA,
	SetupMini.Name: SetupMini,
}

func LookupSetup(name string) (Setup, error) {
	s, ok := setups[name]
	if !ok {
		return Setup{}, errors.Errorf("unknown setup %q", name)
	}
	return s, nil
}

// SetupNames lists the setup names in alphabetical order
func SetupNames() []string {
	var names []string
	for name := range setups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Backend selects how the bench reaches the console registers
type Backend string

const (
	// BackendSPI uses the SPI test bus
	BackendSPI Backend = "spi"

	// BackendCPU runs load/store programs on the peripheral bus
	BackendCPU Backend = "cpu"
)

func (b Backend) Validate() error {
	switch b {
	case BackendSPI, BackendCPU:
		return nil
	}
	return errors.Errorf("unknown backend %q", string(b))
}
