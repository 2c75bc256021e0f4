package bench

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/sema/vgaharness/pkg/console"
	"github.com/sema/vgaharness/pkg/sim"
	"github.com/sema/vgaharness/pkg/tqv"
)

// Scenario is a named program together with the setup it runs on
type Scenario struct {
	Name        string
	Description string
	Setup       Setup
	Program     Program
}

// clearedRegisters is the number of registers zeroed before a scenario
// writes its text, covering the cells and the first control registers
const clearedRegisters = 36

// Colors used by the built-in scenarios, RRGGBB
const (
	colorConsole uint8 = 0x3C
	colorNavy    uint8 = 0x01
)

// peripheralColors gives every letter of "PERIPHERAL" its own color
var peripheralColors = []uint8{0x30, 0x0C, 0x03, 0x3C, 0x33, 0x0F, 0x20, 0x08, 0x02, 0x2A}

// rainbow cycles through the hues the console can show at full intensity
var rainbow = []uint8{0x30, 0x34, 0x3C, 0x0C, 0x0F, 0x03, 0x23, 0x33}

var (
	// ScenarioCIRO writes "CIRO!" into the first cells
	ScenarioCIRO = Scenario{
		Name:        "ciro",
		Description: `"CIRO!" at cells 0-4 on a cleared console`,
		Setup:       SetupVGA,
		Program: func(t *sim.Task, d tqv.Driver) error {
			if err := Fill(t, d, 0, clearedRegisters, 0); err != nil {
				return err
			}
			return WriteText(t, d, 0, "CIRO!")
		},
	}

	// ScenarioConsole fills all three rows with differently colored text
	ScenarioConsole = Scenario{
		Name:        "console",
		Description: "three rows of colored text on a navy background",
		Setup:       SetupVGA,
		Program: func(t *sim.Task, d tqv.Driver) error {
			if err := Fill(t, d, 0, console.Cells, ' '); err != nil {
				return err
			}
			if err := WriteText(t, d, 0, "VGA"); err != nil {
				return err
			}
			if err := WriteColoredText(t, d, console.Columns, "CONSOLE", []uint8{colorConsole}); err != nil {
				return err
			}
			if err := WriteColoredText(t, d, 2*console.Columns, "PERIPHERAL", peripheralColors); err != nil {
				return err
			}
			return d.WriteByteRegister(t, int(console.RegisterBackground), colorNavy)
		},
	}

	// ScenarioRainbow is the console layout in rainbow colors at 1024x768
	ScenarioRainbow = Scenario{
		Name:        "rainbow",
		Description: "three rows of rainbow text at 1024x768",
		Setup:       SetupXGA,
		Program: func(t *sim.Task, d tqv.Driver) error {
			if err := Fill(t, d, 0, console.Cells, ' '); err != nil {
				return err
			}
			for row, text := range []string{"VGA", "CONSOLE", "PERIPHERAL"} {
				offset := row * console.Columns
				colors := rainbow[row%len(rainbow):]
				colors = append(colors, rainbow[:row%len(rainbow)]...)
				if err := WriteColoredText(t, d, offset, text, colors); err != nil {
					return err
				}
			}
			return d.WriteByteRegister(t, int(console.RegisterBackground), 0)
		},
	}
)

var scenarios = map[string]Scenario{
	ScenarioCIRO.Name:    ScenarioCIRO,
	ScenarioConsole.Name: ScenarioConsole,
	ScenarioRainbow.Name: ScenarioRainbow,
}

func LookupScenario(name string) (Scenario, error) {
	s, ok := scenarios[name]
	if !ok {
		return Scenario{}, errors.Errorf("unknown scenario %q", name)
	}
	return s, nil
}

// Scenarios returns the built-in scenarios ordered by name
func Scenarios() []Scenario {
	var list []Scenario
	for _, s := range scenarios {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}

// WriteText writes text into consecutive cells from offset, in the default
// color
func WriteText(t *sim.Task, d tqv.Driver, offset int, text string) error {
	for i := 0; i < len(text); i++ {
		if err := d.WriteByteRegister(t, offset+i, text[i]); err != nil {
			return errors.Wrapf(err, "unable to write %q", text)
		}
	}
	return nil
}

// WriteColoredText writes text into consecutive cells from offset. Character
// i gets colors[i], repeating the colors if there are fewer than characters.
func WriteColoredText(t *sim.Task, d tqv.Driver, offset int, text string, colors []uint8) error {
	if len(colors) == 0 {
		return errors.New("no colors given")
	}
	for i := 0; i < len(text); i++ {
		color := colors[i%len(colors)] & 0x3F
		if err := d.WriteWordRegister(t, offset+i, uint16(color)<<8|uint16(text[i])); err != nil {
			return errors.Wrapf(err, "unable to write %q", text)
		}
	}
	return nil
}

// Fill writes v to the registers from start up to, not including, end
func Fill(t *sim.Task, d tqv.Driver, start, end int, v uint8) error {
	for address := start; address < end; address++ {
		if err := d.WriteByteRegister(t, address, v); err != nil {
			return err
		}
	}
	return nil
}
