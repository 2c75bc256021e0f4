// main generates the instruction table of the TinyQV register driver's core.
//
// The table is described in spec.json and processed slightly to make the
// core's logic simpler: operand types are inferred from operand names and
// the bus width of loads and stores from their mnemonic. See the
// `instruction` and `operand` structs in pkg/tqv for the semantics of the
// generated table.
package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/pkg/errors"
	"github.com/prometheus/common/log"
)

const outputTemplate = `//go:generate go run ../../instruction-gen/main.go ../../instruction-gen/spec.json ./instructions.gen.go{{ printf "\n" }}//go:generate go fmt ./instructions.gen.go

// GENERATED FILE - Run "go generate ./..." to update

package tqv

import "github.com/sema/vgaharness/pkg/console"

var instructions = map[uint8]instruction{
{{ range .Instructions -}}
	{{ .Opcode }}: {
		Opcode:   {{ .Opcode }},
		Mnemonic: "{{ .Mnemonic }}",
		Cycles:   {{ .Cycles }},
		Operands: []operand{
			{{ range .Operands -}}
			{Name: "{{ .Name }}", Type: {{ .Type }}},{{ printf "\n" }}
			{{- end }}
		},
		Width: {{ .Width }},
	},{{ printf "\n" }}
{{- end }}}
`

// widthSuffixes maps the last letter of a load or store mnemonic to the bus
// width it uses
var widthSuffixes = map[string]string{
	"B": "console.WidthByte",
	"H": "console.WidthHalf",
	"W": "console.WidthWord",
}

type root struct {
	Instructions map[string]*instruction `json:"instructions"`
}

type instruction struct {
	Opcode   string     `json:"-"`
	Mnemonic string     `json:"mnemonic"`
	Cycles   int        `json:"cycles"`
	Operands []*operand `json:"operands"`
	Width    string     `json:"-"`
}

type operand struct {
	Name string `json:"name"`
	Type string `json:"-"`
}

type output struct {
	Instructions []*instruction
}

func main() {
	if len(os.Args) < 3 {
		log.Errorf("Usage: %s spec.json output.go", os.Args[0])
		os.Exit(1)
	}

	specPath := os.Args[1]
	outputPath := os.Args[2]

	if !strings.HasSuffix(outputPath, ".go") {
		log.Errorln("Expected output file to have a .go extension")
		os.Exit(1)
	}

	log.Infof("Generating instruction table")
	log.Infof("Spec: %s", specPath)
	log.Infof("Output: %s", outputPath)

	if err := generate(specPath, outputPath); err != nil {
		log.Fatal(err)
	}

	log.Infoln("Done")
}

func generate(specPath, outputPath string) error {
	instructionSpecRaw, err := ioutil.ReadFile(specPath)
	if err != nil {
		return errors.Wrap(err, "unable to read spec")
	}

	var instructionSpec root
	if err := json.Unmarshal(instructionSpecRaw, &instructionSpec); err != nil {
		return errors.Wrap(err, "unable to parse spec")
	}

	out, err := postprocessSpec(&instructionSpec)
	if err != nil {
		return err
	}

	tmpl, err := template.New("output").Parse(outputTemplate)
	if err != nil {
		return err
	}

	fp, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer fp.Close()

	log.Infof("Found %d instructions", len(out.Instructions))
	return tmpl.Execute(fp, out)
}

// postprocessSpec makes adjustments to the spec to simplify consumption in
// the core, and orders the instructions by opcode
func postprocessSpec(instructionSpec *root) (*output, error) {
	out := &output{}
	for opcode, inst := range instructionSpec.Instructions {
		if err := postprocessInstruction(opcode, inst); err != nil {
			return nil, errors.Wrapf(err, "instruction %s", opcode)
		}
		out.Instructions = append(out.Instructions, inst)
	}

	sort.Slice(out.Instructions, func(i, j int) bool {
		a, _ := strconv.ParseUint(out.Instructions[i].Opcode, 0, 8)
		b, _ := strconv.ParseUint(out.Instructions[j].Opcode, 0, 8)
		return a < b
	})
	return out, nil
}

func postprocessInstruction(opcode string, inst *instruction) error {
	v, err := strconv.ParseUint(opcode, 0, 8)
	if err != nil {
		return errors.Wrap(err, "invalid opcode")
	}
	inst.Opcode = fmt.Sprintf("0x%02X", v)

	if inst.Cycles < 1 {
		return errors.Errorf("%s must take at least one cycle", inst.Mnemonic)
	}

	// Loads and stores are the only instructions reaching the peripheral bus.
	// Their width is encoded in the last letter of the mnemonic, e.g. LHU and
	// SH both move 16 bits.
	inst.Width = "console.WidthNone"
	if strings.HasPrefix(inst.Mnemonic, "L") && inst.Mnemonic != "LI" && inst.Mnemonic != "LUI" ||
		strings.HasPrefix(inst.Mnemonic, "S") {
		suffix := strings.TrimSuffix(inst.Mnemonic, "U")
		width, ok := widthSuffixes[suffix[len(suffix)-1:]]
		if !ok {
			return errors.Errorf("unable to determine bus width of %s", inst.Mnemonic)
		}
		inst.Width = width
	}

	registers := 0
	for _, op := range inst.Operands {
		// Infer a "type" for each operand from its name, to differentiate
		// registers from immediates and peripheral addresses.
		switch op.Name {
		case "rd", "rs":
			op.Type = "operandReg"
			registers++
		case "imm16":
			op.Type = "operandImm16"
		case "addr6":
			op.Type = "operandAddr6"
		default:
			return errors.Errorf("unable to determine type of operand: %s", op.Name)
		}
	}
	if registers > 1 || len(inst.Operands) > 2 {
		return errors.Errorf("%s does not fit the instruction encoding", inst.Mnemonic)
	}
	return nil
}
