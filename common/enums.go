// Package common keeps enumerations shared by configuration, command line and
// output writers.
package common

import (
	"fmt"
	"strings"
)

// Specification of requested output type.
type OutputFmt int

const (
	OutputFmtText OutputFmt = iota
	OutputFmtYaml
	OutputFmtIon
	OutputFmtIonb
	OutputFmtSvg
	OutputFmtPng
	OutputFmtJpeg
)

var outputFmtNames = [...]string{"text", "yaml", "ion", "ionb", "svg", "png", "jpeg"}

// ErrInvalidOutputFmt is returned when output format name is not recognized.
var ErrInvalidOutputFmt = fmt.Errorf("not a valid OutputFmt, try [%s]", strings.Join(OutputFmtNames(), ", "))

// OutputFmtNames returns names of all supported output formats.
func OutputFmtNames() []string {
	return append([]string(nil), outputFmtNames[:]...)
}

func (o OutputFmt) String() string {
	if o.IsValid() {
		return outputFmtNames[o]
	}
	return fmt.Sprintf("OutputFmt(%d)", int(o))
}

func (o OutputFmt) IsValid() bool {
	return o >= 0 && int(o) < len(outputFmtNames)
}

// ParseOutputFmt converts case insensitive name into OutputFmt.
func ParseOutputFmt(name string) (OutputFmt, error) {
	for i, n := range outputFmtNames {
		if strings.EqualFold(n, name) {
			return OutputFmt(i), nil
		}
	}
	return OutputFmt(0), fmt.Errorf("%s is %w", name, ErrInvalidOutputFmt)
}

func MustParseOutputFmt(name string) OutputFmt {
	o, err := ParseOutputFmt(name)
	if err != nil {
		panic(err)
	}
	return o
}

func (o OutputFmt) MarshalText() ([]byte, error) {
	if !o.IsValid() {
		return nil, fmt.Errorf("%d is %w", int(o), ErrInvalidOutputFmt)
	}
	return []byte(o.String()), nil
}

func (o *OutputFmt) UnmarshalText(text []byte) error {
	v, err := ParseOutputFmt(string(text))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// Binary reports whether result is not text.
func (o OutputFmt) Binary() bool {
	return o == OutputFmtIonb || o == OutputFmtPng || o == OutputFmtJpeg
}

func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtText:
		return ".txt"
	case OutputFmtYaml:
		return ".yaml"
	case OutputFmtIon:
		return ".ion"
	case OutputFmtIonb:
		return ".10n"
	case OutputFmtSvg:
		return ".svg"
	case OutputFmtPng:
		return ".png"
	case OutputFmtJpeg:
		return ".jpg"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}
