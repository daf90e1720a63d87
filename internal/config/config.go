// Package config defines the style configuration for elmfmt and resolves it
// from elmfmt.yaml files.
package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default values, matching the behavior of elmfmt without a config file.
const (
	DefaultIndentation          = 2
	DefaultNewlinesBetweenDecls = 2
)

// maxSetting bounds the numeric settings.
const maxSetting = 255

// IfStyle selects the layout of if-then-else expressions.
type IfStyle int

// If styles.
const (
	IfIndented IfStyle = iota
	IfHanging
)

var ifStyleNames = map[IfStyle]string{
	IfIndented: "indented",
	IfHanging:  "hanging",
}

// IfStyles lists every if style.
func IfStyles() []IfStyle {
	return []IfStyle{IfIndented, IfHanging}
}

func (s IfStyle) String() string {
	if name, ok := ifStyleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("IfStyle(%d)", int(s))
}

// ParseIfStyle converts a config value to an IfStyle.
func ParseIfStyle(v string) (IfStyle, error) {
	for s, name := range ifStyleNames {
		if v == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown if_style %q (want indented or hanging)", v)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *IfStyle) UnmarshalYAML(value *yaml.Node) error {
	var v string
	if err := value.Decode(&v); err != nil {
		return err
	}
	parsed, err := ParseIfStyle(v)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*s = parsed
	return nil
}

// TupleStyle selects the spacing inside tuple parentheses.
type TupleStyle int

// Tuple styles.
const (
	TupleSpaced TupleStyle = iota
	TupleCompact
)

var tupleStyleNames = map[TupleStyle]string{
	TupleSpaced:  "spaced",
	TupleCompact: "compact",
}

// TupleStyles lists every tuple style.
func TupleStyles() []TupleStyle {
	return []TupleStyle{TupleCompact, TupleSpaced}
}

func (s TupleStyle) String() string {
	if name, ok := tupleStyleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("TupleStyle(%d)", int(s))
}

// ParseTupleStyle converts a config value to a TupleStyle.
func ParseTupleStyle(v string) (TupleStyle, error) {
	for s, name := range tupleStyleNames {
		if v == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown tuple_style %q (want compact or spaced)", v)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *TupleStyle) UnmarshalYAML(value *yaml.Node) error {
	var v string
	if err := value.Decode(&v); err != nil {
		return err
	}
	parsed, err := ParseTupleStyle(v)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*s = parsed
	return nil
}

// StyleConfig is the formatting policy for one file or directory subtree.
type StyleConfig struct {
	Indentation          int        `yaml:"indentation"`
	IfStyle              IfStyle    `yaml:"if_style"`
	TupleStyle           TupleStyle `yaml:"tuple_style"`
	NewlinesBetweenDecls int        `yaml:"newlines_between_decls"`
}

// Default returns the built-in style.
func Default() StyleConfig {
	return StyleConfig{
		Indentation:          DefaultIndentation,
		IfStyle:              IfIndented,
		TupleStyle:           TupleSpaced,
		NewlinesBetweenDecls: DefaultNewlinesBetweenDecls,
	}
}

// Validate reports settings outside their legal range.
func (c StyleConfig) Validate() error {
	if c.Indentation < 1 || c.Indentation > maxSetting {
		return fmt.Errorf("indentation must be between 1 and %d, got %d", maxSetting, c.Indentation)
	}
	if c.NewlinesBetweenDecls < 0 || c.NewlinesBetweenDecls > maxSetting {
		return fmt.Errorf("newlines_between_decls must be between 0 and %d, got %d",
			maxSetting, c.NewlinesBetweenDecls)
	}
	if _, ok := ifStyleNames[c.IfStyle]; !ok {
		return fmt.Errorf("invalid if_style %v", c.IfStyle)
	}
	if _, ok := tupleStyleNames[c.TupleStyle]; !ok {
		return fmt.Errorf("invalid tuple_style %v", c.TupleStyle)
	}
	return nil
}

// IndentString returns the indent unit handed to the engine.
func (c StyleConfig) IndentString() string {
	return strings.Repeat(" ", c.Indentation)
}
