package tech

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/openpdk/sg13/internal/geom"
)

//go:embed rules.cue
var defaultRulesCUE []byte

//go:embed sg13.lyp
var defaultLayersLYP []byte

// Tech bundles the process description one synthesis call needs: the
// rule repository, the layer stack, and a snapper on the process grid.
// A Tech is immutable after construction and safe for concurrent use.
type Tech struct {
	Rules *Rules
	Stack *Stack
	Snap  geom.Snapper
}

// New assembles a Tech from loaded tables.
func New(rules *Rules, stack *Stack) *Tech {
	return &Tech{Rules: rules, Stack: stack, Snap: geom.NewSnapper(rules.Grid())}
}

var (
	defaultOnce sync.Once
	defaultTech *Tech
	defaultErr  error
)

// Default returns the Tech built from the embedded SG13 tables. The
// tables ship with the binary, so a failure here is a build defect and
// is surfaced as a panic from the first caller.
func Default() *Tech {
	defaultOnce.Do(func() {
		rules, err := ParseRules(defaultRulesCUE, "rules.cue")
		if err != nil {
			defaultErr = fmt.Errorf("embedded rule table: %w", err)
			return
		}
		stack, err := ParseLYP(bytes.NewReader(defaultLayersLYP))
		if err != nil {
			defaultErr = fmt.Errorf("embedded layer map: %w", err)
			return
		}
		defaultTech = New(rules, stack)
	})
	if defaultErr != nil {
		panic(defaultErr)
	}
	return defaultTech
}

// EmbeddedRulesCUE returns a copy of the built-in rule table source,
// for tooling that dumps or derives rule sets.
func EmbeddedRulesCUE() []byte {
	return append([]byte(nil), defaultRulesCUE...)
}

// Load builds a Tech from rule and layer-map files on disk, for
// processes other than the embedded default.
func Load(rulesPath, lypPath string) (*Tech, error) {
	rulesData, err := os.ReadFile(rulesPath)
	if err != nil {
		return nil, fmt.Errorf("read rule table: %w", err)
	}
	rules, err := ParseRules(rulesData, rulesPath)
	if err != nil {
		return nil, err
	}
	lypData, err := os.ReadFile(lypPath)
	if err != nil {
		return nil, fmt.Errorf("read layer map: %w", err)
	}
	stack, err := ParseLYP(bytes.NewReader(lypData))
	if err != nil {
		return nil, err
	}
	return New(rules, stack), nil
}
