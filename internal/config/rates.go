package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Simplici0/atelier/internal/pricing"
)

// RateCard overrides the statutory rates. Fields left out keep their
// defaults. Rates are fractions: nssfRate: 0.06.
type RateCard struct {
	NSSFRate         *float64 `yaml:"nssfRate"`
	SHIFRate         *float64 `yaml:"shifRate"`
	TurnoverTaxRate  *float64 `yaml:"turnoverTaxRate"`
	NSSFCapPerPerson *float64 `yaml:"nssfCapPerPerson"`
}

// LoadRates returns the engine options, applying the rate card at path when
// path is not empty.
func LoadRates(path string) (pricing.Options, error) {
	opts := pricing.DefaultOptions()
	if path == "" {
		return opts, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read rate card: %w", err)
	}
	var card RateCard
	if err := yaml.Unmarshal(raw, &card); err != nil {
		return opts, fmt.Errorf("parse rate card: %w", err)
	}
	return card.Apply(opts)
}

// Apply overlays the card onto opts.
func (c RateCard) Apply(opts pricing.Options) (pricing.Options, error) {
	set := func(name string, src *float64, dst *float64, max float64) error {
		if src == nil {
			return nil
		}
		if *src < 0 || *src > max {
			return fmt.Errorf("rate card %s = %v out of range", name, *src)
		}
		*dst = *src
		return nil
	}
	if err := set("nssfRate", c.NSSFRate, &opts.NSSFRate, 1); err != nil {
		return opts, err
	}
	if err := set("shifRate", c.SHIFRate, &opts.SHIFRate, 1); err != nil {
		return opts, err
	}
	if err := set("turnoverTaxRate", c.TurnoverTaxRate, &opts.TurnoverTaxRate, 1); err != nil {
		return opts, err
	}
	if c.NSSFCapPerPerson != nil && *c.NSSFCapPerPerson < 0 {
		return opts, fmt.Errorf("rate card nssfCapPerPerson = %v out of range", *c.NSSFCapPerPerson)
	}
	if c.NSSFCapPerPerson != nil {
		opts.NSSFCapPerPerson = *c.NSSFCapPerPerson
	}
	return opts, nil
}
