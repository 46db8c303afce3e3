// Package config defines the data structures related to configuration and
// includes functions for loading, validating, and converting the config
// into the engine's types.
package config

import (
	"fmt"
	"time"

	"github.com/duyet/finance-hub-sub000/pkg/constants"
	"github.com/duyet/finance-hub-sub000/pkg/rates"
	"github.com/duyet/finance-hub-sub000/pkg/schedule"
	"github.com/spf13/viper"
)

// DateTimeLayout is the format expected in config files and is also the
// output date format.
const DateTimeLayout = constants.DateTimeLayout

// Configuration holds all configuration for loansched.
type Configuration struct {
	Loans   []Loan
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// Loan describes one loan and its rate history.
type Loan struct {
	Name       string
	Principal  float64
	StartDate  string
	TermMonths int
	Method     string // REDUCING_BALANCE or FLAT
	DueDay     int
	RateEvents []RateEvent
}

// RateEvent mirrors rates.Event with string-typed dates for YAML use.
type RateEvent struct {
	EffectiveDate string
	AnnualRate    float64
	Kind          string
	BaseRate      string
	Margin        float64
	Reason        string
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// ValidateConfiguration performs sanity checks on every loan and returns
// human-readable warnings. Warnings are advisory; generation itself rejects
// inputs it cannot compute from.
func (conf *Configuration) ValidateConfiguration() []string {
	var warnings []string
	for _, loan := range conf.Loans {
		if loan.Principal <= 0 {
			warnings = append(warnings, fmt.Sprintf("Loan '%s' has non-positive principal %.2f", loan.Name, loan.Principal))
		}
		if loan.TermMonths <= 0 {
			warnings = append(warnings, fmt.Sprintf("Loan '%s' has non-positive term %d", loan.Name, loan.TermMonths))
		}
		if len(loan.RateEvents) == 0 {
			warnings = append(warnings, fmt.Sprintf("Loan '%s' has no rate events; no schedule can be generated", loan.Name))
			continue
		}
		if loan.Method == string(schedule.MethodFlat) && len(loan.RateEvents) > 1 {
			warnings = append(warnings, fmt.Sprintf("Loan '%s' is flat-rate; rate changes beyond the first event are not supported and will be ignored", loan.Name))
		}

		seen := make(map[string]bool, len(loan.RateEvents))
		earliest := ""
		for _, event := range loan.RateEvents {
			if seen[event.EffectiveDate] {
				warnings = append(warnings, fmt.Sprintf("Loan '%s' has duplicate rate events effective %s", loan.Name, event.EffectiveDate))
			}
			seen[event.EffectiveDate] = true
			if earliest == "" || event.EffectiveDate < earliest {
				earliest = event.EffectiveDate
			}
		}
		if earliest > loan.StartDate {
			warnings = append(warnings, fmt.Sprintf("Loan '%s' has its earliest rate event %s after the start date %s; no rate is defined for period 1", loan.Name, earliest, loan.StartDate))
		}
	}
	return warnings
}

// ToLoanConfig converts the YAML representation into the engine's
// LoanConfig.
func (l Loan) ToLoanConfig() (schedule.LoanConfig, error) {
	startDate, err := time.Parse(DateTimeLayout, l.StartDate)
	if err != nil {
		return schedule.LoanConfig{}, fmt.Errorf("loan '%s': invalid start date %q: %w", l.Name, l.StartDate, err)
	}

	var method schedule.Method
	switch l.Method {
	case string(schedule.MethodReducingBalance), "":
		method = schedule.MethodReducingBalance
	case string(schedule.MethodFlat):
		method = schedule.MethodFlat
	default:
		return schedule.LoanConfig{}, fmt.Errorf("loan '%s': unknown calculation method %q", l.Name, l.Method)
	}

	return schedule.LoanConfig{
		LoanID:     l.Name,
		Principal:  l.Principal,
		StartDate:  startDate,
		TermMonths: l.TermMonths,
		Method:     method,
		DueDay:     l.DueDay,
	}, nil
}

// ToRateEvents converts the YAML rate history into the engine's events,
// preserving config order; the engine sorts them itself.
func (l Loan) ToRateEvents() ([]rates.Event, error) {
	events := make([]rates.Event, 0, len(l.RateEvents))
	for _, event := range l.RateEvents {
		effectiveDate, err := time.Parse(DateTimeLayout, event.EffectiveDate)
		if err != nil {
			return nil, fmt.Errorf("loan '%s': invalid rate event date %q: %w", l.Name, event.EffectiveDate, err)
		}
		kind := rates.Kind(event.Kind)
		if event.Kind == "" {
			kind = rates.KindFixed
		}
		events = append(events, rates.Event{
			EffectiveDate:     effectiveDate,
			AnnualRatePercent: event.AnnualRate,
			Kind:              kind,
			BaseRate:          event.BaseRate,
			MarginPercent:     event.Margin,
			Reason:            event.Reason,
		})
	}
	return events, nil
}
