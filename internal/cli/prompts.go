package cli

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9.\-^]+$`)

// PromptForTicker asks for a ticker symbol with basic format validation.
func PromptForTicker() (string, error) {
	var ticker string
	prompt := &survey.Input{
		Message: "Enter a ticker symbol (e.g., AAPL, MSFT, ^SPX):",
		Help:    "Yahoo Finance symbol to load for this session",
	}

	err := survey.AskOne(prompt, &ticker, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(strings.ToUpper(val.(string)))
		if str == "" {
			return fmt.Errorf("ticker symbol cannot be empty")
		}
		if len(str) > 10 {
			return fmt.Errorf("ticker symbol too long (max 10 characters)")
		}
		if !tickerPattern.MatchString(str) {
			return fmt.Errorf("invalid ticker format")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.ToUpper(ticker)), nil
}

// PromptForExpiration lets the user pick one of the listed expiration
// dates.
func PromptForExpiration(expirations []time.Time) (time.Time, error) {
	if len(expirations) == 0 {
		return time.Time{}, fmt.Errorf("no expirations available")
	}

	options := make([]string, len(expirations))
	for i, exp := range expirations {
		options[i] = exp.Format("2006-01-02")
	}

	var selected string
	prompt := &survey.Select{
		Message:  "Select an expiration date:",
		Options:  options,
		PageSize: 12,
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return time.Time{}, err
	}

	for i, opt := range options {
		if opt == selected {
			return expirations[i], nil
		}
	}
	return time.Time{}, fmt.Errorf("expiration %q not in list", selected)
}

// PromptConfirmReset asks before wiping the configuration file.
func PromptConfirmReset() (bool, error) {
	var confirmed bool
	prompt := &survey.Confirm{
		Message: "Reset all settings to defaults?",
		Default: false,
	}
	err := survey.AskOne(prompt, &confirmed)
	return confirmed, err
}
