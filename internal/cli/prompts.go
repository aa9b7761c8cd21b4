package cli

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9.\-]+$`)

// PromptForTicker asks the user for a stock ticker symbol. The sentinel
// values exit/quit/q return an empty ticker with no error.
func PromptForTicker() (string, error) {
	var ticker string
	prompt := &survey.Input{
		Message: "Enter a stock ticker symbol (e.g., AAPL, MSFT, GOOGL):",
		Help:    "Type 'exit' to quit.",
	}

	err := survey.AskOne(prompt, &ticker, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(strings.ToUpper(val.(string)))
		if isQuit(str) {
			return nil
		}
		if str == "" {
			return fmt.Errorf("ticker symbol cannot be empty")
		}
		if len(str) > 10 {
			return fmt.Errorf("ticker symbol too long (max 10 characters)")
		}
		if !tickerPattern.MatchString(str) {
			return fmt.Errorf("invalid ticker format (use letters, numbers, dots, and hyphens only)")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}

	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	if isQuit(ticker) {
		return "", nil
	}
	return ticker, nil
}

func isQuit(s string) bool {
	switch s {
	case "EXIT", "QUIT", "Q":
		return true
	}
	return false
}
