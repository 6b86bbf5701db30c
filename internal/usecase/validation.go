package usecase

import (
	"strconv"
	"strings"

	domainErrors "github.com/polkiloo/tradedesk/internal/domain/errors"
)

const maxSymbolLength = 20

// NormalizeSymbol trims and upper-cases a ticker symbol such as "aapl.us".
// Only letters, digits and the separators ".-_^" are accepted.
func NormalizeSymbol(symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || len(symbol) > maxSymbolLength || symbol[0] == '.' {
		return "", domainErrors.ErrInvalidSymbol
	}
	for _, r := range symbol {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '-', r == '_', r == '^':
		default:
			return "", domainErrors.ErrInvalidSymbol
		}
	}
	return symbol, nil
}

// ParseQuantity parses a strictly positive whole number of shares.
func ParseQuantity(raw string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return 0, domainErrors.ErrInvalidQuantity
	}
	return n, nil
}

// ParseCount parses a strictly positive list size.
func ParseCount(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, domainErrors.ErrInvalidCount
	}
	return n, nil
}
