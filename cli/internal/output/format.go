package output

import (
	"encoding/json"
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatNumber formats a number with thousand separators
func FormatNumber(n uint64) string {
	if n > math.MaxInt64 {
		return humanize.BigComma(new(big.Int).SetUint64(n))
	}
	return humanize.Comma(int64(n))
}

// FormatSigned formats a signed number with thousand separators
func FormatSigned(n int64) string {
	return humanize.Comma(n)
}

// FormatCost formats a cost value as currency, e.g. $1,234.56
func FormatCost(cost float64) string {
	s := strconv.FormatFloat(math.Abs(cost), 'f', 2, 64)
	whole, cents, _ := strings.Cut(s, ".")

	dollars, err := strconv.ParseUint(whole, 10, 64)
	if err != nil {
		return "$" + s
	}
	return "$" + FormatNumber(dollars) + "." + cents
}

// FormatPercent formats a percentage with one decimal
func FormatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64) + "%"
}

// PrintJSON writes v as indented JSON
func PrintJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
