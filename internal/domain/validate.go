package domain

import (
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// ValidLink accepts absolute http(s) URLs with a host.
func ValidLink(link string) bool {
	link = strings.TrimSpace(link)
	if link == "" {
		return false
	}
	return validatorInstance().Var(link, "required,http_url") == nil
}

// ParseAmount parses a currency amount. It rejects blanks, NaN, infinities and negatives.
func ParseAmount(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "$")
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}
