package stock

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/labstock/backend/internal/domain/shared"
)

// FirstItemCodeNumber is the numeric suffix of the first code issued for a prefix.
const FirstItemCodeNumber = 1001

const itemCodePrefixLength = 3

// ItemCodePrefix returns the first three letters or digits of the item name, uppercased.
// Letters outside ASCII count as one character each.
func ItemCodePrefix(itemName string) (string, error) {
	var b strings.Builder
	n := 0
	for _, r := range strings.TrimSpace(itemName) {
		if n == itemCodePrefixLength {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
			n++
		}
	}
	if n == 0 {
		return "", shared.NewDomainError("INVALID_ITEM_NAME", "Item name must contain at least one letter or digit")
	}
	return b.String(), nil
}

// NextItemCode returns the code that follows the highest existing code for the prefix.
// Codes that do not match PREFIX-dddd(d) are ignored; with none left the sequence starts at 1001.
func NextItemCode(prefix string, existing []string) string {
	next := FirstItemCodeNumber
	highest := 0
	for _, code := range existing {
		n, ok := parseItemCode(prefix, code)
		if ok && n > highest {
			highest = n
		}
	}
	if highest > 0 {
		next = highest + 1
	}
	return fmt.Sprintf("%s-%d", prefix, next)
}

func parseItemCode(prefix, code string) (int, bool) {
	digits, ok := strings.CutPrefix(code, prefix+"-")
	if !ok || len(digits) < 4 || len(digits) > 5 {
		return 0, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}
