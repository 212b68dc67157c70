package pricing

import "fmt"

// Format renders minor units with two decimal places, e.g. 2700 -> "27.00".
func Format(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}
