// Package renderer turns reports into markdown documents.
package renderer

import (
	"fmt"

	"github.com/coinfolio/coinfolio"
)

func money(m coinfolio.Money) string {
	return m.String()
}

func signed(m coinfolio.Money) string {
	return m.SignedString()
}

func percent(q coinfolio.Quantity) string {
	f, _ := q.Decimal().Round(2).Float64()
	return fmt.Sprintf("%.2f%%", f)
}
