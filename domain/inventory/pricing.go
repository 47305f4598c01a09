package inventory

import (
	"fmt"
	"strings"

	"homegraph/domain/detection"
)

// defaultPrices maps common household object classes to estimated unit
// prices in USD. Classes outside the table fall back to fallbackPrice.
var defaultPrices = map[string]float64{
	"sofa":         499.99,
	"couch":        499.99,
	"chair":        149.99,
	"armchair":     199.99,
	"dining chair": 89.99,
	"table":        299.99,
	"desk":         249.99,
	"bed":          699.99,
	"dresser":      399.99,
	"nightstand":   129.99,
	"bookshelf":    179.99,
	"cabinet":      299.99,
	"potted plant": 39.99,
	"lamp":         79.99,
	"rug":          199.99,
	"mirror":       129.99,
	"clock":        49.99,
	"vase":         29.99,
}

const fallbackPrice = 10.00

// personClasses are detector classes that must never enter the catalog.
var personClasses = map[string]bool{
	"person": true,
	"people": true,
	"human":  true,
	"man":    true,
	"woman":  true,
	"child":  true,
	"baby":   true,
}

// LineItem is the unit the accounting ledger accepts: a priced,
// quantified object observation. The ledger deduplicates on name+price
// and returns the item_id the graph is keyed on.
type LineItem struct {
	Name     string
	SKU      string
	Price    float64
	Quantity int
}

// IsPerson reports whether a detector class denotes a person. People
// are skipped before any ledger or graph write.
func IsPerson(classLabel string) bool {
	return personClasses[strings.ToLower(strings.TrimSpace(classLabel))]
}

// LineItemFromDetection prices a consolidated detection and derives the
// ledger naming convention: the item name embeds the price point
// ("chair ($149.99)") so distinct price points stay distinct lines, and
// the SKU is the class plus the integer price.
func LineItemFromDetection(d detection.Detection) LineItem {
	base := strings.ToLower(strings.TrimSpace(d.ClassLabel))
	price, ok := defaultPrices[base]
	if !ok {
		price = fallbackPrice
	}

	qty := d.Quantity
	if qty <= 0 {
		qty = 1
	}

	return LineItem{
		Name:     fmt.Sprintf("%s ($%.2f)", base, price),
		SKU:      fmt.Sprintf("%s-%03d", strings.ReplaceAll(base, " ", "-"), int(price)),
		Price:    price,
		Quantity: qty,
	}
}

// LineItemFromReceipt builds a ledger line from a receipt extraction,
// keeping the extracted price instead of the default table.
func LineItemFromReceipt(name string, price float64, quantity int) LineItem {
	base := strings.ToLower(strings.TrimSpace(name))
	if price <= 0 {
		price = fallbackPrice
	}
	if quantity <= 0 {
		quantity = 1
	}
	return LineItem{
		Name:     fmt.Sprintf("%s ($%.2f)", base, price),
		SKU:      fmt.Sprintf("%s-%03d", strings.ReplaceAll(base, " ", "-"), int(price)),
		Price:    price,
		Quantity: quantity,
	}
}
