package sales

import "github.com/shopspring/decimal"

// ComputeTotals derives subtotal and total from the line items and discount:
// subtotal = Σ(quantity × price), total = subtotal − discount. Decimal
// arithmetic keeps cent amounts exact before they are persisted.
func ComputeTotals(items []SaleItem, discount float64) (subtotal, total float64) {
	sum := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		sum = sum.Add(line)
	}
	sum = sum.Round(2)
	subtotal = sum.InexactFloat64()
	total = sum.Sub(decimal.NewFromFloat(discount)).Round(2).InexactFloat64()
	return subtotal, total
}
