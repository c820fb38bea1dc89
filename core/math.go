package core

import "github.com/shopspring/decimal"

// mulDivFloor computes a * b / den with an arbitrary-precision intermediate
// and floor division, matching the truncating integer arithmetic of the
// 18-decimal fixed-point convention. den must be nonzero.
func mulDivFloor(a, b, den decimal.Decimal) decimal.Decimal {
	q, _ := a.Mul(b).QuoRem(den, 0)
	return q
}

// feedScale returns the factor lifting a price reported with the given
// decimal precision to 18-decimal base units, e.g. 1e10 for 8-decimal feeds.
func feedScale(decimals int32) decimal.Decimal {
	return decimal.New(1, 18-decimals)
}
