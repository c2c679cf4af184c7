package request

import "strings"

type AppendCodesRequest struct {
	Codes []string `json:"codes" binding:"required,min=1,max=1000,dive,required"`
}

// TrimmedCodes returns codes with surrounding whitespace stripped,
// keeping empty entries so the domain can report them precisely.
func (r AppendCodesRequest) TrimmedCodes() []string {
	out := make([]string, len(r.Codes))
	for i, c := range r.Codes {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

type ValidateCouponRequest struct {
	Code            string `json:"code" binding:"required"`
	OrderTotalCents int64  `json:"order_total_cents" binding:"required,min=0"`
}
