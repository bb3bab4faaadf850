package usecase

// Stripeが受け付ける最小請求額（ペンス）
const MinChargeAmount = 30

const (
	ShippingLabelFree     = "free"
	ShippingLabelStandard = "standard"
)

type ShippingQuote struct {
	Fee   int64  `json:"fee"`
	Label string `json:"label"`
}

// 送料と割引の計算。純粋な関数だけで副作用なし。
type PricingEngine struct {
	freeShippingThreshold int64
	flatRate              int64
}

func NewPricingEngine(freeShippingThreshold, flatRate int64) *PricingEngine {
	return &PricingEngine{
		freeShippingThreshold: freeShippingThreshold,
		flatRate:              flatRate,
	}
}

// ComputeShipping は小計から送料を決める。しきい値以上なら送料無料。
func (p *PricingEngine) ComputeShipping(subtotal int64) ShippingQuote {
	if subtotal >= p.freeShippingThreshold {
		return ShippingQuote{Fee: 0, Label: ShippingLabelFree}
	}
	return ShippingQuote{Fee: p.flatRate, Label: ShippingLabelStandard}
}

// ApplyDiscount は割引額を返す。切り捨て（表示率より多く割り引かない）。
func ApplyDiscount(subtotal, percentage int64) int64 {
	if subtotal <= 0 || percentage <= 0 {
		return 0
	}
	return subtotal * percentage / 100
}
