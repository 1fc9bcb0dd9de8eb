// Package transform re-weights intensity profiles by severity.
//
// Every method defines a curve T(x) over the intensity grid (the transformed
// grid). A raw quantity at intensity x is weighted by T(x)/x, so the linear
// method (T(x) = x) leaves profiles untouched and convex curves shift weight
// towards the top of the scale. All non-linear curves satisfy T(0) = 0 and
// T(10) = 10 * MaxValue.
package transform

import (
	"math"
	"strings"
)

// Kind enumerates the supported transformation methods.
type Kind string

const (
	KindLinear          Kind = "linear"
	KindPiecewiseLinear Kind = "piecewise_linear"
	KindPower           Kind = "power"
	KindExponential     Kind = "exponential"
	KindTaylor          Kind = "taylor"
)

// Kinds lists every method in display order.
var Kinds = []Kind{KindLinear, KindPiecewiseLinear, KindPower, KindExponential, KindTaylor}

// Display returns the human readable method label.
func (k Kind) Display() string {
	switch k {
	case KindPiecewiseLinear:
		return "Piecewise Linear"
	case KindPower:
		return "Power"
	case KindExponential:
		return "Exponential"
	case KindTaylor:
		return "Taylor"
	default:
		return "Linear"
	}
}

// Method is a closed set of transformation variants. Each carries its own
// validated parameters; values outside the domain cannot be constructed through New.
type Method interface {
	Kind() Kind
	// Curve returns T(x), the transformed intensity at grid value x.
	Curve(x float64) float64
	sealed()
}

// Params is the flat, serializable form of a transformation selection.
type Params struct {
	Method        string  `yaml:"method" json:"method"`
	MaxValue      float64 `yaml:"max_value" json:"max_value"`
	Power         float64 `yaml:"power" json:"power"`
	Base          float64 `yaml:"base" json:"base"`
	ScalingFactor float64 `yaml:"scaling_factor" json:"scaling_factor"`
	TaylorOrder   int     `yaml:"taylor_order" json:"taylor_order"`
}

// DefaultParams returns the linear transformation with the default payloads
// for the other methods.
func DefaultParams() Params {
	return Params{
		Method:        string(KindLinear),
		MaxValue:      1,
		Power:         2,
		Base:          math.E,
		ScalingFactor: 1,
		TaylorOrder:   2,
	}
}

// New validates p and returns the selected method.
func New(p Params) (Method, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(p.Method)))
	if kind == "" {
		kind = KindLinear
	}

	if kind != KindLinear {
		if !(p.MaxValue > 0) || math.IsInf(p.MaxValue, 0) {
			return nil, invalid("max_value", "must be a positive finite number, got %v", p.MaxValue)
		}
	}

	switch kind {
	case KindLinear:
		return Linear{}, nil
	case KindPiecewiseLinear:
		return PiecewiseLinear{MaxValue: p.MaxValue}, nil
	case KindPower:
		return NewPower(p.Power, p.MaxValue)
	case KindExponential:
		return NewExponential(p.Base, p.ScalingFactor, p.MaxValue)
	case KindTaylor:
		return NewTaylor(p.Base, p.ScalingFactor, p.TaylorOrder, p.MaxValue)
	default:
		return nil, invalid("method", "unknown method %q", p.Method)
	}
}

// Validate reports whether p describes a constructible method.
func (p Params) Validate() error {
	_, err := New(p)
	return err
}

// Linear is the identity weighting.
type Linear struct{}

func (Linear) Kind() Kind              { return KindLinear }
func (Linear) Curve(x float64) float64 { return x }
func (Linear) sealed()                 {}

// Midpoint is where the piecewise linear curve changes slope.
const Midpoint = MaxIntensity / 2

const (
	lowSlope  = 0.5
	highSlope = 1.5
)

// PiecewiseLinear grows at half the linear rate below the midpoint and at
// 1.5x above it, meeting continuously at the midpoint.
type PiecewiseLinear struct {
	MaxValue float64
}

func (PiecewiseLinear) Kind() Kind { return KindPiecewiseLinear }
func (PiecewiseLinear) sealed()    {}

func (m PiecewiseLinear) Curve(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x <= Midpoint {
		return m.MaxValue * lowSlope * x
	}
	return m.MaxValue * (lowSlope*Midpoint + highSlope*(x-Midpoint))
}

// Power follows T(x) = 10 * MaxValue * (x/10)^Exponent.
type Power struct {
	Exponent float64
	MaxValue float64
}

// NewPower validates the exponent (>= 1).
func NewPower(exponent, maxValue float64) (Power, error) {
	if !(exponent >= 1) || math.IsInf(exponent, 0) {
		return Power{}, invalid("power", "must be >= 1, got %v", exponent)
	}
	return Power{Exponent: exponent, MaxValue: maxValue}, nil
}

func (Power) Kind() Kind { return KindPower }
func (Power) sealed()    {}

func (m Power) Curve(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return MaxIntensity * m.MaxValue * math.Pow(x/MaxIntensity, m.Exponent)
}

// Exponential follows T(x) = 10 * MaxValue * (Base^(Scale*x) - 1) / (Base^(Scale*10) - 1).
type Exponential struct {
	Base          float64
	ScalingFactor float64
	MaxValue      float64
}

// NewExponential validates base (> 1) and scaling factor (> 0).
func NewExponential(base, scalingFactor, maxValue float64) (Exponential, error) {
	if err := checkBase(base, scalingFactor); err != nil {
		return Exponential{}, err
	}
	return Exponential{Base: base, ScalingFactor: scalingFactor, MaxValue: maxValue}, nil
}

func (Exponential) Kind() Kind { return KindExponential }
func (Exponential) sealed()    {}

func (m Exponential) Curve(x float64) float64 {
	if x <= 0 {
		return 0
	}
	rate := m.ScalingFactor * math.Log(m.Base)
	return MaxIntensity * m.MaxValue * expRatio(rate, x)
}

// expRatio evaluates (e^(rate*x) - 1) / (e^(rate*10) - 1) without overflowing.
// Past the float64 exponent range the ratio is rewritten as
// e^(rate*(x-10)) * (1 - e^(-rate*x)) / (1 - e^(-rate*10)).
func expRatio(rate, x float64) float64 {
	top := rate * MaxIntensity
	if top < 700 {
		return math.Expm1(rate*x) / math.Expm1(top)
	}
	return math.Exp(rate*(x-MaxIntensity)) * (-math.Expm1(-rate * x)) / (-math.Expm1(-top))
}

// MaxTaylorOrder bounds the series length. On [0, 10] the truncated series
// matches the exponential to float64 precision long before this order for any
// rate whose exponential curve stays finite.
const MaxTaylorOrder = 1000

// Taylor truncates the Maclaurin series of the exponential curve after Order
// terms (the constant term included, then removed by the -1 offset). Order 2
// is a straight line; higher orders converge to Exponential.
type Taylor struct {
	Base          float64
	ScalingFactor float64
	Order         int
	MaxValue      float64

	// logDen is log of the partial sum at x = 10, shared by every grid point.
	logDen float64
}

// NewTaylor validates base (> 1), scaling factor (> 0) and order
// (2..MaxTaylorOrder).
func NewTaylor(base, scalingFactor float64, order int, maxValue float64) (Taylor, error) {
	if err := checkBase(base, scalingFactor); err != nil {
		return Taylor{}, err
	}
	if order < 2 || order > MaxTaylorOrder {
		return Taylor{}, invalid("taylor_order", "must be within [2, %d], got %d", MaxTaylorOrder, order)
	}
	m := Taylor{Base: base, ScalingFactor: scalingFactor, Order: order, MaxValue: maxValue}
	m.logDen = logPartialSum(m.rate()*MaxIntensity, order)
	return m, nil
}

func (Taylor) Kind() Kind { return KindTaylor }
func (Taylor) sealed()    {}

func (m Taylor) rate() float64 {
	return m.ScalingFactor * math.Log(m.Base)
}

func (m Taylor) Curve(x float64) float64 {
	if x <= 0 {
		return 0
	}
	num := logPartialSum(m.rate()*x, m.Order)
	return MaxIntensity * m.MaxValue * math.Exp(num-m.logDen)
}

// tailCutoff is the log-ratio below the running sum at which the remaining
// (decreasing) terms no longer change a float64 result.
const tailCutoff = -40.0

// logPartialSum returns log(sum_{k=1}^{order-1} u^k / k!) for u > 0 with a
// running log-sum-exp, so large u or order cannot overflow. Terms shrink once
// k exceeds u; the loop stops when they fall below tailCutoff of the sum.
func logPartialSum(u float64, order int) float64 {
	logU := math.Log(u)
	acc := math.Inf(-1)
	term := 0.0
	for k := 1; k < order; k++ {
		term += logU - math.Log(float64(k))
		if term > acc {
			acc = term + math.Log1p(math.Exp(acc-term))
		} else {
			acc += math.Log1p(math.Exp(term - acc))
		}
		if float64(k) > u && term-acc < tailCutoff {
			break
		}
	}
	return acc
}
