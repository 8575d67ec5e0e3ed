// Package domain provides the value types shared by the earnings and market modules.
package domain

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// FiscalPeriod is the reporting window of a figure.
type FiscalPeriod string

const (
	PeriodQ1 FiscalPeriod = "Q1"
	PeriodQ2 FiscalPeriod = "Q2"
	PeriodQ3 FiscalPeriod = "Q3"
	PeriodQ4 FiscalPeriod = "Q4"
	PeriodH1 FiscalPeriod = "H1"
	PeriodH2 FiscalPeriod = "H2"
	PeriodFY FiscalPeriod = "FY"
)

var validPeriods = map[FiscalPeriod]bool{
	PeriodQ1: true, PeriodQ2: true, PeriodQ3: true, PeriodQ4: true,
	PeriodH1: true, PeriodH2: true, PeriodFY: true,
}

// ParseFiscalPeriod normalizes an upstream period label ("q1", "FY", "Y").
// Returns false for anything outside the known set.
func ParseFiscalPeriod(s string) (FiscalPeriod, bool) {
	p := FiscalPeriod(strings.ToUpper(strings.TrimSpace(s)))
	if p == "Y" || p == "FULL" {
		p = PeriodFY
	}
	if !validPeriods[p] {
		return "", false
	}
	return p, true
}

// FiscalPeriodFromQuarter maps a numeric quarter (1-4) to its period.
func FiscalPeriodFromQuarter(q int) (FiscalPeriod, bool) {
	if q < 1 || q > 4 {
		return "", false
	}
	return FiscalPeriod(fmt.Sprintf("Q%d", q)), true
}

// FiscalTag identifies the period and year a figure describes.
type FiscalTag struct {
	Period FiscalPeriod `json:"period" validate:"omitempty,oneof=Q1 Q2 Q3 Q4 H1 H2 FY"`
	Year   int          `json:"year" validate:"omitempty,min=1900,max=2200"`
}

// Defined reports whether both period and year are set.
func (t FiscalTag) Defined() bool {
	return t.Period != "" && t.Year != 0
}

func (t FiscalTag) String() string {
	if !t.Defined() {
		return "unknown"
	}
	return fmt.Sprintf("%s %d", t.Period, t.Year)
}

// AccountingMethod is the accounting basis a figure is reported on.
type AccountingMethod string

const (
	MethodUnknown      AccountingMethod = ""
	MethodGAAP         AccountingMethod = "gaap"
	MethodReported     AccountingMethod = "reported"
	MethodReportedGAAP AccountingMethod = "reported_gaap"
	MethodAdjusted     AccountingMethod = "adjusted"
	MethodOperating    AccountingMethod = "operating"
	MethodProForma     AccountingMethod = "pro_forma"
	MethodNonGAAP      AccountingMethod = "non_gaap"
)

// MethodGroup partitions accounting methods into mutually comparable sets.
type MethodGroup int

const (
	GroupUnknown MethodGroup = iota
	GroupGAAP
	GroupNonGAAP
)

var methodAliases = map[string]AccountingMethod{
	"gaap":          MethodGAAP,
	"reported":      MethodReported,
	"reported_gaap": MethodReportedGAAP,
	"adjusted":      MethodAdjusted,
	"adj":           MethodAdjusted,
	"operating":     MethodOperating,
	"pro_forma":     MethodProForma,
	"proforma":      MethodProForma,
	"non_gaap":      MethodNonGAAP,
	"nongaap":       MethodNonGAAP,
}

// ParseAccountingMethod normalizes an upstream method label. Separators
// ("-", " ") and case are ignored; unknown labels map to MethodUnknown.
func ParseAccountingMethod(s string) AccountingMethod {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	return methodAliases[key]
}

// Group returns the comparability group of m.
func (m AccountingMethod) Group() MethodGroup {
	switch m {
	case MethodGAAP, MethodReported, MethodReportedGAAP:
		return GroupGAAP
	case MethodAdjusted, MethodOperating, MethodProForma, MethodNonGAAP:
		return GroupNonGAAP
	default:
		return GroupUnknown
	}
}

// Basis names the comparison baseline a surprise was computed against.
// BasisNone marshals to JSON null.
type Basis string

const (
	BasisNone        Basis = ""
	BasisConsensus   Basis = "consensus"
	BasisEstimate    Basis = "estimate"
	BasisPreviousMid Basis = "previous_mid"
)

// MarshalJSON implements json.Marshaler.
func (b Basis) MarshalJSON() ([]byte, error) {
	if b == BasisNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(b))
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Basis) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = BasisNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch Basis(s) {
	case BasisNone, BasisConsensus, BasisEstimate, BasisPreviousMid:
		*b = Basis(s)
		return nil
	default:
		return fmt.Errorf("unknown surprise basis: %q", s)
	}
}

// SurpriseResult is a percentage deviation with its baseline. Value is nil
// when no baseline applied or the inputs were incomparable.
type SurpriseResult struct {
	Value   *float64 `json:"value"`
	Basis   Basis    `json:"basis"`
	Extreme bool     `json:"extreme"`
}

// SizeClass is a market-capitalization bucket.
type SizeClass string

const (
	SizeMega  SizeClass = "MEGA"
	SizeLarge SizeClass = "LARGE"
	SizeMid   SizeClass = "MID"
	SizeSmall SizeClass = "SMALL"
)
