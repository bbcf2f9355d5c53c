package domain

import "time"

type VisitorID string
type TestID string
type VariantID string

// ParamValue is a closed union of the primitive types allowed in a custom
// parameter bag. Arbitrary nested structures are rejected at the boundary.
type ParamValue struct {
	Kind ParamKind
	Str  string
	Num  float64
	Bool bool
}

type ParamKind int

const (
	ParamString ParamKind = iota
	ParamNumber
	ParamBool
)

func StringParam(v string) ParamValue  { return ParamValue{Kind: ParamString, Str: v} }
func NumberParam(v float64) ParamValue { return ParamValue{Kind: ParamNumber, Num: v} }
func BoolParam(v bool) ParamValue      { return ParamValue{Kind: ParamBool, Bool: v} }

// Interface returns the underlying value for serialization into sink payloads.
func (p ParamValue) Interface() interface{} {
	switch p.Kind {
	case ParamNumber:
		return p.Num
	case ParamBool:
		return p.Bool
	default:
		return p.Str
	}
}

type Params map[string]ParamValue

// Event is one discrete occurrence reported by the page. Action and Category
// are mandatory; an event missing either must never reach a sink.
type Event struct {
	Action    string
	Category  string
	Label     string
	Value     *float64
	Params    Params
	VisitorID VisitorID
	Timestamp time.Time
}

func (e *Event) Valid() bool {
	return e.Action != "" && e.Category != ""
}

// Conversion is a goal-completing event forwarded only when conversion
// tracking is enabled. Currency defaults to USD.
type Conversion struct {
	Name          string
	Value         *float64
	Currency      string
	TransactionID string
	Params        Params
	VisitorID     VisitorID
	Timestamp     time.Time
}

const DefaultCurrency = "USD"

func (c *Conversion) Valid() bool {
	return c.Name != ""
}
