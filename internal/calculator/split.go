package calculator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/expensesplit/internal/errs"
	"github.com/mmynk/expensesplit/internal/models"
)

// DefaultScale is the number of decimal places of the smallest currency unit.
const DefaultScale int32 = 2

// DefaultTolerance is the allowed deviation when declared amounts or
// percentages are reconciled against their expected total.
var DefaultTolerance = decimal.New(1, -6)

var hundred = decimal.NewFromInt(100)

// Participant is one entry of a split request.
// Value is the declared amount (exact) or percentage (percentage) and is
// ignored for equal splits.
type Participant struct {
	ID    string
	Value *decimal.Decimal
}

// Result is the amount one participant owes.
type Result struct {
	ID     string
	Amount decimal.Decimal
}

// Engine computes expense splits. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	scale     int32
	tolerance decimal.Decimal
}

// Option configures an Engine.
type Option func(*Engine)

// WithScale sets the number of decimal places of the smallest currency unit.
func WithScale(scale int32) Option {
	return func(e *Engine) {
		e.scale = scale
	}
}

// WithTolerance sets the reconciliation tolerance for exact and percentage splits.
func WithTolerance(tolerance decimal.Decimal) Option {
	return func(e *Engine) {
		e.tolerance = tolerance.Abs()
	}
}

// NewEngine creates an Engine using DefaultScale and DefaultTolerance unless
// overridden by opts.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		scale:     DefaultScale,
		tolerance: DefaultTolerance,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Scale returns the number of decimal places of the smallest currency unit.
func (e *Engine) Scale() int32 {
	return e.scale
}

var defaultEngine = NewEngine()

// Split runs the default engine. See Engine.Split.
func Split(total decimal.Decimal, method models.SplitMethod, participants []Participant) ([]Result, error) {
	return defaultEngine.Split(total, method, participants)
}

// ParseMethod converts a request string into a SplitMethod.
func ParseMethod(s string) (models.SplitMethod, error) {
	m := models.SplitMethod(strings.ToLower(strings.TrimSpace(s)))
	if !isKnownMethod(m) {
		return "", errs.InvalidInput("unsupported split method %q", s)
	}
	return m, nil
}

func isKnownMethod(m models.SplitMethod) bool {
	switch m {
	case models.SplitEqual, models.SplitExact, models.SplitPercentage:
		return true
	}
	return false
}

// Split computes how much each participant owes, in input order.
//
// Algorithm:
//   - equal: total / n in minor units, leftover units go one each to the
//     earliest participants
//   - exact: declared amounts are returned unchanged once they reconcile
//     to total within tolerance
//   - percentage: floor(total * p / sum(p)) in minor units, leftover units
//     distributed like equal; sum(p) must be 100 within tolerance
//
// For equal and percentage splits the results always sum exactly to total.
func (e *Engine) Split(total decimal.Decimal, method models.SplitMethod, participants []Participant) ([]Result, error) {
	if !isKnownMethod(method) {
		return nil, errs.InvalidInput("unsupported split method %q", method)
	}
	if err := e.checkInput(total, participants); err != nil {
		return nil, err
	}

	switch method {
	case models.SplitExact:
		return e.splitExact(total, participants)
	case models.SplitPercentage:
		return e.splitPercentage(total, participants)
	default:
		return e.splitEqual(total, participants), nil
	}
}

func (e *Engine) checkInput(total decimal.Decimal, participants []Participant) error {
	if !total.IsPositive() {
		return errs.InvalidInput("total must be positive, got %s", total)
	}
	if !total.Equal(total.Truncate(e.scale)) {
		return errs.InvalidInput("total %s has more than %d decimal places", total, e.scale)
	}
	if len(participants) == 0 {
		return errs.InvalidInput("must have at least one participant")
	}

	seen := make(map[string]bool, len(participants))
	for i, p := range participants {
		if p.ID == "" {
			return errs.InvalidInput("participant %d has no id", i)
		}
		if seen[p.ID] {
			return errs.InvalidInput("duplicate participant %q", p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

func (e *Engine) splitEqual(total decimal.Decimal, participants []Participant) []Result {
	minor := total.Shift(e.scale)
	unit, rem := minor.QuoRem(decimal.NewFromInt(int64(len(participants))), 0)

	units := make([]decimal.Decimal, len(participants))
	for i := range units {
		units[i] = unit
	}
	return e.distribute(participants, units, rem.IntPart())
}

func (e *Engine) splitExact(total decimal.Decimal, participants []Participant) ([]Result, error) {
	sum := decimal.Zero
	for _, p := range participants {
		if p.Value == nil {
			return nil, errs.InvalidInput("participant %q has no declared amount", p.ID)
		}
		if p.Value.IsNegative() {
			return nil, errs.InvalidInput("participant %q declared a negative amount %s", p.ID, p.Value)
		}
		sum = sum.Add(*p.Value)
	}

	if sum.Sub(total).Abs().GreaterThan(e.tolerance) {
		ve := errs.NewValidationError()
		ve.Add("participants", fmt.Sprintf("declared amounts sum to %s, expected %s", sum, total))
		return nil, ve
	}

	results := make([]Result, len(participants))
	for i, p := range participants {
		results[i] = Result{ID: p.ID, Amount: *p.Value}
	}
	return results, nil
}

func (e *Engine) splitPercentage(total decimal.Decimal, participants []Participant) ([]Result, error) {
	ve := errs.NewValidationError()
	sum := decimal.Zero
	for i, p := range participants {
		if p.Value == nil {
			return nil, errs.InvalidInput("participant %q has no declared percentage", p.ID)
		}
		if !p.Value.IsPositive() || p.Value.GreaterThan(hundred) {
			ve.Add(fmt.Sprintf("participants[%d].percentage", i),
				"percentage must be greater than 0 and less than or equal to 100")
		}
		sum = sum.Add(*p.Value)
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}
	if sum.Sub(hundred).Abs().GreaterThan(e.tolerance) {
		ve.Add("participants", fmt.Sprintf("percentages sum to %s, expected 100", sum))
		return nil, ve
	}

	// Dividing by the declared sum instead of 100 keeps the floored shares
	// within one unit each of the total when the sum is inside tolerance.
	minor := total.Shift(e.scale)
	units := make([]decimal.Decimal, len(participants))
	allocated := decimal.Zero
	for i, p := range participants {
		units[i], _ = minor.Mul(*p.Value).QuoRem(sum, 0)
		allocated = allocated.Add(units[i])
	}
	return e.distribute(participants, units, minor.Sub(allocated).IntPart()), nil
}

// distribute converts minor units back to amounts, adding one unit to each
// of the first leftover participants.
func (e *Engine) distribute(participants []Participant, units []decimal.Decimal, leftover int64) []Result {
	one := decimal.NewFromInt(1)
	results := make([]Result, len(participants))
	for i, p := range participants {
		u := units[i]
		if int64(i) < leftover {
			u = u.Add(one)
		}
		results[i] = Result{ID: p.ID, Amount: u.Shift(-e.scale)}
	}
	return results
}
