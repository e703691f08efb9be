package pgsql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/SscSPs/budget_request_app/internal/core/domain"
)

var fieldColumns = map[domain.Field]string{
	domain.FieldOwnerID:    "owner_id",
	domain.FieldDepartment: "department",
	domain.FieldStatus:     "status",
	domain.FieldUrgency:    "urgency",
	domain.FieldCategory:   "category",
}

// whereBuilder accumulates positional arguments while a predicate is compiled.
type whereBuilder struct {
	args []any
}

func (b *whereBuilder) bind(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *whereBuilder) compile(p domain.Predicate) (string, error) {
	switch p.Kind {
	case domain.PredMatchAll:
		return "TRUE", nil
	case domain.PredMatchNone:
		return "FALSE", nil
	case domain.PredEquals, domain.PredNotEquals, domain.PredOneOf:
		col, ok := fieldColumns[p.Field]
		if !ok {
			return "", fmt.Errorf("unknown filter field %q", p.Field)
		}
		switch p.Kind {
		case domain.PredEquals:
			return col + " = " + b.bind(p.Value), nil
		case domain.PredNotEquals:
			return col + " <> " + b.bind(p.Value), nil
		}
		if len(p.Values) == 0 {
			return "FALSE", nil
		}
		return col + " = ANY(" + b.bind(p.Values) + ")", nil
	case domain.PredAmountRange:
		var parts []string
		if p.Min != nil {
			parts = append(parts, "amount >= "+b.bind(*p.Min))
		}
		if p.Max != nil {
			parts = append(parts, "amount <= "+b.bind(*p.Max))
		}
		return joinAnd(parts), nil
	case domain.PredCreatedBetween:
		var parts []string
		if p.From != nil {
			parts = append(parts, "created_at >= "+b.bind(*p.From))
		}
		if p.To != nil {
			parts = append(parts, "created_at <= "+b.bind(*p.To))
		}
		return joinAnd(parts), nil
	case domain.PredAnd:
		parts := make([]string, 0, len(p.Operands))
		for _, op := range p.Operands {
			if op.Kind == domain.PredMatchAll {
				continue
			}
			sql, err := b.compile(op)
			if err != nil {
				return "", err
			}
			parts = append(parts, sql)
		}
		return joinAnd(parts), nil
	}
	return "", fmt.Errorf("unsupported predicate kind %d", p.Kind)
}

func joinAnd(parts []string) string {
	switch len(parts) {
	case 0:
		return "TRUE"
	case 1:
		return parts[0]
	}
	return "(" + strings.Join(parts, " AND ") + ")"
}

// BuildWhereClause compiles p into a parameterised SQL boolean expression and its arguments.
func BuildWhereClause(p domain.Predicate) (string, []any, error) {
	b := &whereBuilder{}
	sql, err := b.compile(p)
	if err != nil {
		return "", nil, err
	}
	return sql, b.args, nil
}
