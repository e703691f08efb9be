package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Field names a filterable scalar attribute of a request.
type Field string

const (
	FieldOwnerID    Field = "owner_id"
	FieldDepartment Field = "department"
	FieldStatus     Field = "status"
	FieldUrgency    Field = "urgency"
	FieldCategory   Field = "category"
)

// PredicateKind tags the variant held by a Predicate.
type PredicateKind int

const (
	PredMatchAll PredicateKind = iota
	PredMatchNone
	PredEquals
	PredNotEquals
	PredOneOf
	PredAmountRange
	PredCreatedBetween
	PredAnd
)

// Predicate is a tagged filter expression. Only the fields relevant to Kind are set;
// build values with the constructors below.
type Predicate struct {
	Kind     PredicateKind
	Field    Field
	Value    string
	Values   []string
	Min      *decimal.Decimal
	Max      *decimal.Decimal
	From     *time.Time
	To       *time.Time
	Operands []Predicate
}

func MatchAll() Predicate  { return Predicate{Kind: PredMatchAll} }
func MatchNone() Predicate { return Predicate{Kind: PredMatchNone} }

func Equals(f Field, v string) Predicate {
	return Predicate{Kind: PredEquals, Field: f, Value: v}
}

func NotEquals(f Field, v string) Predicate {
	return Predicate{Kind: PredNotEquals, Field: f, Value: v}
}

func OneOf(f Field, vs ...string) Predicate {
	return Predicate{Kind: PredOneOf, Field: f, Values: append([]string{}, vs...)}
}

// AmountRange matches min <= amount <= max. A nil bound is open.
func AmountRange(min, max *decimal.Decimal) Predicate {
	return Predicate{Kind: PredAmountRange, Min: min, Max: max}
}

// CreatedBetween matches from <= createdAt <= to. A nil bound is open.
func CreatedBetween(from, to *time.Time) Predicate {
	return Predicate{Kind: PredCreatedBetween, From: from, To: to}
}

// And matches when every operand matches. And() matches everything.
func And(ps ...Predicate) Predicate {
	return Predicate{Kind: PredAnd, Operands: append([]Predicate{}, ps...)}
}

func statusValues(ss ...RequestStatus) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}

func fieldValue(r *BudgetRequest, f Field) string {
	switch f {
	case FieldOwnerID:
		return r.OwnerID
	case FieldDepartment:
		return r.Department
	case FieldStatus:
		return string(r.Status)
	case FieldUrgency:
		return string(r.Urgency)
	case FieldCategory:
		return r.Category
	}
	return ""
}

// Matches evaluates p against r.
func (p Predicate) Matches(r *BudgetRequest) bool {
	switch p.Kind {
	case PredMatchAll:
		return true
	case PredMatchNone:
		return false
	case PredEquals:
		return fieldValue(r, p.Field) == p.Value
	case PredNotEquals:
		return fieldValue(r, p.Field) != p.Value
	case PredOneOf:
		v := fieldValue(r, p.Field)
		for _, candidate := range p.Values {
			if v == candidate {
				return true
			}
		}
		return false
	case PredAmountRange:
		if p.Min != nil && r.Amount.LessThan(*p.Min) {
			return false
		}
		if p.Max != nil && r.Amount.GreaterThan(*p.Max) {
			return false
		}
		return true
	case PredCreatedBetween:
		if p.From != nil && r.CreatedAt.Before(*p.From) {
			return false
		}
		if p.To != nil && r.CreatedAt.After(*p.To) {
			return false
		}
		return true
	case PredAnd:
		for _, op := range p.Operands {
			if !op.Matches(r) {
				return false
			}
		}
		return true
	}
	return false
}

// VisibilityPredicate is the role-derived base filter applied before any caller filter.
func VisibilityPredicate(actor Principal) Predicate {
	switch actor.Role {
	case RoleAgent:
		return Equals(FieldOwnerID, actor.UserID)
	case RoleChefDepartement:
		return And(
			Equals(FieldDepartment, actor.Department),
			NotEquals(FieldStatus, string(StatusDraft)),
		)
	case RoleDirection:
		return OneOf(FieldStatus, statusValues(StatusChefApproved, StatusDirectionApproved)...)
	case RoleRecteur:
		return OneOf(FieldStatus, statusValues(StatusDirectionApproved, StatusRecteurApproved)...)
	case RoleAdmin, RoleAuditeur:
		return MatchAll()
	}
	return MatchNone()
}

// StatsScopePredicate limits dashboard figures: agents see their own requests,
// department heads their department, everyone else the whole institution.
func StatsScopePredicate(actor Principal) Predicate {
	switch actor.Role {
	case RoleAgent:
		return Equals(FieldOwnerID, actor.UserID)
	case RoleChefDepartement:
		return Equals(FieldDepartment, actor.Department)
	case RoleDirection, RoleRecteur, RoleAdmin, RoleAuditeur:
		return MatchAll()
	}
	return MatchNone()
}

// ListFilter holds the caller-supplied filters. Zero values are ignored.
type ListFilter struct {
	Status     RequestStatus
	Department string
	OwnerID    string
	Urgency    Urgency
	Category   string
	AmountMin  *decimal.Decimal
	AmountMax  *decimal.Decimal
	DateFrom   *time.Time
	DateTo     *time.Time
}

// Predicates returns one predicate per set filter.
func (f ListFilter) Predicates() []Predicate {
	var ps []Predicate
	if f.Status != "" {
		ps = append(ps, Equals(FieldStatus, string(f.Status)))
	}
	if f.Department != "" {
		ps = append(ps, Equals(FieldDepartment, f.Department))
	}
	if f.OwnerID != "" {
		ps = append(ps, Equals(FieldOwnerID, f.OwnerID))
	}
	if f.Urgency != "" {
		ps = append(ps, Equals(FieldUrgency, string(f.Urgency)))
	}
	if f.Category != "" {
		ps = append(ps, Equals(FieldCategory, f.Category))
	}
	if f.AmountMin != nil || f.AmountMax != nil {
		ps = append(ps, AmountRange(f.AmountMin, f.AmountMax))
	}
	if f.DateFrom != nil || f.DateTo != nil {
		ps = append(ps, CreatedBetween(f.DateFrom, f.DateTo))
	}
	return ps
}

// ScopedQuery combines actor's base predicate with the caller filters.
func ScopedQuery(actor Principal, filter ListFilter) Predicate {
	return And(append([]Predicate{VisibilityPredicate(actor)}, filter.Predicates()...)...)
}

// Page is one offset-based slice of a result set.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPage builds a Page and derives TotalPages from total and pageSize.
func NewPage[T any](items []T, page, pageSize, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return Page[T]{Items: items, Page: page, PageSize: pageSize, Total: total, TotalPages: totalPages}
}

// PageRequest is a normalised page/pageSize pair.
type PageRequest struct {
	Page     int
	PageSize int
}

// NormalizePage clamps page to >= 1 and pageSize to [1, max], using def when pageSize < 1.
func NormalizePage(page, pageSize, def, max int) PageRequest {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = def
	}
	if max > 0 && pageSize > max {
		pageSize = max
	}
	return PageRequest{Page: page, PageSize: pageSize}
}

// Offset is the number of rows skipped before this page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// VisibleRequests filters all in memory with actor's view plus filter, newest first,
// and returns the requested page.
func VisibleRequests(actor Principal, all []BudgetRequest, filter ListFilter, page, pageSize int) Page[BudgetRequest] {
	pr := NormalizePage(page, pageSize, 10, 0)
	pred := ScopedQuery(actor, filter)

	matched := make([]BudgetRequest, 0, len(all))
	for i := range all {
		if pred.Matches(&all[i]) {
			matched = append(matched, all[i])
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	start := pr.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + pr.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return NewPage(matched[start:end], pr.Page, pr.PageSize, len(matched))
}
