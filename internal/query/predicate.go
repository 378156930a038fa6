package query

import (
	"fmt"
	"strings"

	"github.com/briannzioki/qwiksale-listings/internal/domain"
)

// maxSearchTokens caps how many words of the free-text query participate in
// matching. Extra words are dropped silently.
const maxSearchTokens = 6

// Predicate is a compiled WHERE clause with positional arguments. Where
// never contains user input directly; every value travels through Args.
type Predicate struct {
	Where string
	Args  []any
}

// NextArg returns the positional index the next appended argument would
// take, so callers can extend the statement with LIMIT/OFFSET placeholders.
func (p Predicate) NextArg() int {
	return len(p.Args) + 1
}

// Compile turns a normalized query into a SQL predicate. The kind and
// active-status constraints are unconditional; a caller cannot reach
// inactive listings or another kind through this path.
func Compile(q domain.ListingQuery) Predicate {
	desc := ForKind(q.Kind)

	var (
		conditions []string
		args       []any
	)

	add := func(cond string, vals ...any) {
		conditions = append(conditions, cond)
		args = append(args, vals...)
	}

	add(fmt.Sprintf("kind = $%d", len(args)+1), string(q.Kind))
	add(fmt.Sprintf("status = $%d", len(args)+1), domain.StatusActive)

	if q.Category != "" {
		add(fmt.Sprintf("LOWER(category) = LOWER($%d)", len(args)+1), q.Category)
	}
	if q.Subcategory != "" {
		add(fmt.Sprintf("LOWER(subcategory) = LOWER($%d)", len(args)+1), q.Subcategory)
	}
	if desc.HasBrand && q.Brand != "" {
		add(fmt.Sprintf("LOWER(brand) = LOWER($%d)", len(args)+1), q.Brand)
	}
	if desc.HasCondition && q.Condition != "" {
		add(fmt.Sprintf("LOWER(condition) = LOWER($%d)", len(args)+1), q.Condition)
	}

	if q.FeaturedOnly {
		conditions = append(conditions, "featured = TRUE")
	}

	// Null prices never match an explicit bound; >= and <= are false for
	// NULL in SQL, so no extra clause is needed.
	if q.MinPrice != nil {
		add(fmt.Sprintf("price >= $%d", len(args)+1), *q.MinPrice)
	}
	if q.MaxPrice != nil {
		add(fmt.Sprintf("price <= $%d", len(args)+1), *q.MaxPrice)
	}

	// Tokenized search: every token must appear in at least one searchable
	// column, not necessarily the same column for each token.
	for _, token := range searchTokens(q.Search) {
		argIndex := len(args) + 1
		ors := make([]string, len(desc.SearchColumns))
		for i, col := range desc.SearchColumns {
			ors[i] = fmt.Sprintf("%s ILIKE $%d", col, argIndex)
		}
		add("("+strings.Join(ors, " OR ")+")", "%"+token+"%")
	}

	return Predicate{
		Where: strings.Join(conditions, " AND "),
		Args:  args,
	}
}

// searchTokens lowercases the query and splits it on whitespace, keeping at
// most maxSearchTokens tokens. An empty query yields no tokens, which
// disables search entirely rather than vacuously matching everything.
func searchTokens(search string) []string {
	tokens := strings.Fields(strings.ToLower(search))
	if len(tokens) > maxSearchTokens {
		tokens = tokens[:maxSearchTokens]
	}
	return tokens
}
