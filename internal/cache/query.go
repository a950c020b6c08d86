package cache

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/taskdaemon/taskstore/internal/record"
	"github.com/taskdaemon/taskstore/internal/taskerr"
)

// Operator is a comparison predicate operator. Contains applies only to
// text-valued fields.
type Operator int

const (
	Eq Operator = iota
	Ne
	Gt
	Gte
	Lt
	Lte
	Contains
)

func (op Operator) sql() string {
	switch op {
	case Eq:
		return "="
	case Ne:
		return "!="
	case Gt:
		return ">"
	case Gte:
		return ">="
	case Lt:
		return "<"
	case Lte:
		return "<="
	default:
		return ""
	}
}

// Predicate is one conjunct of a query: a named indexed field compared
// against a typed value.
type Predicate struct {
	Field    string
	Operator Operator
	Value    record.Scalar
}

// Query describes a conjunction of predicates plus optional ordering and
// pagination, translated into a single SQL statement joining records with
// one record_indexes instance per predicate.
type Query struct {
	Collection string
	Predicates []Predicate
	OrderByUpdatedAt bool
	Descending       bool
	Limit            int // 0 means unset
	Offset           int
}

// Row is one result row: the identity and its opaque stored body.
type Row struct {
	ID   string
	Body string
}

// List runs q and returns the matching rows. Absence of an index for a
// referenced field yields no matches for that predicate (an INNER JOIN
// against a nonexistent field produces zero rows, which is exactly the
// contract).
func List(ctx context.Context, db *sql.DB, q Query) ([]Row, error) {
	var b strings.Builder
	args := make([]any, 0, len(q.Predicates)*4+3)

	b.WriteString("SELECT r.id, r.body FROM records r")

	for i, p := range q.Predicates {
		alias := fmt.Sprintf("ri%d", i)
		fmt.Fprintf(&b, " INNER JOIN record_indexes %s ON %s.collection = r.collection AND %s.id = r.id AND %s.field = ?",
			alias, alias, alias, alias)
		args = append(args, p.Field)
	}

	b.WriteString(" WHERE r.collection = ?")
	args = append(args, q.Collection)

	for i, p := range q.Predicates {
		alias := fmt.Sprintf("ri%d", i)
		clause, clauseArgs, err := predicateClause(alias, p)
		if err != nil {
			return nil, err
		}
		b.WriteString(" AND ")
		b.WriteString(clause)
		args = append(args, clauseArgs...)
	}

	if q.OrderByUpdatedAt {
		b.WriteString(" ORDER BY r.updated_at")
		if q.Descending {
			b.WriteString(" DESC")
		} else {
			b.WriteString(" ASC")
		}
	}
	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
		if q.Offset > 0 {
			b.WriteString(" OFFSET ?")
			args = append(args, q.Offset)
		}
	} else if q.Offset > 0 {
		// SQLite requires a LIMIT before OFFSET; -1 means "no limit".
		b.WriteString(" LIMIT -1 OFFSET ?")
		args = append(args, q.Offset)
	}

	rows, err := db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, &taskerr.CacheError{Collection: q.Collection, Op: "list", Err: err}
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.Body); err != nil {
			return nil, &taskerr.CacheError{Collection: q.Collection, Op: "scan", Err: err}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &taskerr.CacheError{Collection: q.Collection, Op: "iterate", Err: err}
	}
	return out, nil
}

// predicateClause builds the SQL fragment and bind args for a single
// predicate, dispatching to the typed column matching the value's kind.
func predicateClause(alias string, p Predicate) (string, []any, error) {
	switch p.Value.Kind() {
	case record.KindText:
		v, _ := p.Value.TextValue()
		if p.Operator == Contains {
			return fmt.Sprintf("%s.value_text LIKE ? ESCAPE '\\'", alias), []any{"%" + escapeLike(v) + "%"}, nil
		}
		op := p.Operator.sql()
		if op == "" {
			return "", nil, &taskerr.CacheError{Op: "predicate", Err: fmt.Errorf("operator not valid for text field %q", p.Field)}
		}
		return fmt.Sprintf("%s.value_text %s ?", alias, op), []any{v}, nil

	case record.KindInt:
		v, _ := p.Value.IntValue()
		op := p.Operator.sql()
		if op == "" {
			return "", nil, &taskerr.CacheError{Op: "predicate", Err: fmt.Errorf("Contains not valid for int field %q", p.Field)}
		}
		return fmt.Sprintf("%s.value_int %s ?", alias, op), []any{v}, nil

	case record.KindBool:
		v, _ := p.Value.BoolValue()
		op := p.Operator.sql()
		if op == "" || p.Operator == Gt || p.Operator == Gte || p.Operator == Lt || p.Operator == Lte {
			return "", nil, &taskerr.CacheError{Op: "predicate", Err: fmt.Errorf("only Eq/Ne valid for bool field %q", p.Field)}
		}
		return fmt.Sprintf("%s.value_bool %s ?", alias, op), []any{v}, nil

	default:
		return "", nil, &taskerr.CacheError{Op: "predicate", Err: fmt.Errorf("unknown scalar kind for field %q", p.Field)}
	}
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
