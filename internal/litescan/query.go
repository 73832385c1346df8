package litescan

import (
	"strconv"
	"strings"

	"github.com/xwb1989/sqlparser"
)

// projectionItem is one output column of a SELECT list: either a named
// column (including the implicit "id") or the COUNT(*) aggregate.
type projectionItem struct {
	column  string
	isCount bool
	isStar  bool
}

// parsedQuery is a SELECT statement resolved against a known table.
type parsedQuery struct {
	table       string
	projections []projectionItem
	where       sqlparser.Expr
}

// parseSelect parses a SQL string and extracts the pieces this engine
// supports: SELECT <proj,...> FROM <table> [WHERE <predicate>].
func parseSelect(sql string) (*parsedQuery, error) {
	stmt, err := sqlparser.Parse(sql)
	if err != nil {
		return nil, wrapErr("parse_select", ErrUnsupportedStatement, map[string]interface{}{"sql": sql, "cause": err.Error()})
	}
	sel, ok := stmt.(*sqlparser.Select)
	if !ok {
		return nil, wrapErr("parse_select", ErrUnsupportedStatement, map[string]interface{}{"sql": sql})
	}

	tableName := ""
	if len(sel.From) > 0 {
		if aliased, ok := sel.From[0].(*sqlparser.AliasedTableExpr); ok {
			if tn, ok := aliased.Expr.(sqlparser.TableName); ok {
				tableName = tn.Name.String()
			}
		}
	}
	if tableName == "" {
		return nil, wrapErr("parse_select", ErrUnsupportedStatement, map[string]interface{}{"sql": sql})
	}

	projections, err := parseProjections(sel.SelectExprs)
	if err != nil {
		return nil, err
	}

	pq := &parsedQuery{table: tableName, projections: projections}
	if sel.Where != nil {
		pq.where = sel.Where.Expr
	}
	return pq, nil
}

func parseProjections(exprs sqlparser.SelectExprs) ([]projectionItem, error) {
	var items []projectionItem
	for _, se := range exprs {
		switch e := se.(type) {
		case *sqlparser.StarExpr:
			items = append(items, projectionItem{isStar: true})
		case *sqlparser.AliasedExpr:
			switch inner := e.Expr.(type) {
			case *sqlparser.ColName:
				items = append(items, projectionItem{column: inner.Name.String()})
			case *sqlparser.FuncExpr:
				if strings.EqualFold(inner.Name.String(), "count") {
					items = append(items, projectionItem{isCount: true})
					continue
				}
				return nil, wrapErr("parse_projections", ErrUnsupportedExpr, map[string]interface{}{"func": inner.Name.String()})
			default:
				return nil, wrapErr("parse_projections", ErrUnsupportedExpr, map[string]interface{}{"expr": inner})
			}
		default:
			return nil, wrapErr("parse_projections", ErrUnsupportedExpr, map[string]interface{}{"expr": se})
		}
	}
	return items, nil
}

// resolveProjections expands a StarExpr, if present, into one item per
// declared table column. The rowid is never implicitly added by "*":
// SQLite's "*" reflects the declared columns only.
func resolveProjections(items []projectionItem, schema *TableSchema) []projectionItem {
	var out []projectionItem
	for _, it := range items {
		if it.isStar {
			for _, c := range schema.Columns {
				out = append(out, projectionItem{column: c.Name})
			}
			continue
		}
		out = append(out, it)
	}
	return out
}

// planIndexEquality inspects a WHERE clause for the single shape this
// engine accelerates: a lone equality comparison "column = literal" where
// column has a single-column index. Any other shape (AND/OR, inequality,
// a predicate touching a column without an index) falls back to a
// sequential scan with per-row evaluation.
func planIndexEquality(where sqlparser.Expr, schema *TableSchema) (*IndexSchema, CellValue, bool) {
	if where == nil {
		return nil, CellValue{}, false
	}
	cmp, ok := where.(*sqlparser.ComparisonExpr)
	if !ok || cmp.Operator != "=" {
		return nil, CellValue{}, false
	}
	colName, ok := cmp.Left.(*sqlparser.ColName)
	if !ok {
		return nil, CellValue{}, false
	}
	litVal, ok := cmp.Right.(*sqlparser.SQLVal)
	if !ok {
		return nil, CellValue{}, false
	}

	for i := range schema.Indexes {
		idx := &schema.Indexes[i]
		if strings.EqualFold(idx.Column, colName.Name.String()) {
			return idx, cellValueFromSQLVal(litVal), true
		}
	}
	return nil, CellValue{}, false
}

// cellValueFromSQLVal converts a parsed SQL literal into the CellValue
// kind it would be stored as, so index-key comparisons compare like kinds.
func cellValueFromSQLVal(v *sqlparser.SQLVal) CellValue {
	switch v.Type {
	case sqlparser.IntVal:
		n, err := strconv.ParseInt(string(v.Val), 10, 64)
		if err == nil {
			return intValue(n)
		}
		return textValue(string(v.Val))
	case sqlparser.FloatVal:
		f, err := strconv.ParseFloat(string(v.Val), 64)
		if err == nil {
			return floatValue(f)
		}
		return textValue(string(v.Val))
	default:
		return textValue(string(v.Val))
	}
}

// evaluateWhere recursively evaluates a WHERE predicate tree of
// {=, !=, AND, OR} leaves and connectives against a resolved row, coercing
// every comparison to text.
func evaluateWhere(expr sqlparser.Expr, row Row) (bool, error) {
	switch node := expr.(type) {
	case *sqlparser.ComparisonExpr:
		return evaluateComparison(node, row)
	case *sqlparser.AndExpr:
		left, err := evaluateWhere(node.Left, row)
		if err != nil || !left {
			return false, err
		}
		return evaluateWhere(node.Right, row)
	case *sqlparser.OrExpr:
		left, err := evaluateWhere(node.Left, row)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return evaluateWhere(node.Right, row)
	case *sqlparser.ParenExpr:
		return evaluateWhere(node.Expr, row)
	default:
		return false, wrapErr("evaluate_where", ErrUnsupportedExpr, map[string]interface{}{"expr": expr})
	}
}

func evaluateComparison(cmp *sqlparser.ComparisonExpr, row Row) (bool, error) {
	colName, ok := cmp.Left.(*sqlparser.ColName)
	if !ok {
		return false, wrapErr("evaluate_comparison", ErrUnsupportedExpr, map[string]interface{}{"left": cmp.Left})
	}
	litVal, ok := cmp.Right.(*sqlparser.SQLVal)
	if !ok {
		return false, wrapErr("evaluate_comparison", ErrUnsupportedExpr, map[string]interface{}{"right": cmp.Right})
	}

	rowVal, err := row.Column(colName.Name.String())
	if err != nil {
		return false, err
	}

	left := rowVal.String()
	right := string(litVal.Val)

	switch cmp.Operator {
	case "=":
		return left == right, nil
	case "!=", "<>":
		return left != right, nil
	default:
		return false, wrapErr("evaluate_comparison", ErrUnsupportedExpr, map[string]interface{}{"operator": cmp.Operator})
	}
}
