package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/kailas-cloud/reindexer/internal/domain/resource"
	"github.com/kailas-cloud/reindexer/internal/domain/selection"
)

var resourceColumns = []string{
	`"ID"`, `"Affiliation"`, `"LocalID"`, `"QualityLevel"`, `"Name"`, `"ResourceGroup"`, `"Type"`,
	`"ShortDescription"`, `"ProviderID"`, `"Description"`, `"Topics"`, `"Keywords"`, `"Audience"`,
	`"StartDateTime"`, `"EndDateTime"`,
}

var criterionColumn = map[selection.Kind]string{
	selection.KindGroup:       `"ResourceGroup"`,
	selection.KindType:        `"Type"`,
	selection.KindAffiliation: `"Affiliation"`,
}

// Relations enumerates every relation row. The sequence is lazy and single-use;
// a query or scan failure is yielded as the final element.
func (c *Catalog) Relations(ctx context.Context) iter.Seq2[resource.Relation, error] {
	query := fmt.Sprintf(`SELECT "FirstResourceID", "SecondResourceID", "RelationType" FROM %s`,
		quoteTable(c.relationTable))

	return func(yield func(resource.Relation, error) bool) {
		rows, err := c.db.QueryContext(ctx, query)
		if err != nil {
			yield(resource.Relation{}, fmt.Errorf("query relations: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var rel resource.Relation
			var relType sql.NullString
			if err := rows.Scan(&rel.FirstResourceID, &rel.SecondResourceID, &relType); err != nil {
				yield(resource.Relation{}, fmt.Errorf("scan relation: %w", err))
				return
			}
			rel.RelationType = relType.String
			if !yield(rel, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(resource.Relation{}, fmt.Errorf("iterate relations: %w", err))
		}
	}
}

// Resources streams the resources matching sel, conjunction across criteria.
func (c *Catalog) Resources(ctx context.Context, sel selection.Selection) iter.Seq2[resource.Resource, error] {
	query, args := buildResourceQuery(c.dialect, c.resourceTable, sel)

	return func(yield func(resource.Resource, error) bool) {
		rows, err := c.db.QueryContext(ctx, query, args...)
		if err != nil {
			yield(resource.Resource{}, fmt.Errorf("query resources: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			res, err := scanResource(rows)
			if err != nil {
				yield(resource.Resource{}, fmt.Errorf("scan resource: %w", err))
				return
			}
			if !yield(res, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(resource.Resource{}, fmt.Errorf("iterate resources: %w", err))
		}
	}
}

// buildResourceQuery renders the filter-resources query. Clauses follow selection order
// and values their sorted order, so a given selection always produces the same SQL.
func buildResourceQuery(d Dialect, table string, sel selection.Selection) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(resourceColumns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(quoteTable(table))

	var args []any
	first := true
	for _, crit := range sel.Criteria() {
		column, ok := criterionColumn[crit.Kind()]
		if !ok {
			continue // KindAll adds no predicate
		}
		if first {
			b.WriteString(" WHERE ")
			first = false
		} else {
			b.WriteString(" AND ")
		}
		b.WriteString(column)
		b.WriteString(" IN (")
		for i, v := range crit.Values() {
			if i > 0 {
				b.WriteString(", ")
			}
			args = append(args, v)
			b.WriteString(placeholder(d, len(args)))
		}
		b.WriteString(")")
	}
	b.WriteString(` ORDER BY "ID"`)

	return b.String(), args
}

func placeholder(d Dialect, n int) string {
	if d == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func scanResource(rows *sql.Rows) (resource.Resource, error) {
	var (
		res                                          resource.Resource
		localID, quality, name, short, provider      sql.NullString
		description, topics, keywords, audience, aff sql.NullString
		start, end                                   sql.NullTime
	)
	err := rows.Scan(
		&res.ID, &aff, &localID, &quality, &name, &res.Group, &res.Type,
		&short, &provider, &description, &topics, &keywords, &audience,
		&start, &end,
	)
	if err != nil {
		return resource.Resource{}, err
	}

	res.Affiliation = aff.String
	res.LocalID = localID.String
	res.QualityLevel = quality.String
	res.Name = name.String
	res.ShortDescription = short.String
	res.ProviderID = provider.String
	res.Description = description.String
	res.Topics = topics.String
	res.Keywords = keywords.String
	res.Audience = audience.String
	if start.Valid {
		t := start.Time
		res.StartDateTime = &t
	}
	if end.Valid {
		t := end.Time
		res.EndDateTime = &t
	}
	return res, nil
}
