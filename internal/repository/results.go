package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/abrezinsky/gymscore/internal/models"
)

// ResultFilter selects and orders score rows for the results search.
// Text is a case-insensitive substring over names and level; Number matches
// gymnast or entry IDs exactly. When both are set a row matching either is kept.
type ResultFilter struct {
	Text          string
	Number        *int
	CompetitionID *int
	SortBy        string
	Descending    bool
	Limit         int // 0 returns every row
	Offset        int
}

// levelOrderExpr sorts levels canonically in SQL
var levelOrderExpr = func() string {
	var b strings.Builder
	b.WriteString("CASE g.level")
	for _, l := range models.Levels() {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", l, l.Rank())
	}
	fmt.Fprintf(&b, " ELSE %d END", models.Level("").Rank())
	return b.String()
}()

// resultSortColumns whitelists ORDER BY expressions
var resultSortColumns = map[string]string{
	"total":            "s.total",
	"e_score":          "s.e_score",
	"d_score":          "s.d_score",
	"penalty":          "s.penalty",
	"gymnast_name":     "g.name",
	"club_name":        "c.name",
	"competition_name": "comp.name",
	"apparatus_name":   "a.name",
	"level":            levelOrderExpr,
	"id":               "g.id",
	"entry_id":         "e.id",
}

// ValidResultSort reports whether key is an accepted sort key
func ValidResultSort(key string) bool {
	_, ok := resultSortColumns[key]
	return ok
}

const resultsFrom = `
	FROM scores s
	JOIN entries e ON e.id = s.entry_id
	JOIN gymnasts g ON g.id = e.gymnast_id
	JOIN clubs c ON c.id = g.club_id
	JOIN competitions comp ON comp.id = e.competition_id
	JOIN apparatus a ON a.id = s.apparatus_id`

// escapeLike escapes LIKE wildcards so user text matches literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (f ResultFilter) where() (string, []any) {
	var clauses []string
	var args []any

	if f.CompetitionID != nil {
		clauses = append(clauses, "e.competition_id = ?")
		args = append(args, *f.CompetitionID)
	}

	var match []string
	if text := strings.TrimSpace(f.Text); text != "" {
		pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
		for _, col := range []string{"g.name", "c.name", "comp.name", "a.name", "g.level"} {
			match = append(match, "LOWER("+col+`) LIKE ? ESCAPE '\'`)
			args = append(args, pattern)
		}
	}
	if f.Number != nil {
		match = append(match, "g.id = ?", "e.id = ?")
		args = append(args, *f.Number, *f.Number)
	}
	if len(match) > 0 {
		clauses = append(clauses, "("+strings.Join(match, " OR ")+")")
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// SearchResults returns one page of matching rows and the total match count
func (r *Repository) SearchResults(ctx context.Context, f ResultFilter) ([]models.ResultRow, int, error) {
	sortKey := f.SortBy
	if sortKey == "" {
		sortKey = "total"
	}
	orderExpr, ok := resultSortColumns[sortKey]
	if !ok {
		return nil, 0, ErrInvalidSort
	}
	direction := "ASC"
	if f.Descending {
		direction = "DESC"
	}

	where, args := f.where()

	var total int
	if err := r.queryRow(ctx, `SELECT COUNT(*)`+resultsFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	// Safe to concatenate: orderExpr comes from the whitelist above
	query := `
		SELECT s.id, e.id, g.id, g.name, c.name, g.level, comp.id, comp.name,
			a.id, a.name, s.e_score, s.d_score, s.penalty, s.total` +
		resultsFrom + where +
		` ORDER BY ` + orderExpr + ` ` + direction + `, s.id ` + direction

	pageArgs := args
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		pageArgs = append(append([]any{}, args...), f.Limit, f.Offset)
	}

	rows, err := r.query(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results := []models.ResultRow{}
	for rows.Next() {
		var row models.ResultRow
		if err := rows.Scan(&row.ScoreID, &row.EntryID, &row.GymnastID, &row.GymnastName, &row.ClubName, &row.Level,
			&row.CompetitionID, &row.CompetitionName, &row.ApparatusID, &row.ApparatusName,
			&row.EScore, &row.DScore, &row.Penalty, &row.Total); err != nil {
			return nil, 0, err
		}
		results = append(results, row)
	}
	return results, total, rows.Err()
}
