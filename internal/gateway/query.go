package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Query is a PostgREST request against one table. Build it with From and the
// chained filter methods, then run it with Execute.
type Query struct {
	client *Client
	table  string
	method string
	verb   string
	params [][2]string
	body   any
	prefer []string
	single bool
}

func (c *Client) From(table string) *Query {
	return &Query{client: c, table: table, method: http.MethodGet, verb: "select"}
}

// Select sets the column projection, including embedded joins such as
// "*,doctors(users(full_name))".
func (q *Query) Select(columns string) *Query {
	q.setParam("select", columns)
	return q
}

func (q *Query) Eq(column, value string) *Query {
	q.params = append(q.params, [2]string{column, "eq." + value})
	return q
}

func (q *Query) In(column string, values []string) *Query {
	q.params = append(q.params, [2]string{column, "in.(" + strings.Join(values, ",") + ")"})
	return q
}

func (q *Query) Order(column string, ascending bool) *Query {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	term := column + "." + dir
	for i := range q.params {
		if q.params[i][0] == "order" {
			q.params[i][1] += "," + term
			return q
		}
	}
	q.params = append(q.params, [2]string{"order", term})
	return q
}

func (q *Query) Limit(n int) *Query {
	q.setParam("limit", strconv.Itoa(n))
	return q
}

// Single expects exactly one row; zero rows yields an error wrapping
// ErrNotFound.
func (q *Query) Single() *Query {
	q.single = true
	return q
}

func (q *Query) Insert(row any) *Query {
	q.method = http.MethodPost
	q.verb = "insert"
	q.body = row
	q.prefer = append(q.prefer, "return=representation")
	return q
}

// Upsert inserts or merges on the given comma-separated conflict columns.
func (q *Query) Upsert(row any, onConflict string) *Query {
	q.method = http.MethodPost
	q.verb = "upsert"
	q.body = row
	q.prefer = append(q.prefer, "resolution=merge-duplicates", "return=representation")
	if onConflict != "" {
		q.setParam("on_conflict", strings.ReplaceAll(onConflict, " ", ""))
	}
	return q
}

func (q *Query) Update(values any) *Query {
	q.method = http.MethodPatch
	q.verb = "update"
	q.body = values
	q.prefer = append(q.prefer, "return=representation")
	return q
}

func (q *Query) Delete() *Query {
	q.method = http.MethodDelete
	q.verb = "delete"
	q.prefer = append(q.prefer, "return=representation")
	return q
}

// Execute runs the query and decodes the rows (or the single row) into dest.
// dest may be nil for writes whose result is not needed.
func (q *Query) Execute(ctx context.Context, dest any) error {
	headers := map[string]string{}
	if len(q.prefer) > 0 {
		headers["Prefer"] = strings.Join(q.prefer, ",")
	}
	if q.single {
		headers["Accept"] = "application/vnd.pgrst.object+json"
	}

	return q.client.do(ctx, request{
		operation: q.table + "." + q.verb,
		method:    q.method,
		path:      "/rest/v1/" + q.table,
		query:     q.encode(),
		body:      q.body,
		headers:   headers,
	}, dest)
}

func (q *Query) setParam(key, value string) {
	for i := range q.params {
		if q.params[i][0] == key {
			q.params[i][1] = value
			return
		}
	}
	q.params = append(q.params, [2]string{key, value})
}

func (q *Query) encode() string {
	parts := make([]string, 0, len(q.params))
	for _, p := range q.params {
		parts = append(parts, url.QueryEscape(p[0])+"="+url.QueryEscape(p[1]))
	}
	return strings.Join(parts, "&")
}
