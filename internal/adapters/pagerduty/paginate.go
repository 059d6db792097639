package pagerduty

import (
	"context"
	"encoding/json"
	"net/url"
	"slices"
	"strconv"

	perr "oncallbot/internal/platform/errors"
)

// PageSize is the largest page PagerDuty serves
const PageSize = 100

// Getter fetches one JSON document; *Client implements it
type Getter interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
}

// PageRequest describes an offset/limit listing walk
type PageRequest struct {
	// Path is the listing endpoint, e.g. "/oncalls"
	Path string
	// Params are sent on every page; offset, limit and total are managed by Paginate
	Params url.Values
	// Content names the payload array in each page, e.g. "oncalls"
	Content string
	// Secondary names an embedded object whose id keys items lacking their own id, e.g. "user"
	Secondary string
	// SortBy names a numeric field to stably sort by and prefix keys with, e.g. "escalation_level"
	SortBy string
	// Limit overrides PageSize
	Limit int
}

// Index is the merged result of a walk: Keys in iteration order plus a lookup map
type Index[T any] struct {
	Keys  []string
	Items map[string]T
}

// Len reports the number of distinct items
func (ix Index[T]) Len() int { return len(ix.Keys) }

// Get returns the item stored under key
func (ix Index[T]) Get(key string) (T, bool) {
	v, ok := ix.Items[key]
	return v, ok
}

// Values returns the items in key order
func (ix Index[T]) Values() []T {
	out := make([]T, 0, len(ix.Keys))
	for _, k := range ix.Keys {
		out = append(out, ix.Items[k])
	}
	return out
}

// First returns the first item in key order
func (ix Index[T]) First() (T, bool) {
	if len(ix.Keys) == 0 {
		var zero T
		return zero, false
	}
	return ix.Items[ix.Keys[0]], true
}

type page struct {
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
	Total  *int  `json:"total"`
	More   *bool `json:"more"`
}

type entry[T any] struct {
	key  string
	sort float64
	item T
}

// Paginate walks req to completion and returns the merged, indexed items
// any failed page aborts the walk; no partial index is returned
func Paginate[T any](ctx context.Context, g Getter, req PageRequest) (Index[T], error) {
	limit := req.Limit
	if limit <= 0 {
		limit = PageSize
	}

	var raws []json.RawMessage
	offset := 0
	for {
		q := url.Values{}
		for k, vv := range req.Params {
			q[k] = append([]string(nil), vv...)
		}
		q.Set("limit", strconv.Itoa(limit))
		q.Set("offset", strconv.Itoa(offset))
		q.Set("total", "true")

		var doc map[string]json.RawMessage
		if err := g.GetJSON(ctx, req.Path, q, &doc); err != nil {
			return Index[T]{}, err
		}

		items, p, err := decodePage(doc, req.Content)
		if err != nil {
			return Index[T]{}, perr.WithOp(err, req.Path)
		}
		raws = append(raws, items...)

		if p.Limit <= 0 {
			return Index[T]{}, perr.Malformedf("pagerduty %s: page reports limit %d", req.Path, p.Limit)
		}
		// a page that does not answer the offset we asked for would repeat the walk forever
		if p.Offset != offset {
			return Index[T]{}, perr.Malformedf("pagerduty %s: asked for offset %d, page reports %d", req.Path, offset, p.Offset)
		}
		offset = p.Offset + p.Limit
		switch {
		case p.Total != nil:
			if offset >= *p.Total {
				return buildIndex[T](raws, req)
			}
		case p.More != nil:
			if !*p.More {
				return buildIndex[T](raws, req)
			}
		default:
			return Index[T]{}, perr.Malformedf("pagerduty %s: page reports neither total nor more", req.Path)
		}
	}
}

func decodePage(doc map[string]json.RawMessage, content string) ([]json.RawMessage, page, error) {
	var p page
	raw, ok := doc[content]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, p, perr.Malformedf("page does not have %q", content)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, p, perr.Wrapf(err, perr.ErrorCodeMalformedResponse, "page %q is not an array", content)
	}
	for _, f := range []struct {
		name string
		dst  any
	}{{"offset", &p.Offset}, {"limit", &p.Limit}, {"total", &p.Total}, {"more", &p.More}} {
		v, ok := doc[f.name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, f.dst); err != nil {
			return nil, p, perr.Wrapf(err, perr.ErrorCodeMalformedResponse, "page field %q", f.name)
		}
	}
	return items, p, nil
}

// buildIndex sorts by req.SortBy (stable, ascending) and keys items by "sort-id" or id
func buildIndex[T any](raws []json.RawMessage, req PageRequest) (Index[T], error) {
	entries := make([]entry[T], 0, len(raws))
	for _, raw := range raws {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return Index[T]{}, perr.Wrapf(err, perr.ErrorCodeMalformedResponse, "%s item is not an object", req.Content)
		}
		id := idOf(fields, "id")
		if id == "" && req.Secondary != "" {
			var sec map[string]json.RawMessage
			if json.Unmarshal(fields[req.Secondary], &sec) == nil {
				id = idOf(sec, "id")
			}
		}
		if id == "" {
			return Index[T]{}, perr.Malformedf("%s item has no id", req.Content)
		}

		e := entry[T]{key: id}
		if req.SortBy != "" {
			n, err := numberOf(fields, req.SortBy)
			if err != nil {
				return Index[T]{}, err
			}
			e.sort = n
			e.key = strconv.FormatFloat(n, 'f', -1, 64) + "-" + id
		}
		if err := json.Unmarshal(raw, &e.item); err != nil {
			return Index[T]{}, perr.Wrapf(err, perr.ErrorCodeMalformedResponse, "%s item decode", req.Content)
		}
		entries = append(entries, e)
	}

	if req.SortBy != "" {
		slices.SortStableFunc(entries, func(a, b entry[T]) int {
			switch {
			case a.sort < b.sort:
				return -1
			case a.sort > b.sort:
				return 1
			}
			return 0
		})
	}

	ix := Index[T]{Items: make(map[string]T, len(entries))}
	for _, e := range entries {
		if _, seen := ix.Items[e.key]; !seen {
			ix.Keys = append(ix.Keys, e.key)
		}
		ix.Items[e.key] = e.item
	}
	return ix, nil
}

func idOf(obj map[string]json.RawMessage, field string) string {
	raw, ok := obj[field]
	if !ok {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

func numberOf(obj map[string]json.RawMessage, field string) (float64, error) {
	raw, ok := obj[field]
	if !ok {
		return 0, perr.Malformedf("item has no sort field %q", field)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, perr.Wrapf(err, perr.ErrorCodeMalformedResponse, "sort field %q is not numeric", field)
	}
	return f, nil
}
