// Package normalize turns the loosely shaped list payloads returned by the
// BookVerse API into a single Page representation.
//
// The backend is inconsistent about casing and wrapping: the same list may
// arrive as a bare array, as {items,totalCount}, as {Items,TotalCount}, or
// wrapped once more under data/Data. Every list call site goes through List
// so view code never sees the difference.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// maxWrapDepth bounds how many data/Data wrappers are unwrapped.
const maxWrapDepth = 2

// Page is a normalized list response.
type Page struct {
	Items      []json.RawMessage
	TotalCount int
	// HasTotal reports whether the payload carried an explicit count.
	HasTotal bool
}

// Len returns the number of items on the page.
func (p Page) Len() int {
	return len(p.Items)
}

// List extracts items and a total count from raw. Unrecognized shapes
// yield an empty page, never an error.
func List(raw []byte) Page {
	return list(bytes.TrimSpace(raw), 0)
}

func list(raw []byte, depth int) Page {
	if len(raw) == 0 {
		return Page{}
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return Page{}
		}
		return Page{Items: items, TotalCount: len(items)}
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return Page{}
		}
		if page, ok := fromObject(obj, "items", "totalCount"); ok {
			return page
		}
		if page, ok := fromObject(obj, "Items", "TotalCount"); ok {
			return page
		}
		if depth >= maxWrapDepth {
			return Page{}
		}
		for _, key := range []string{"data", "Data"} {
			if inner, ok := obj[key]; ok {
				if page := list(bytes.TrimSpace(inner), depth+1); page.Items != nil {
					return page
				}
			}
		}
	}
	return Page{}
}

func fromObject(obj map[string]json.RawMessage, itemsKey, totalKey string) (Page, bool) {
	rawItems, ok := obj[itemsKey]
	if !ok {
		return Page{}, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(rawItems, &items); err != nil {
		return Page{}, false
	}
	if items == nil {
		items = []json.RawMessage{}
	}

	page := Page{Items: items, TotalCount: len(items)}
	if rawTotal, ok := obj[totalKey]; ok {
		if n, ok := parseCount(rawTotal); ok {
			page.TotalCount = n
			page.HasTotal = true
		}
	}
	return page, true
}

func parseCount(raw json.RawMessage) (int, bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		if n < 0 {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil || i < 0 {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// Decode decodes the page items into T. Field matching is case-insensitive,
// so a struct tagged `json:"title"` accepts both "title" and "Title".
func Decode[T any](p Page) ([]T, error) {
	out := make([]T, 0, len(p.Items))
	for i, item := range p.Items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			return nil, fmt.Errorf("decode item %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Result is a typed, normalized list.
type Result[T any] struct {
	Items      []T
	TotalCount int
	HasTotal   bool
}

// ListOf normalizes raw and decodes its items into T in one step.
func ListOf[T any](raw []byte) (Result[T], error) {
	page := List(raw)
	items, err := Decode[T](page)
	if err != nil {
		return Result[T]{}, err
	}
	return Result[T]{Items: items, TotalCount: page.TotalCount, HasTotal: page.HasTotal}, nil
}

// HasNextPage reports whether another page should be requested after
// receiving itemCount items for the 1-based page. A short page always ends
// the walk, whatever the reported total says.
func HasNextPage(itemCount, pageSize, page, total int) bool {
	if pageSize <= 0 || itemCount < pageSize {
		return false
	}
	if total <= 0 {
		return true
	}
	return page*pageSize < total
}
