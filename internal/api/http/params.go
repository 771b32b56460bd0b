package httpapi

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"notes-api/internal/model"
)

// dateLayouts допустимые форматы createdAfter / createdBefore
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// parsePagedRequest разбирает query-параметры /paged.
// Отсутствующие параметры получают значения по умолчанию,
// неразбираемые попадают в список проблем.
func parsePagedRequest(q url.Values) (model.PagedRequest, []string) {
	req := model.NewPagedRequest()
	var problems []string

	if v, ok := param(q, "page"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			problems = append(problems, "page must be an integer.")
		} else {
			req.Page = n
		}
	}
	if v, ok := param(q, "pageSize"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			problems = append(problems, "pageSize must be an integer.")
		} else {
			req.PageSize = n
		}
	}
	if v, ok := param(q, "sortDescending"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			problems = append(problems, "sortDescending must be true or false.")
		} else {
			req.SortDescending = b
		}
	}
	if v, ok := param(q, "sortBy"); ok {
		req.SortBy = v
	}

	req.Search = q.Get("search")
	req.Title = q.Get("title")
	req.Content = q.Get("content")

	if v, ok := param(q, "createdAfter"); ok {
		t, err := parseDate(v)
		if err != nil {
			problems = append(problems, "createdAfter must be an ISO 8601 date.")
		} else {
			req.CreatedAfter = &t
		}
	}
	if v, ok := param(q, "createdBefore"); ok {
		t, err := parseDate(v)
		if err != nil {
			problems = append(problems, "createdBefore must be an ISO 8601 date.")
		} else {
			req.CreatedBefore = &t
		}
	}

	return req, problems
}

// param непустое значение параметра
func param(q url.Values, key string) (string, bool) {
	v := strings.TrimSpace(q.Get(key))
	return v, v != ""
}

// parseDate разбирает дату; значения без зоны считаются UTC
func parseDate(v string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}
