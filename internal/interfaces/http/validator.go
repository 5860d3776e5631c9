package http

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"instadm/internal/entities"
	"instadm/internal/usecases"
)

// SanitizeString removes null bytes and invalid UTF-8
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")

	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for _, r := range s {
			if r != utf8.RuneError {
				v = append(v, r)
			}
		}
		s = string(v)
	}
	return s
}

// queryInt parses an optional integer query parameter.
func queryInt(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &entities.ValidationError{Message: "Invalid query parameters", Fields: []entities.FieldError{
			{Field: name, Message: "must be an integer"},
		}}
	}
	return n, nil
}

// listParams reads page, limit, sortBy and sortOrder.
func listParams(c *gin.Context) (usecases.ListParams, error) {
	page, err := queryInt(c, "page")
	if err != nil {
		return usecases.ListParams{}, err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return usecases.ListParams{}, err
	}
	return usecases.ListParams{
		Page:      page,
		Limit:     limit,
		SortBy:    strings.TrimSpace(c.Query("sortBy")),
		SortOrder: strings.TrimSpace(c.Query("sortOrder")),
	}, nil
}
