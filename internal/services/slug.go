package services

import (
	"math/rand"
	"strconv"

	"github.com/gosimple/slug"
)

// 18^6 distinct prefixes keep two articles with the same title apart.
const slugTokenSpace = 34012224

// generateSlug returns "<base36 token>-<slugified title>", lower case.
func generateSlug(title string) string {
	token := strconv.FormatInt(rand.Int63n(slugTokenSpace), 36)
	s := slug.Make(title)
	if s == "" {
		return token
	}
	return token + "-" + s
}
