package chest

import (
	"errors"
	"strings"

	"github.com/mwantia/filechest/pkg/db/store"
)

// TagPrefix marks free-text input as a tag lookup instead of a directory.
const TagPrefix = "tag:"

// ErrEmptyTagQuery is returned for a tag query without a tag name.
var ErrEmptyTagQuery = errors.New("tag query has no tag name")

// Query is either a PathQuery or a TagQuery.
type Query interface {
	isQuery()
}

// PathQuery lists a directory.
type PathQuery struct {
	Dir string
}

// TagQuery looks up every file carrying a tag.
type TagQuery struct {
	Name string
}

func (PathQuery) isQuery() {}
func (TagQuery) isQuery()  {}

// ParseQuery interprets free-text input. Input starting with "tag:" becomes
// a TagQuery with the trimmed remainder, anything else is a directory.
// Blank input lists the working directory.
func ParseQuery(input string) (Query, error) {
	if strings.HasPrefix(input, TagPrefix) {
		name := strings.TrimSpace(strings.TrimPrefix(input, TagPrefix))
		if name == "" {
			return nil, ErrEmptyTagQuery
		}
		return TagQuery{Name: name}, nil
	}

	if strings.TrimSpace(input) == "" {
		return PathQuery{Dir: "."}, nil
	}
	return PathQuery{Dir: input}, nil
}

// ParseTagList splits comma separated tag input. Names are trimmed, empty
// names are dropped and duplicates removed, so " foo , BAR ," yields
// ["foo", "BAR"].
func ParseTagList(text string) []string {
	return store.NormalizeTags(strings.Split(text, ","))
}
