package entity

import (
	"regexp"
	"strings"
	"time"

	"edushelf-be/pkg/extract"

	"github.com/google/uuid"
)

type Document struct {
	Id          uuid.UUID
	OwnerId     uuid.UUID
	Title       string
	StoragePath string
	FileType    string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// ExtensionSuffixPattern matches a trailing extension of an uploadable type,
// so "Chapter 3.1" keeps its ".1". The SQL title lookup uses the same pattern.
var ExtensionSuffixPattern = extensionSuffix()

var extensionPattern = regexp.MustCompile(ExtensionSuffixPattern)

func extensionSuffix() string {
	exts := extract.Extensions()
	names := make([]string, len(exts))
	for i, ext := range exts {
		names[i] = regexp.QuoteMeta(strings.TrimPrefix(ext, "."))
	}
	return `\.(` + strings.Join(names, "|") + `)$`
}

// TitleKeys returns the lowercase forms a title or requested name can match by:
// the name itself and the name without a trailing file extension.
func TitleKeys(name string) []string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return nil
	}
	stripped := extensionPattern.ReplaceAllString(lower, "")
	if stripped == lower || stripped == "" {
		return []string{lower}
	}
	return []string{lower, stripped}
}

// MatchesTitle reports whether a document title and a requested name refer to
// the same file, ignoring case and an optional extension on either side.
func MatchesTitle(title, name string) bool {
	for _, a := range TitleKeys(title) {
		for _, b := range TitleKeys(name) {
			if a == b {
				return true
			}
		}
	}
	return false
}
