package repository

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns free text into a LIKE pattern matching values that contain it.
// Wildcards in the text are escaped with a backslash.
func ContainsPattern(text string) string {
	return "%" + likeEscaper.Replace(text) + "%"
}
