package config

import "strings"

const badFileName = "_bad_file_name_"

// cleanName drops runes not allowed in file names, never returning empty
// name.
func cleanName(in, forbidden string) string {
	out := strings.Map(func(sym rune) rune {
		if sym == 0 || strings.ContainsRune(forbidden, sym) {
			return -1
		}
		return sym
	}, in)
	if len(out) == 0 {
		return badFileName
	}
	return out
}
