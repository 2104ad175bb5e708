package config

import "regexp"

// placeholderPattern matches ${input:<id>} references inside manifest
// string fields. The id charset mirrors what editors accept for input ids.
var placeholderPattern = regexp.MustCompile(`\$\{input:([A-Za-z0-9_.-]+)\}`)

// Placeholders returns the input ids referenced by s, in order of
// appearance. Duplicates are preserved.
func Placeholders(s string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m[1])
	}
	return ids
}

// ExpandPlaceholders replaces every ${input:<id>} in s using the resolve
// function. It assumes validation already guaranteed that every referenced
// id is declared.
func ExpandPlaceholders(s string, resolve func(id string) string) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		id := placeholderPattern.FindStringSubmatch(match)[1]
		return resolve(id)
	})
}

// serverPlaceholders collects every input id referenced by any string
// field of a server entry.
func serverPlaceholders(server ServerConfig) []string {
	var ids []string
	ids = append(ids, Placeholders(server.Command)...)
	for _, arg := range server.Args {
		ids = append(ids, Placeholders(arg)...)
	}
	for _, v := range server.Env {
		ids = append(ids, Placeholders(v)...)
	}
	ids = append(ids, Placeholders(server.URL)...)
	return ids
}
