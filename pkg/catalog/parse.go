package catalog

import (
	"regexp"
	"unicode"
)

// pathPattern extracts metadata from the directory structure and the
// variable token of the filename (everything before the first underscore).
var pathPattern = regexp.MustCompile(`^[^/]+/Projection-([A-Z]+)/([^/]+)/([^/]+)/([^/]+)/([^_/]+)[^/]*\.nc$`)

// ParsePath parses a store path into a catalog record. The path must
// include the store root segment. It returns false when the path does
// not match the expected hierarchy; callers log and skip such paths.
//
// One institution/model combination in the archive erroneously prefixes
// the variable token with the experiment identifier (e.g. "exp13acabf"
// instead of "acabf"). When the variable token starts with the experiment
// token and the remainder begins with a lowercase letter, the prefix is
// stripped. The lowercase guard avoids mangling variables that merely
// happen to share a prefix with the experiment name. This is a permanent
// data-cleaning rule, not an option.
func ParsePath(scheme, path string) (Record, bool) {
	m := pathPattern.FindStringSubmatch(path)
	if m == nil {
		return Record{}, false
	}

	iceSheet, institution, model, experiment, variable := m[1], m[2], m[3], m[4], m[5]

	if len(variable) > len(experiment) && variable[:len(experiment)] == experiment {
		rest := variable[len(experiment):]
		if unicode.IsLower(rune(rest[0])) {
			variable = rest
		}
	}

	return Record{
		Variable:    variable,
		IceSheet:    iceSheet,
		Institution: institution,
		ModelName:   model,
		Experiment:  experiment,
		URL:         scheme + "://" + path,
	}, true
}
