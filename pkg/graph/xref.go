package graph

import (
	"strings"

	"github.com/nihkg/reporterkg/pkg/source"
)

// CrossRefIndex maps a shared core project number to every per-year
// application identifier that carries it. It is built once from the
// project table and read-only afterwards.
type CrossRefIndex struct {
	applications map[string][]string
}

// NormalizeKey canonicalizes a linking key before index insertion or
// lookup: surrounding whitespace stripped, upper-cased. PUBLINK casing
// is not consistent with the project files.
func NormalizeKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// BuildCrossRefIndex indexes the project table by core project number.
// Rows with an empty or missing core project number are excluded from
// all derived relationships.
func BuildCrossRefIndex(projects *source.Table) *CrossRefIndex {
	index := &CrossRefIndex{applications: make(map[string][]string)}
	for row := 0; row < projects.Len(); row++ {
		appID, ok := projects.Value(row, source.ColApplicationID)
		if !ok || appID == "" {
			continue
		}
		core, _ := projects.Value(row, source.ColCoreProjectNum)
		key := NormalizeKey(core)
		if key == "" {
			continue
		}
		index.applications[key] = append(index.applications[key], appID)
	}
	return index
}

// Lookup returns every application identifier sharing the key. A miss is
// a defined result, not an error; the caller decides the skip policy.
func (x *CrossRefIndex) Lookup(key string) ([]string, bool) {
	ids, ok := x.applications[NormalizeKey(key)]
	return ids, ok
}

// Len reports the number of distinct shared keys.
func (x *CrossRefIndex) Len() int {
	return len(x.applications)
}
