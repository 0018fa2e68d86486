// Package curie canonicalizes compact identifiers of the form
// "prefix:local-id" against a curated subset of the Bioregistry.
// Normalization is a pure function with no side effects on pipeline
// state; an unknown prefix is an error, never a silent pass-through.
package curie

import (
	"fmt"
	"strings"
)

// preferred maps lower-cased prefixes (including known synonyms) to the
// registry's preferred prefix. The set covers the vocabularies the
// grounding engine emits.
var preferred = map[string]string{
	"mesh":             "mesh",
	"chebi":            "chebi",
	"go":               "go",
	"hp":               "hp",
	"hpo":              "hp",
	"doid":             "doid",
	"efo":              "efo",
	"mondo":            "mondo",
	"hgnc":             "hgnc",
	"fplx":             "fplx",
	"ncit":             "ncit",
	"uniprot":          "uniprot",
	"up":               "uniprot",
	"taxonomy":         "ncbitaxon",
	"ncbitaxon":        "ncbitaxon",
	"pubchem":          "pubchem.compound",
	"pubchem.compound": "pubchem.compound",
	"ip":               "interpro",
	"interpro":         "interpro",
	"pf":               "pfam",
	"pfam":             "pfam",
	"eccode":           "ec",
	"ec":               "ec",
	"ec-code":          "ec",
}

// Normalize maps a raw CURIE to its canonical registry form: the prefix
// is lower-cased and replaced by the registry's preferred prefix, and a
// redundant embedded prefix ("CHEBI:CHEBI:15377") is stripped from the
// local id. The local id itself is preserved as-is otherwise.
func Normalize(raw string) (string, error) {
	prefix, local, ok := strings.Cut(raw, ":")
	if !ok || prefix == "" || local == "" {
		return "", fmt.Errorf("malformed identifier %q", raw)
	}

	canonical, ok := preferred[strings.ToLower(prefix)]
	if !ok {
		return "", fmt.Errorf("unknown identifier prefix %q", prefix)
	}

	// Strip a redundant embedded prefix from the local id.
	if inner, rest, found := strings.Cut(local, ":"); found && strings.EqualFold(inner, prefix) && rest != "" {
		local = rest
	}

	return canonical + ":" + local, nil
}
