//go:build tools
// +build tools

package main

import (
	"encoding/json"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
)

// Schema represents a JSON Schema object from facts.json
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// Property represents a JSON Schema property
type Property struct {
	Type string `json:"type"`
}

// getRequiredFacts parses the policy input schema to get the fact keys the
// policy depends on
func getRequiredFacts(schemaPath string) (map[string]bool, error) {
	data, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	var schema Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse schema JSON: %w", err)
	}

	requiredFacts := make(map[string]bool)
	for _, key := range schema.Required {
		requiredFacts[key] = false // not found yet
	}

	return requiredFacts, nil
}

// getProvidedFacts scans the source packages for fact key declarations.
// Sources and derived facts both carry their key as a string literal in a
// composite literal field named Key (or key for unexported adapters).
func getProvidedFacts() (map[string]bool, error) {
	providedFacts := make(map[string]bool)

	err := filepath.Walk("internal/facts", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		fset := token.NewFileSet()
		file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			return err
		}

		ast.Inspect(file, func(n ast.Node) bool {
			kv, ok := n.(*ast.KeyValueExpr)
			if !ok {
				return true
			}
			ident, ok := kv.Key.(*ast.Ident)
			if !ok || (ident.Name != "Key" && ident.Name != "key") {
				return true
			}
			if lit, ok := kv.Value.(*ast.BasicLit); ok && lit.Kind == token.STRING {
				providedFacts[strings.Trim(lit.Value, "\"")] = true
			}
			return true
		})
		return nil
	})

	return providedFacts, err
}

func main() {
	requiredFacts, err := getRequiredFacts("policy/schemas/facts.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting required facts: %v\n", err)
		os.Exit(1)
	}

	providedFacts, err := getProvidedFacts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scanning sources: %v\n", err)
		os.Exit(1)
	}

	missingFacts := []string{}
	for key := range requiredFacts {
		if !providedFacts[key] {
			missingFacts = append(missingFacts, key)
		}
	}

	if len(missingFacts) > 0 {
		fmt.Fprintf(os.Stderr, "ERROR: The following policy facts have no source implementations:\n")
		for _, key := range missingFacts {
			fmt.Fprintf(os.Stderr, "  - %s\n", key)
		}
		os.Exit(1)
	}

	fmt.Println("SUCCESS: All policy facts have source implementations.")
}
