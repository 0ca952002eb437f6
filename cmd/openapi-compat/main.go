// Package main checks the generated OpenAPI document for backward compatibility.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"fakex/docs"

	"gopkg.in/yaml.v3"
)

var supportedMethods = map[string]struct{}{
	"get":     {},
	"put":     {},
	"post":    {},
	"delete":  {},
	"patch":   {},
	"head":    {},
	"options": {},
}

// requiredOperations is the public API surface that clients depend on.
var requiredOperations = []string{
	"GET /ping",
	"POST /verify-user",
	"GET /posts",
	"POST /posts",
	"GET /posts/{id}",
	"PUT /posts/{id}",
	"DELETE /posts/{id}",
	"GET /posts/{postId}/comments",
	"POST /posts/{postId}/comments",
	"PUT /comments/{id}",
	"DELETE /comments/{id}",
	"POST /posts/{postId}/likes",
	"DELETE /posts/{postId}/likes",
	"GET /user",
	"PUT /user",
	"GET /user/posts",
}

type operation struct {
	Responses map[string]struct{}
}

type parsedSpec struct {
	Paths map[string]map[string]operation
}

func main() {
	basePath := flag.String("base", "", "base OpenAPI swagger.yaml or swagger.json path")
	revisionPath := flag.String("revision", "", "revision document path (defaults to the embedded docs)")
	flag.Parse()

	revisionRaw, err := readRevision(*revisionPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read revision spec: %v\n", err)
		os.Exit(1)
	}
	revisionSpec, err := parseSpec(revisionRaw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse revision spec: %v\n", err)
		os.Exit(1)
	}

	issues := missingOperations(revisionSpec, requiredOperations)

	if strings.TrimSpace(*basePath) != "" {
		// #nosec G304: path comes from CLI flags in a dev tool
		baseRaw, err := os.ReadFile(*basePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load base spec: %v\n", err)
			os.Exit(1)
		}
		baseSpec, err := parseSpec(baseRaw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to parse base spec: %v\n", err)
			os.Exit(1)
		}
		issues = append(issues, compare(baseSpec, revisionSpec)...)
	}

	if len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "- %s\n", issue)
		}
		os.Exit(1)
	}

	fmt.Println("openapi compatibility check passed")
}

func readRevision(path string) ([]byte, error) {
	if strings.TrimSpace(path) == "" {
		return []byte(docs.SwaggerInfo.ReadDoc()), nil
	}
	// #nosec G304: path comes from CLI flags in a dev tool
	return os.ReadFile(path)
}

// parseSpec reads the paths table of a swagger document. JSON input is
// accepted since it is valid YAML.
func parseSpec(raw []byte) (parsedSpec, error) {
	doc := map[string]interface{}{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return parsedSpec{}, err
	}

	pathsRaw, ok := doc["paths"]
	if !ok {
		return parsedSpec{}, errors.New("missing top-level paths field")
	}

	pathsMap, ok := toMap(pathsRaw)
	if !ok {
		return parsedSpec{}, errors.New("paths is not an object")
	}

	spec := parsedSpec{Paths: make(map[string]map[string]operation)}

	for pathKey, pathEntry := range pathsMap {
		pathOpsRaw, ok := toMap(pathEntry)
		if !ok {
			continue
		}

		ops := make(map[string]operation)
		for methodKey, methodEntry := range pathOpsRaw {
			methodLower := strings.ToLower(strings.TrimSpace(methodKey))
			if _, supported := supportedMethods[methodLower]; !supported {
				continue
			}

			methodMap, ok := toMap(methodEntry)
			if !ok {
				continue
			}

			responseSet := make(map[string]struct{})
			if responsesRaw, exists := methodMap["responses"]; exists {
				if responsesMap, ok := toMap(responsesRaw); ok {
					for code := range responsesMap {
						if normalized := strings.ToLower(strings.TrimSpace(code)); normalized != "" {
							responseSet[normalized] = struct{}{}
						}
					}
				}
			}

			ops[methodLower] = operation{Responses: responseSet}
		}

		if len(ops) > 0 {
			spec.Paths[pathKey] = ops
		}
	}

	return spec, nil
}

func toMap(v interface{}) (map[string]interface{}, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		return t, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// missingOperations lists entries of required ("METHOD /path") absent from spec.
func missingOperations(spec parsedSpec, required []string) []string {
	var issues []string
	for _, entry := range required {
		method, path, _ := strings.Cut(entry, " ")
		if _, ok := spec.Paths[path][strings.ToLower(method)]; !ok {
			issues = append(issues, fmt.Sprintf("undocumented operation: %s", entry))
		}
	}
	sort.Strings(issues)
	return issues
}

func compare(base, revision parsedSpec) []string {
	var issues []string

	for path, baseOps := range base.Paths {
		revOps, ok := revision.Paths[path]
		if !ok {
			issues = append(issues, fmt.Sprintf("removed path: %s", path))
			continue
		}

		for method, baseOp := range baseOps {
			revOp, ok := revOps[method]
			if !ok {
				issues = append(issues, fmt.Sprintf("removed operation: %s %s", strings.ToUpper(method), path))
				continue
			}

			for responseCode := range baseOp.Responses {
				if _, ok := revOp.Responses[responseCode]; !ok {
					issues = append(issues, fmt.Sprintf(
						"removed response code: %s %s -> %s",
						strings.ToUpper(method), path, strings.ToUpper(responseCode),
					))
				}
			}
		}
	}

	sort.Strings(issues)
	return issues
}
