// Package main checks that a revision of the admin API document stays
// backward compatible with a published base document.
//
// When -revision is omitted the document compiled into the docs package is
// used, so CI can compare the last release against the current build.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"adminhub/docs"

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

type operation struct {
	Responses map[string]struct{}
	// Required holds "in:name" for every required parameter.
	Required map[string]struct{}
}

type apiDoc struct {
	BasePath string
	Paths    map[string]map[string]operation
}

func main() {
	basePath := flag.String("base", "", "base swagger document (yaml or json)")
	revisionPath := flag.String("revision", "", "revision swagger document; defaults to the built-in docs")
	flag.Parse()

	if strings.TrimSpace(*basePath) == "" {
		fmt.Fprintln(os.Stderr, "usage: openapi-compat -base <path> [-revision <path>]")
		os.Exit(2)
	}

	base, err := loadFile(*basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load base document: %v\n", err)
		os.Exit(1)
	}

	var revision apiDoc
	if strings.TrimSpace(*revisionPath) == "" {
		revision, err = parseDoc([]byte(docs.SwaggerInfo.ReadDoc()))
	} else {
		revision, err = loadFile(*revisionPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load revision document: %v\n", err)
		os.Exit(1)
	}

	issues := compare(base, revision)
	if len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "- %s\n", issue)
		}
		os.Exit(1)
	}

	fmt.Println("openapi compatibility check passed")
}

func loadFile(path string) (apiDoc, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return apiDoc{}, err
	}
	return parseDoc(raw)
}

// parseDoc accepts swagger YAML or JSON; JSON decodes as YAML.
func parseDoc(raw []byte) (apiDoc, error) {
	doc := map[string]interface{}{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return apiDoc{}, err
	}

	pathsRaw, ok := doc["paths"]
	if !ok {
		return apiDoc{}, errors.New("missing top-level paths field")
	}
	pathsMap, ok := toMap(pathsRaw)
	if !ok {
		return apiDoc{}, errors.New("paths is not an object")
	}

	out := apiDoc{Paths: make(map[string]map[string]operation)}
	if bp, ok := doc["basePath"].(string); ok {
		out.BasePath = strings.TrimRight(bp, "/")
	}

	for pathKey, pathEntry := range pathsMap {
		pathOps, ok := toMap(pathEntry)
		if !ok {
			continue
		}

		ops := make(map[string]operation)
		for methodKey, methodEntry := range pathOps {
			method := strings.ToLower(strings.TrimSpace(methodKey))
			if _, supported := supportedMethods[method]; !supported {
				continue
			}
			methodMap, ok := toMap(methodEntry)
			if !ok {
				continue
			}
			ops[method] = operation{
				Responses: responseCodes(methodMap["responses"]),
				Required:  requiredParams(methodMap["parameters"]),
			}
		}

		if len(ops) > 0 {
			out.Paths[pathKey] = ops
		}
	}

	return out, nil
}

func responseCodes(raw interface{}) map[string]struct{} {
	set := make(map[string]struct{})
	responses, ok := toMap(raw)
	if !ok {
		return set
	}
	for code := range responses {
		if normalized := strings.ToLower(strings.TrimSpace(code)); normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return set
}

func requiredParams(raw interface{}) map[string]struct{} {
	set := make(map[string]struct{})
	list, ok := raw.([]interface{})
	if !ok {
		return set
	}
	for _, item := range list {
		param, ok := toMap(item)
		if !ok {
			continue
		}
		if required, _ := param["required"].(bool); !required {
			continue
		}
		in, _ := param["in"].(string)
		name, _ := param["name"].(string)
		if name == "" {
			continue
		}
		set[strings.ToLower(in)+":"+name] = struct{}{}
	}
	return set
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

func compare(base, revision apiDoc) []string {
	var issues []string

	if base.BasePath != revision.BasePath {
		issues = append(issues, fmt.Sprintf("base path changed: %q -> %q", base.BasePath, revision.BasePath))
	}

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

			for code := range baseOp.Responses {
				if _, ok := revOp.Responses[code]; !ok {
					issues = append(issues, fmt.Sprintf(
						"removed response code: %s %s -> %s",
						strings.ToUpper(method), path, strings.ToUpper(code),
					))
				}
			}

			for param := range revOp.Required {
				if _, ok := baseOp.Required[param]; !ok {
					issues = append(issues, fmt.Sprintf(
						"new required parameter: %s %s -> %s",
						strings.ToUpper(method), path, param,
					))
				}
			}
		}
	}

	sort.Strings(issues)
	return issues
}
