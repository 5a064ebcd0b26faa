package jenkins

import (
	"sync"

	"github.com/itchyny/gojq"
)

// jq expressions for digging structures out of the loosely-typed API JSON.
// The API may legally have zero or more unrelated property/action blocks;
// the first matching list wins and anything misshapen is skipped.
const (
	jobsQuery      = `.jobs // []`
	buildsQuery    = `.builds // []`
	paramDefsQuery = `first(.property[]? | objects | select(has("parameterDefinitions")) | .parameterDefinitions | arrays) // []`
	buildArgsQuery = `first(.actions[]? | objects | select(has("parameters")) | .parameters | arrays) // []`
)

// queryCache compiles jq expressions once and reuses them across goroutines.
type queryCache struct {
	mu    sync.RWMutex
	cache map[string]*gojq.Code
}

func newQueryCache() *queryCache {
	return &queryCache{cache: make(map[string]*gojq.Code)}
}

// list evaluates the expression against data and returns the resulting list.
// Any evaluation failure or non-list result yields an empty list: field
// extraction must tolerate absence or wrong shape without raising.
func (q *queryCache) list(expression string, data map[string]any) []any {
	code, err := q.getOrCompile(expression)
	if err != nil {
		return nil
	}
	iter := code.Run(data)
	val, ok := iter.Next()
	if !ok {
		return nil
	}
	if _, isErr := val.(error); isErr {
		return nil
	}
	l, isList := val.([]any)
	if !isList {
		return nil
	}
	return l
}

func (q *queryCache) getOrCompile(expression string) (*gojq.Code, error) {
	q.mu.RLock()
	if code, ok := q.cache[expression]; ok {
		q.mu.RUnlock()
		return code, nil
	}
	q.mu.RUnlock()

	q.mu.Lock()
	defer q.mu.Unlock()

	if code, ok := q.cache[expression]; ok {
		return code, nil
	}

	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, err
	}
	code, err := gojq.Compile(query,
		// Sandbox: block $ENV and env access.
		gojq.WithEnvironLoader(func() []string { return nil }),
	)
	if err != nil {
		return nil, err
	}
	q.cache[expression] = code
	return code, nil
}
