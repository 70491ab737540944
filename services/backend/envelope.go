package backend

import (
	"bytes"

	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/ast"
)

// decodeList accepts `{data: [...]}`, `{<key>: [...]}` for any of keys, or a bare array.
// Anything else, malformed elements included, is an empty list.
func decodeList[T any](body []byte, keys ...string) []T {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []T{}
	}
	if body[0] == '[' {
		return unmarshalList[T](body)
	}

	for _, key := range append([]string{"data"}, keys...) {
		node, err := sonic.Get(body, key)
		if err != nil || node.TypeSafe() != ast.V_ARRAY {
			continue
		}
		raw, err := node.Raw()
		if err != nil {
			continue
		}
		return unmarshalList[T]([]byte(raw))
	}
	return []T{}
}

func unmarshalList[T any](raw []byte) []T {
	out := []T{}
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return []T{}
	}
	return out
}

// decodeOne reads `{data: {...}}` or the bare object. A body it cannot read gives the zero T.
func decodeOne[T any](body []byte) T {
	var out T
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return out
	}
	if node, err := sonic.Get(body, "data"); err == nil && node.TypeSafe() == ast.V_OBJECT {
		if raw, err := node.Raw(); err == nil {
			body = []byte(raw)
		}
	}
	_ = sonic.Unmarshal(body, &out)
	return out
}

// messageOf is the backend's `message` (or `error`) text, if any.
func messageOf(body []byte) string {
	return firstString(body, []interface{}{"message"}, []interface{}{"error"})
}

// firstString returns the first of paths holding a non-empty string.
func firstString(body []byte, paths ...[]interface{}) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return ""
	}
	for _, path := range paths {
		node, err := sonic.Get(body, path...)
		if err != nil || node.TypeSafe() != ast.V_STRING {
			continue
		}
		if s, err := node.String(); err == nil && s != "" {
			return s
		}
	}
	return ""
}

// decodeMap reads a JSON object as a generic map; anything else is an empty map.
func decodeMap(body []byte) map[string]interface{} {
	out := make(map[string]interface{})
	if err := sonic.Unmarshal(bytes.TrimSpace(body), &out); err != nil || out == nil {
		return make(map[string]interface{})
	}
	return out
}
