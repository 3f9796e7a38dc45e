package datastore

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Normalize replaces every ObjectID in doc, at any depth, with its hex string.
// Nothing else is changed and applying it twice yields the same document.
func Normalize(doc map[string]any) ResultDocument {
	if doc == nil {
		return nil
	}
	out := make(ResultDocument, len(doc))
	for k, v := range doc {
		out[k] = normalizeValue(v)
	}
	return out
}

// NormalizeAll normalizes a result set, keeping its order.
func NormalizeAll(docs []bson.M) []ResultDocument {
	out := make([]ResultDocument, 0, len(docs))
	for _, d := range docs {
		out = append(out, Normalize(d))
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case *primitive.ObjectID:
		if t == nil {
			return nil
		}
		return t.Hex()
	case bson.M:
		out := make(bson.M, len(t))
		for k, x := range t {
			out[k] = normalizeValue(x)
		}
		return out
	case map[string]any:
		return Normalize(t)
	case bson.D:
		out := make(bson.D, len(t))
		for i, e := range t {
			out[i] = bson.E{Key: e.Key, Value: normalizeValue(e.Value)}
		}
		return out
	case bson.A:
		out := make(bson.A, len(t))
		for i, x := range t {
			out[i] = normalizeValue(x)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = normalizeValue(x)
		}
		return out
	case []bson.M:
		out := make([]bson.M, len(t))
		for i, x := range t {
			out[i] = normalizeValue(x).(bson.M)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, x := range t {
			out[i] = Normalize(x)
		}
		return out
	default:
		return v
	}
}

// idString renders an inserted or upserted id for the response.
func idString(id any) string {
	switch t := normalizeValue(id).(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
