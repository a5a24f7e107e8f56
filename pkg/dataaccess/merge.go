package dataaccess

import (
	"go.mongodb.org/mongo-driver/bson"
)

// MergeDocs overlays a stored document on top of a set of defaults.
// Stored scalar values win over the defaults, nested documents are
// merged recursively, and keys that only exist in the defaults are
// kept. Keys that only exist in the stored document are appended in
// their stored order.
func MergeDocs(defaults, stored bson.D) bson.D {
	out := make(bson.D, 0, len(defaults)+len(stored))
	seen := make(map[string]struct{}, len(stored))

	for _, def := range defaults {
		sv, ok := lookup(stored, def.Key)
		if !ok {
			out = append(out, def)
			continue
		}
		seen[def.Key] = struct{}{}

		defDoc, defIsDoc := asDoc(def.Value)
		storedDoc, storedIsDoc := asDoc(sv)
		if defIsDoc && storedIsDoc {
			out = append(out, bson.E{Key: def.Key, Value: MergeDocs(defDoc, storedDoc)})
			continue
		}

		out = append(out, bson.E{Key: def.Key, Value: sv})
	}

	for _, el := range stored {
		if _, ok := seen[el.Key]; ok {
			continue
		}
		if _, ok := lookup(defaults, el.Key); ok {
			continue
		}
		out = append(out, el)
	}

	return out
}

func lookup(doc bson.D, key string) (any, bool) {
	for _, el := range doc {
		if el.Key == key {
			return el.Value, true
		}
	}
	return nil, false
}

// asDoc normalises the two document shapes the driver can hand back.
func asDoc(v any) (bson.D, bool) {
	switch d := v.(type) {
	case bson.D:
		return d, true
	case bson.M:
		out := make(bson.D, 0, len(d))
		for k, val := range d {
			out = append(out, bson.E{Key: k, Value: val})
		}
		return out, true
	default:
		return nil, false
	}
}
