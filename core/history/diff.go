package history

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
)

// ignored when comparing snapshots
var volatileFields = map[string]bool{"updated_at": true}

// Compare returns the field changes between two JSON snapshots, sorted by field name.
// An empty `from` snapshot compares against an empty object.
func Compare(from, to json.RawMessage) ([]Change, error) {
	old, err := decodeSnapshot(from)
	if err != nil {
		return nil, errors.Wrap(err, "decoding old snapshot")
	}
	cur, err := decodeSnapshot(to)
	if err != nil {
		return nil, errors.Wrap(err, "decoding new snapshot")
	}

	fields := make([]string, 0, len(cur))
	for fld := range cur {
		fields = append(fields, fld)
	}
	for fld := range old {
		if _, ok := cur[fld]; !ok {
			fields = append(fields, fld)
		}
	}
	sort.Strings(fields)

	changes := make([]Change, 0)
	for _, fld := range fields {
		if volatileFields[fld] {
			continue
		}
		ov, nv := old[fld], cur[fld]
		if reflect.DeepEqual(ov, nv) {
			continue
		}
		chg := Change{Field: fld, Old: ov, New: nv}
		os, oOk := ov.(string)
		ns, nOk := nv.(string)
		if (oOk || ov == nil) && (nOk || nv == nil) && (strings.Contains(os, "\n") || strings.Contains(ns, "\n")) {
			chg.Diff = TextDiff(fld, os, ns)
		}
		changes = append(changes, chg)
	}
	return changes, nil
}

// TextDiff returns the unified diff of two texts.
func TextDiff(name, a, b string) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: name + " (old)",
		ToFile:   name + " (new)",
		Context:  2,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return text
}

func decodeSnapshot(raw json.RawMessage) (map[string]interface{}, error) {
	m := make(map[string]interface{})
	if len(raw) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
