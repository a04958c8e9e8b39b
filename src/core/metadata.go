package core

// A Value is an entry in a metadata list: a string, a bool, or a nested
// list. Metadata lists are concatenated across targets during a walk.
type Value struct {
	IsList  bool
	IsBool  bool
	Str     string
	Boolean bool
	List    []Value
}

// StringValue makes a string Value.
func StringValue(s string) Value { return Value{Str: s} }

// BoolValue makes a boolean Value.
func BoolValue(b bool) Value { return Value{IsBool: true, Boolean: b} }

// ListValue makes a list Value.
func ListValue(vs ...Value) Value { return Value{IsList: true, List: vs} }

// Metadata is a free-form key/value attribute map attached to a target.
// Keys hold lists of values; some are data to collect, some name the
// dependencies a walk should continue through (acting as barriers when
// present).
type Metadata struct {
	Contents  map[string]Value
	SourceDir SourceDir
}

// WalkMetadata traverses the dependency graph from the given targets,
// depth-first in declaration order, collecting the values under dataKeys.
// If walkKeys is non-empty, only dependencies named by those keys are
// followed (an empty string entry means "all deps of this target"), and a
// target that carries none of the walk keys has all its deps walked;
// otherwise every dependency is walked. Each target is visited at most
// once. The returned walked list preserves first-visit order.
func WalkMetadata(targets []*Target, dataKeys, walkKeys []string, rebase bool) ([]Value, []*Target, error) {
	seen := make(map[*Target]bool)
	var walked []*Target
	var result []Value
	var walk func(t *Target) error
	walk = func(t *Target) error {
		if seen[t] {
			return nil
		}
		seen[t] = true
		walked = append(walked, t)
		next, values, err := t.collectMetadata(dataKeys, walkKeys, rebase)
		if err != nil {
			return err
		}
		result = append(result, values...)
		for _, key := range next {
			if key == "" {
				for _, dep := range t.AllDeps() {
					if err := walk(dep.Target); err != nil {
						return err
					}
				}
				continue
			}
			label, err := TryParseLabel(key)
			if err != nil {
				return newUserError("invalid metadata walk key %q in %s: %s", key, t.Label, err)
			}
			dep := t.findDep(label)
			if dep == nil {
				return newUserError("metadata walk in %s names %s, which is not one of its dependencies", t.Label, label)
			}
			if err := walk(dep); err != nil {
				return err
			}
		}
		return nil
	}
	for _, t := range targets {
		if err := walk(t); err != nil {
			return nil, nil, err
		}
	}
	return result, walked, nil
}

// collectMetadata gathers this target's contributions to a walk: the keys
// to follow next and the data values found here.
func (t *Target) collectMetadata(dataKeys, walkKeys []string, rebase bool) ([]string, []Value, error) {
	var next []string
	if len(walkKeys) == 0 {
		next = []string{""}
	} else {
		found := false
		for _, key := range walkKeys {
			value, present := t.Metadata.Contents[key]
			if !present {
				continue
			}
			// A present walk key is a barrier: only the deps it names are
			// followed, even if it names none.
			found = true
			for _, v := range value.List {
				next = append(next, v.Str)
			}
		}
		if !found {
			next = []string{""}
		}
	}
	var values []Value
	for _, key := range dataKeys {
		value, present := t.Metadata.Contents[key]
		if !present {
			continue
		}
		for _, v := range value.List {
			if rebase && !v.IsList && !v.IsBool {
				v.Str = string(t.Metadata.SourceDir) + v.Str
			}
			values = append(values, v)
		}
	}
	return next, values, nil
}

// findDep returns the dependency of t with the given label, or nil.
func (t *Target) findDep(label Label) *Target {
	for _, dep := range t.AllDeps() {
		if dep.Label.NoToolchain() == label.NoToolchain() {
			return dep.Target
		}
	}
	return nil
}
