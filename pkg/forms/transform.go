package forms

import (
	"slices"

	domerr "github.com/opst/footprintweb/pkg/domain/errors"
	"github.com/opst/footprintweb/pkg/utils/maps"
	xslices "github.com/opst/footprintweb/pkg/utils/slices"
)

// Collapse turns a multiple selection into a single one.
//
// Options become the selected ones followed by the unselected ones. The first
// selected option stays selected; without selection, the first unselected one is.
func Collapse(f Field) (Field, error) {
	if f.InputType != InputSelectMultiple {
		return Field{}, domerr.NewConfiguration(
			"", "%s cannot be transformed by %s: it is %s", f.ID, MultipleToSingle, f.InputType,
		)
	}
	options := xslices.Concat(f.Selected, f.Unselected)
	f.InputType = InputSelectObject
	f.Options = options
	f.Unselected = nil
	f.Selected = nil
	f.Value = nil
	if 0 < len(options) {
		f.Selected = []Option{options[0]}
		f.Value = options[0].Value
	}
	return f, nil
}

// SelectLabel makes the option labelled label the value of f.
//
// It reports whether such option is found.
func SelectLabel(f *Field, label string) bool {
	switch f.InputType {
	case InputSelectMultiple:
		i := slices.IndexFunc(f.Unselected, func(o Option) bool { return o.Label == label })
		if i < 0 {
			return slices.ContainsFunc(f.Selected, func(o Option) bool { return o.Label == label })
		}
		f.Selected = append(f.Selected, f.Unselected[i])
		f.Unselected = slices.Delete(slices.Clone(f.Unselected), i, i+1)
		return true
	default:
		i := slices.IndexFunc(f.Options, func(o Option) bool { return o.Label == label })
		if i < 0 {
			return false
		}
		f.Value = f.Options[i].Value
		f.Selected = []Option{f.Options[i]}
		return true
	}
}

// postProcess applies transforms of tc, then default labels on creation.
func (b *Builder) postProcess(st *Structure, tc TypeConfig, edit bool) error {
	transforms := maps.NewOrdered[string, string]()
	for _, attr := range sorted(tc.Transforms) {
		transforms.Set(attr, tc.Transforms[attr])
	}

	for i := range st.Sections {
		fields := st.Sections[i].Fields
		for j := range fields {
			name, ok := transforms.Get(fields[j].Attribute)
			if !ok {
				continue
			}
			switch name {
			case MultipleToSingle:
				f, err := Collapse(fields[j])
				if err != nil {
					return err
				}
				fields[j] = f
			default:
				return domerr.NewConfiguration(st.Sections[i].Class, "unknown transform %q", name)
			}
		}
	}

	if edit {
		return nil
	}
	for _, attr := range sorted(tc.DefaultLabels) {
		label := tc.DefaultLabels[attr]
		for i := range st.Sections {
			for j := range st.Sections[i].Fields {
				f := &st.Sections[i].Fields[j]
				if f.Attribute != attr {
					continue
				}
				if !SelectLabel(f, label) {
					b.logger.Warnf("%s has no option labelled %q", f.ID, label)
				}
			}
		}
	}
	return nil
}

func sorted[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
