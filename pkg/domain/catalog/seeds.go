package catalog

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/opst/footprintweb/pkg/domain"
	domerr "github.com/opst/footprintweb/pkg/domain/errors"
	xe "github.com/opst/footprintweb/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed seeds.yaml
var builtinSeeds []byte

// Seed is a reference instance of a seeded class.
//
// Seeds become graph members only when something refers them.
type Seed struct {
	ID         string         `yaml:"id"`
	Class      string         `yaml:"class"`
	Name       string         `yaml:"name"`
	Attributes map[string]any `yaml:"attributes"`
}

type seedFile struct {
	Seeds []Seed `yaml:"seeds"`
}

// AddSeeds registers seeds. A seed with a known id replaces the former one.
func (c *Catalog) AddSeeds(seeds ...Seed) error {
	for _, s := range seeds {
		t, err := c.Type(s.Class)
		if err != nil {
			return xe.Wrapf(err, "seed %s", s.ID)
		}
		if !t.Seeded {
			return domerr.NewConfiguration(s.Class, "seed %s for a class which is not seeded", s.ID)
		}
		if s.ID == "" || s.Name == "" {
			return domerr.NewConfiguration(s.Class, "seed without id or name")
		}
		c.seeds.Set(s.ID, s)
	}
	return nil
}

// LoadSeeds reads a seed file (yaml, `seeds: [...]`) and registers its seeds.
func (c *Catalog) LoadSeeds(r io.Reader) error {
	f := seedFile{}
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return xe.Wrap(err)
	}
	return c.AddSeeds(f.Seeds...)
}

// LoadSeedFile is LoadSeeds for a file path.
func (c *Catalog) LoadSeedFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return xe.Wrap(err)
	}
	defer f.Close()
	return xe.Wrapf(c.LoadSeeds(f), "seed file %s", path)
}

// Seeds returns seeds of class or its subclasses.
func (c *Catalog) Seeds(class string) []Seed {
	ret := []Seed{}
	for _, s := range c.seeds.Values() {
		if c.IsA(s.Class, class) {
			ret = append(ret, s)
		}
	}
	return ret
}

// Seed looks up a seed by id.
func (c *Catalog) Seed(id string) (Seed, bool) {
	return c.seeds.Get(id)
}

// Materialize builds the object of a seed.
//
// Attributes missing in the seed get defaults of the class.
func (c *Catalog) Materialize(s Seed) (*domain.Object, error) {
	params, err := c.Params(s.Class)
	if err != nil {
		return nil, err
	}
	obj := domain.Restore(s.Class, s.ID)
	obj.Set("name", domain.Text(s.Name))
	for _, p := range params {
		raw, ok := s.Attributes[p.Name]
		if !ok {
			if p.Default != nil {
				obj.Set(p.Name, cloneDefault(p.Default))
			}
			continue
		}
		v, err := seedValue(p, raw)
		if err != nil {
			return nil, domerr.NewConfiguration(s.Class, "seed %s: %s: %v", s.ID, p.Name, err)
		}
		obj.Set(p.Name, v)
	}
	return obj, nil
}

func seedValue(p domain.Param, raw any) (domain.Value, error) {
	switch p.Kind {
	case domain.KindText:
		return domain.Text(fmt.Sprint(raw)), nil
	case domain.KindChoice, domain.KindConditionalChoice:
		return domain.Choice(fmt.Sprint(raw)), nil
	case domain.KindQuantity, domain.KindDimensionless:
		q := domain.Quantity{Unit: p.Unit, Source: "seed"}
		switch r := raw.(type) {
		case int:
			q.Value = float64(r)
		case float64:
			q.Value = r
		case map[string]any:
			v, ok := r["value"]
			if !ok {
				return nil, fmt.Errorf("no value")
			}
			n, err := seedValue(domain.Param{Kind: p.Kind, Unit: p.Unit}, v)
			if err != nil {
				return nil, err
			}
			q.Value = n.(domain.Quantity).Value
			if u, ok := r["unit"].(string); ok {
				q.Unit = u
			}
		default:
			return nil, fmt.Errorf("not a number: %v", raw)
		}
		return q, nil
	default:
		return nil, fmt.Errorf("%s parameters cannot be seeded", p.Kind)
	}
}
