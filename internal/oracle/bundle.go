package oracle

import (
	"os"

	"gopkg.in/yaml.v2"

	"github.com/ocx/roguevm/internal/gstate"
)

// content is the on-disk YAML shape of a full oracle bundle. It is
// deliberately a single file for the reference implementation — a
// production deployment can split these into separate
// map/items/actions/actors content files; this loader only needs a
// stable Go representation downstream of whatever format produced it.
type content struct {
	Width   int32                        `yaml:"width"`
	Height  int32                        `yaml:"height"`
	Tiles   map[string]TileDef           `yaml:"tiles"` // key: "x,y"
	Items   map[string]ItemDef           `yaml:"items"`
	Actions map[string]ActionProfile     `yaml:"actions"`
	Actors  map[string]ActorTemplate     `yaml:"actors"`
	Tables  map[string]map[string]float64 `yaml:"tables"`
	Config  map[string]float64           `yaml:"config"`
}

// Bundle is the concrete, read-only aggregate implementing every oracle
// interface over a single loaded content file.
type Bundle struct {
	c content
}

// Load parses a YAML oracle bundle from path.
func Load(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var c content
	if err := yaml.NewDecoder(f).Decode(&c); err != nil {
		return nil, err
	}
	return &Bundle{c: c}, nil
}

// NewEmpty returns a Bundle with no content, suitable for tests that
// construct their own oracle data programmatically via the With* helpers.
func NewEmpty() *Bundle {
	return &Bundle{c: content{
		Tiles:   map[string]TileDef{},
		Items:   map[string]ItemDef{},
		Actions: map[string]ActionProfile{},
		Actors:  map[string]ActorTemplate{},
		Tables:  map[string]map[string]float64{},
		Config:  map[string]float64{},
	}}
}

// WithBounds sets the map dimensions (test/programmatic construction helper).
func (b *Bundle) WithBounds(width, height int32) *Bundle {
	b.c.Width, b.c.Height = width, height
	return b
}

// WithTile marks a single tile passable/impassable.
func (b *Bundle) WithTile(p gstate.Position, def TileDef) *Bundle {
	b.c.Tiles[tileKey(p)] = def
	return b
}

// WithAction registers an action profile.
func (b *Bundle) WithAction(profile ActionProfile) *Bundle {
	b.c.Actions[string(profile.Kind)] = profile
	return b
}

// WithActor registers an actor template.
func (b *Bundle) WithActor(name string, t ActorTemplate) *Bundle {
	b.c.Actors[name] = t
	return b
}

// WithItem registers an item definition.
func (b *Bundle) WithItem(i ItemDef) *Bundle {
	b.c.Items[i.ID] = i
	return b
}

// WithTable registers a named numeric table.
func (b *Bundle) WithTable(name string, table map[string]float64) *Bundle {
	b.c.Tables[name] = table
	return b
}

// WithConfig sets a single config tunable.
func (b *Bundle) WithConfig(key string, value float64) *Bundle {
	b.c.Config[key] = value
	return b
}

func tileKey(p gstate.Position) string {
	return itoa(p.X) + "," + itoa(p.Y)
}

func itoa(v int32) string {
	neg := v < 0
	if neg {
		v = -v
	}
	if v == 0 {
		if neg {
			return "-0"
		}
		return "0"
	}
	var buf [12]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// InBounds implements MapOracle.
func (b *Bundle) InBounds(p gstate.Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < b.c.Width && p.Y < b.c.Height
}

// IsPassable implements MapOracle. Unknown tiles within bounds default to
// passable floor; only tiles explicitly marked impassable block movement.
func (b *Bundle) IsPassable(p gstate.Position) bool {
	if !b.InBounds(p) {
		return false
	}
	def, ok := b.c.Tiles[tileKey(p)]
	if !ok {
		return true
	}
	return def.Passable
}

func (b *Bundle) Width() int32  { return b.c.Width }
func (b *Bundle) Height() int32 { return b.c.Height }

// Item implements ItemOracle.
func (b *Bundle) Item(id string) (ItemDef, error) {
	d, ok := b.c.Items[id]
	if !ok {
		return ItemDef{}, notAvailable("item", id)
	}
	return d, nil
}

// Profile implements ActionsOracle.
func (b *Bundle) Profile(kind gstate.ActionKind) (ActionProfile, error) {
	p, ok := b.c.Actions[string(kind)]
	if !ok {
		return ActionProfile{}, notAvailable("action", string(kind))
	}
	return p, nil
}

// Template implements ActorOracle.
func (b *Bundle) Template(name string) (ActorTemplate, error) {
	t, ok := b.c.Actors[name]
	if !ok {
		return ActorTemplate{}, notAvailable("actor template", name)
	}
	return t, nil
}

// Table implements TablesOracle.
func (b *Bundle) Table(name string) (map[string]float64, error) {
	t, ok := b.c.Tables[name]
	if !ok {
		return nil, notAvailable("table", name)
	}
	return t, nil
}

// Int implements ConfigOracle for integer-valued tunables.
func (b *Bundle) Int(key string) (int64, error) {
	v, ok := b.c.Config[key]
	if !ok {
		return 0, notAvailable("config", key)
	}
	return int64(v), nil
}

// Float implements ConfigOracle for float-valued tunables.
func (b *Bundle) Float(key string) (float64, error) {
	v, ok := b.c.Config[key]
	if !ok {
		return 0, notAvailable("config", key)
	}
	return v, nil
}

// Env is the read-only view of the bundle threaded through every
// pre_validate/apply/post_validate call. It satisfies every oracle
// interface by embedding the Bundle.
type Env struct {
	*Bundle
	OracleRoot gstate.Root
}

// AsEnv builds the Env the pipeline threads through the engine, stamping
// it with the bundle's committed oracle_root.
func (b *Bundle) AsEnv() Env {
	return Env{Bundle: b, OracleRoot: Root(b)}
}
