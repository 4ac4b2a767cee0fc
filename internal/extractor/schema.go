package extractor

// Visibility renderings shared by every language extractor.
const (
	VisibilityPublic  = "pub"
	VisibilityPrivate = "private"
)

// ItemKind tags an outline entry with the category it was reported under.
type ItemKind string

const (
	KindModule   ItemKind = "module"
	KindFunction ItemKind = "function"
	KindStruct   ItemKind = "struct"
	KindEnum     ItemKind = "enum"
	KindImpl     ItemKind = "impl"
)

// Declarations is the structural record of one source file: its top-level
// items grouped by category, each list in source order.
type Declarations struct {
	Path      string         `json:"path"`
	Language  string         `json:"language"`
	Modules   []Module       `json:"modules"`
	Functions []Function     `json:"functions"`
	Structs   []Struct       `json:"structs"`
	Enums     []Enum         `json:"enums"`
	Impls     []Impl         `json:"impls"`
	Outline   []OutlineEntry `json:"outline"` // all reported items, in source order
}

// Module is a module declaration; ItemCount is zero for `mod name;`.
type Module struct {
	Name       string `json:"name"`
	Visibility string `json:"visibility"`
	ItemCount  int    `json:"item_count"`
}

// Function describes a free function or a method.
type Function struct {
	Name       string   `json:"name"`
	Visibility string   `json:"visibility"`
	Async      bool     `json:"async"`
	Params     []string `json:"params"`                // rendered "name: type"
	ReturnType string   `json:"return_type,omitempty"` // empty when absent
	Doc        string   `json:"doc,omitempty"`
}

// Field is a struct field. Tuple fields are named field_0, field_1, ...
type Field struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Visibility string `json:"visibility"`
}

type Struct struct {
	Name       string  `json:"name"`
	Visibility string  `json:"visibility"`
	Fields     []Field `json:"fields"`
	Doc        string  `json:"doc,omitempty"`
}

type Enum struct {
	Name       string   `json:"name"`
	Visibility string   `json:"visibility"`
	Variants   []string `json:"variants"`
	Doc        string   `json:"doc,omitempty"`
}

// Impl is an implementation block. Trait is empty for inherent impls.
type Impl struct {
	Target  string     `json:"target"`
	Trait   string     `json:"trait,omitempty"`
	Methods []Function `json:"methods"`
}

// OutlineEntry points at Index within the category list named by Kind.
type OutlineEntry struct {
	Kind  ItemKind `json:"kind"`
	Index int      `json:"index"`
	Line  int      `json:"line"`
}

// IsEmpty reports whether no item of any category was found.
func (d *Declarations) IsEmpty() bool {
	return len(d.Modules) == 0 && len(d.Functions) == 0 && len(d.Structs) == 0 &&
		len(d.Enums) == 0 && len(d.Impls) == 0
}

func (d *Declarations) addModule(m Module, line int) {
	d.Outline = append(d.Outline, OutlineEntry{Kind: KindModule, Index: len(d.Modules), Line: line})
	d.Modules = append(d.Modules, m)
}

func (d *Declarations) addFunction(f Function, line int) {
	d.Outline = append(d.Outline, OutlineEntry{Kind: KindFunction, Index: len(d.Functions), Line: line})
	d.Functions = append(d.Functions, f)
}

func (d *Declarations) addStruct(s Struct, line int) {
	d.Outline = append(d.Outline, OutlineEntry{Kind: KindStruct, Index: len(d.Structs), Line: line})
	d.Structs = append(d.Structs, s)
}

func (d *Declarations) addEnum(e Enum, line int) {
	d.Outline = append(d.Outline, OutlineEntry{Kind: KindEnum, Index: len(d.Enums), Line: line})
	d.Enums = append(d.Enums, e)
}

func (d *Declarations) addImpl(i Impl, line int) {
	d.Outline = append(d.Outline, OutlineEntry{Kind: KindImpl, Index: len(d.Impls), Line: line})
	d.Impls = append(d.Impls, i)
}
