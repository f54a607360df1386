package hir

import (
	"substrace/internal/source"
)

// ItemKind enumerates item kinds the lints distinguish.
type ItemKind uint8

const (
	// ItemFn is a free function or an associated function inside an impl block.
	ItemFn ItemKind = iota
	// ItemTypeAlias is `type Name<...> = Target;`.
	ItemTypeAlias
	// ItemImpl is an impl block; its associated items are children.
	ItemImpl
	// ItemMod is an inline module.
	ItemMod
	ItemStruct
	ItemEnum
	ItemConst
	ItemUse
	// ItemOther covers everything the lints never inspect.
	ItemOther
)

// String returns a human-readable name for the item kind.
func (k ItemKind) String() string {
	switch k {
	case ItemFn:
		return "fn"
	case ItemTypeAlias:
		return "type"
	case ItemImpl:
		return "impl"
	case ItemMod:
		return "mod"
	case ItemStruct:
		return "struct"
	case ItemEnum:
		return "enum"
	case ItemConst:
		return "const"
	case ItemUse:
		return "use"
	case ItemOther:
		return "other"
	}
	return "unknown"
}

// Item is a declaration with its attributes and sugared doc comments.
type Item struct {
	Kind ItemKind
	Name string
	// Span covers the item from its signature to its end; outer attributes
	// and doc comments precede it.
	Span  source.Span
	Attrs []Attr
	Docs  []DocComment // in source order
	Data  ItemData     // Kind-specific payload, nil for kinds without one
}

// ItemData is the interface for item-specific data.
type ItemData interface {
	itemData()
}

// FnData holds data for ItemFn.
type FnData struct {
	Func *Func
}

func (FnData) itemData() {}

// TypeAliasData holds data for ItemTypeAlias.
type TypeAliasData struct {
	Target TypeRef
}

func (TypeAliasData) itemData() {}

// ImplData holds data for ItemImpl.
type ImplData struct {
	SelfTy TypeRef
	Trait  *TypeRef // nil for inherent impls
	Items  []*Item
}

func (ImplData) itemData() {}

// ModData holds data for ItemMod.
type ModData struct {
	Items []*Item
}

func (ModData) itemData() {}

// Func is a function with an optional body.
type Func struct {
	Name   string
	Sig    source.Span // `pub fn name(...) -> R`, without attributes and body
	Body   *Expr       // nil for bodiless trait declarations
	Method bool        // associated function of an impl block
}

// Func returns the function of an ItemFn.
func (it *Item) Func() (*Func, bool) {
	if it == nil || it.Kind != ItemFn {
		return nil, false
	}
	d, ok := it.Data.(FnData)
	if !ok || d.Func == nil {
		return nil, false
	}
	return d.Func, true
}

// Children returns nested items of impl blocks and modules.
func (it *Item) Children() []*Item {
	switch d := it.Data.(type) {
	case ImplData:
		return d.Items
	case ModData:
		return d.Items
	}
	return nil
}

// TypeRef is a resolved type expression.
type TypeRef struct {
	Segments []string // as written, e.g. ["StorageMap"]
	Res      DefID    // resolved declaration, NoDefID for primitives and inference holes
	Args     []TypeRef
	Infer    bool // `_`
	Span     source.Span
}
