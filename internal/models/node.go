package models

import "github.com/samber/lo"

// Element tags of the CLISH schema vocabulary
const (
	TagView       = "VIEW"
	TagNamespace  = "NAMESPACE"
	TagCommand    = "COMMAND"
	TagParam      = "PARAM"
	TagSwitch     = "SWITCH"
	TagSubcommand = "SUBCOMMAND"
	TagPtype      = "PTYPE"
)

// Attribute names read by the scanner
const (
	AttrName    = "name"
	AttrPtype   = "ptype"
	AttrPattern = "pattern"
)

// SearchOrder is the fixed priority in which child elements are visited
// while searching a command tree.
var SearchOrder = []string{
	TagView,
	TagNamespace,
	TagCommand,
	TagParam,
	TagSwitch,
	TagSubcommand,
}

// IsSearchable reports whether tag is one of the element kinds the command
// tree search looks at.
func IsSearchable(tag string) bool {
	return lo.Contains(SearchOrder, tag)
}

// Node is a single element of a parsed XML document
type Node struct {
	Tag      string            // Local element name (namespace dropped)
	Attrs    map[string]string // Attribute local name -> value
	Children []*Node           // Child elements in document order
}

// Attr returns the value of the named attribute and whether it was present.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil || n.Attrs == nil {
		return "", false
	}
	v, ok := n.Attrs[name]
	return v, ok
}

// ChildrenByTag returns the immediate children with the given tag, in document order.
func (n *Node) ChildrenByTag(tag string) []*Node {
	if n == nil {
		return nil
	}
	return lo.Filter(n.Children, func(child *Node, _ int) bool {
		return child.Tag == tag
	})
}
