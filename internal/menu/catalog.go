// Package menu holds the static menu tree shown to registered users.
// A Catalog is immutable after loading and safe for concurrent use.
package menu

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"

	"zhukbot/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ErrUnknownNode is a configuration error: a node id that the catalog does not define
var ErrUnknownNode = errors.New("unknown menu node")

// LayoutKind selects how a node's children are rendered
type LayoutKind string

const (
	LayoutReply  LayoutKind = "reply"
	LayoutInline LayoutKind = "inline"
)

// ActionKind identifies the content a leaf delivers
type ActionKind string

const (
	ActionText    ActionKind = "text"
	ActionFact    ActionKind = "fact"
	ActionWeather ActionKind = "weather"
	ActionEvents  ActionKind = "events"
	ActionDetail  ActionKind = "detail"
)

// Entry is one child of a node: either a submenu or a leaf action
type Entry struct {
	Label   string        `yaml:"label"`
	Child   domain.NodeID `yaml:"node"`
	Action  ActionKind    `yaml:"action"`
	Payload string        `yaml:"payload"`
	Text    string        `yaml:"text"`
}

// IsSubmenu reports whether selecting the entry opens another node
func (e Entry) IsSubmenu() bool {
	return e.Child != ""
}

// Node is a menu screen
type Node struct {
	ID         domain.NodeID `yaml:"id"`
	Prompt     string        `yaml:"prompt"`
	Layout     LayoutKind    `yaml:"layout"`
	Columns    int           `yaml:"columns"`
	InlineBack bool          `yaml:"inline_back"`
	Children   []Entry       `yaml:"children"`

	// Parent is empty for the root
	Parent domain.NodeID `yaml:"-"`
}

// BackButton is the label and inline payload used to go up one level
type BackButton struct {
	Label   string `yaml:"label"`
	Payload string `yaml:"payload"`
}

type document struct {
	Root  domain.NodeID `yaml:"root"`
	Back  BackButton    `yaml:"back"`
	Nodes []Node        `yaml:"nodes"`
}

// Catalog is the validated menu tree
type Catalog struct {
	root   domain.NodeID
	back   BackButton
	nodes  map[domain.NodeID]*Node
	leaves map[string]Entry
}

// Default loads the embedded catalog
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes and validates a YAML catalog
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode menu catalog: %w", err)
	}

	c := &Catalog{
		root:   doc.Root,
		back:   doc.Back,
		nodes:  make(map[domain.NodeID]*Node, len(doc.Nodes)),
		leaves: make(map[string]Entry),
	}
	for i := range doc.Nodes {
		node := &doc.Nodes[i]
		if node.ID == "" {
			return nil, fmt.Errorf("node %d has no id", i)
		}
		if _, dup := c.nodes[node.ID]; dup {
			return nil, fmt.Errorf("duplicate node %q", node.ID)
		}
		if node.Columns <= 0 {
			node.Columns = 1
		}
		c.nodes[node.ID] = node
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validate() error {
	if c.back.Label == "" || c.back.Payload == "" {
		return errors.New("back button label and payload are required")
	}
	if _, ok := c.nodes[c.root]; !ok {
		return fmt.Errorf("root %q: %w", c.root, ErrUnknownNode)
	}

	for _, node := range c.nodes {
		if node.Layout != LayoutReply && node.Layout != LayoutInline {
			return fmt.Errorf("node %q: unsupported layout %q", node.ID, node.Layout)
		}
		labels := make(map[string]bool, len(node.Children))
		for _, entry := range node.Children {
			if entry.Label == "" || entry.Label == c.back.Label {
				return fmt.Errorf("node %q: invalid label %q", node.ID, entry.Label)
			}
			if labels[entry.Label] {
				return fmt.Errorf("node %q: duplicate label %q", node.ID, entry.Label)
			}
			labels[entry.Label] = true

			if err := c.validateEntry(node, entry); err != nil {
				return err
			}
		}
	}

	// every node must hang off the root exactly once
	seen := map[domain.NodeID]bool{c.root: true}
	queue := []domain.NodeID{c.root}
	for len(queue) > 0 {
		node := c.nodes[queue[0]]
		queue = queue[1:]
		for _, entry := range node.Children {
			if !entry.IsSubmenu() {
				continue
			}
			if seen[entry.Child] {
				return fmt.Errorf("node %q is reachable twice", entry.Child)
			}
			seen[entry.Child] = true
			c.nodes[entry.Child].Parent = node.ID
			queue = append(queue, entry.Child)
		}
	}
	if len(seen) != len(c.nodes) {
		return errors.New("catalog has nodes unreachable from the root")
	}
	return nil
}

func (c *Catalog) validateEntry(node *Node, entry Entry) error {
	if entry.IsSubmenu() {
		if entry.Action != "" {
			return fmt.Errorf("node %q: entry %q is both a submenu and an action", node.ID, entry.Label)
		}
		if _, ok := c.nodes[entry.Child]; !ok {
			return fmt.Errorf("node %q: entry %q -> %q: %w", node.ID, entry.Label, entry.Child, ErrUnknownNode)
		}
		if node.Layout == LayoutInline {
			return fmt.Errorf("node %q: inline menus cannot open submenus", node.ID)
		}
		return nil
	}

	switch entry.Action {
	case ActionText:
		if entry.Text == "" {
			return fmt.Errorf("node %q: text action %q has no text", node.ID, entry.Label)
		}
	case ActionFact, ActionWeather, ActionEvents:
	case ActionDetail:
		if entry.Payload == "" {
			return fmt.Errorf("node %q: detail action %q has no payload", node.ID, entry.Label)
		}
	default:
		return fmt.Errorf("node %q: entry %q has unknown action %q", node.ID, entry.Label, entry.Action)
	}

	if node.Layout == LayoutInline {
		if entry.Payload == "" || entry.Payload == c.back.Payload {
			return fmt.Errorf("node %q: inline entry %q needs a distinct payload", node.ID, entry.Label)
		}
		if _, dup := c.leaves[entry.Payload]; dup {
			return fmt.Errorf("duplicate inline payload %q", entry.Payload)
		}
		c.leaves[entry.Payload] = entry
	}
	return nil
}

// Root returns the top-level node
func (c *Catalog) Root() *Node {
	return c.nodes[c.root]
}

// Back returns the back button settings
func (c *Catalog) Back() BackButton {
	return c.back
}

// Node looks up a node by id
func (c *Catalog) Node(id domain.NodeID) (*Node, error) {
	node, ok := c.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	return node, nil
}

// ParentOf returns the parent of id, or nil for the root
func (c *Catalog) ParentOf(id domain.NodeID) (*Node, error) {
	node, err := c.Node(id)
	if err != nil {
		return nil, err
	}
	if node.Parent == "" {
		return nil, nil
	}
	return c.Node(node.Parent)
}

// ChildrenOf returns the ordered entries of id
func (c *Catalog) ChildrenOf(id domain.NodeID) ([]Entry, error) {
	node, err := c.Node(id)
	if err != nil {
		return nil, err
	}
	return node.Children, nil
}

// Match finds the child of id with exactly the given label.
// Labels of other nodes never match.
func (c *Catalog) Match(id domain.NodeID, label string) (Entry, bool, error) {
	children, err := c.ChildrenOf(id)
	if err != nil {
		return Entry{}, false, err
	}
	for _, entry := range children {
		if entry.Label == label {
			return entry, true, nil
		}
	}
	return Entry{}, false, nil
}

// Leaf finds an inline leaf by its button payload
func (c *Catalog) Leaf(payload string) (Entry, bool) {
	entry, ok := c.leaves[payload]
	return entry, ok
}
