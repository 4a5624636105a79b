// Package fingerprint defines the content-identity contract used to
// recognize identical nodes added independently on two branches.
//
// The canonical fingerprinting algorithm lives with the comparison
// tooling that produces the two-way diffs; this package only fixes the
// contract and ships a reference implementation used to stamp snapshot
// documents that carry no precomputed fingerprints.
package fingerprint

import (
	"fmt"
	"strconv"

	"github.com/mitchellh/hashstructure/v2"

	"scene-merge/core/scene"
)

// Func assigns a content-derived identity to a node payload.
// Equal payloads must map to equal fingerprints.
type Func func(payload any) (string, error)

// entityPayload is the hashed shape of an entity subtree.
type entityPayload struct {
	Name      string
	KeyValues []scene.KeyValue
	Children  []string
}

// Default is the reference fingerprint implementation, hashing the
// payload structurally with hashstructure.
func Default(payload any) (string, error) {
	h, err := hashstructure.Hash(payload, hashstructure.FormatV2, nil)
	if err != nil {
		return "", fmt.Errorf("failed to hash payload: %w", err)
	}
	return strconv.FormatUint(h, 16), nil
}

// Stamp fills in missing fingerprints across a graph using the given
// function (Default when fn is nil). Primitives hash their content;
// entities hash their name, key values and child fingerprints, so the
// entity fingerprint covers the whole subtree. Nodes that already carry
// a fingerprint are left untouched.
func Stamp(g *scene.Graph, fn Func) error {
	if fn == nil {
		fn = Default
	}

	var stampErr error
	g.EachEntity(func(n *scene.Node) bool {
		children := make([]string, 0, len(n.Children))
		for _, childID := range n.Children {
			child, ok := g.Node(childID)
			if !ok {
				continue
			}
			if child.Fingerprint == "" {
				fp, err := fn(child.Content)
				if err != nil {
					stampErr = fmt.Errorf("failed to fingerprint primitive in entity %q: %w", n.Name, err)
					return false
				}
				child.Fingerprint = fp
			}
			children = append(children, child.Fingerprint)
		}

		if n.Fingerprint == "" {
			fp, err := fn(entityPayload{Name: n.Name, KeyValues: n.KeyValues, Children: children})
			if err != nil {
				stampErr = fmt.Errorf("failed to fingerprint entity %q: %w", n.Name, err)
				return false
			}
			n.Fingerprint = fp
		}
		return true
	})
	return stampErr
}
