package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
)

// Keyer derives cache keys.
type Keyer interface {
	// ResultKey identifies the linearizations of a hierarchy.
	ResultKey(graphHash string, opts ResultKeyOpts) string
}

// ResultKeyOpts are the parameters that change a result set.
type ResultKeyOpts struct {
	// Classes limits the run to these classes; empty means all.
	Classes []string `json:"classes,omitempty"`
	// DepthFirst is set when the naive order is stored alongside C3.
	DepthFirst bool `json:"depth_first,omitempty"`
}

// DefaultKeyer generates unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ResultKey returns "result:<hash>" where the hash covers the graph hash
// and the options. Class order does not matter.
func (DefaultKeyer) ResultKey(graphHash string, opts ResultKeyOpts) string {
	classes := slices.Clone(opts.Classes)
	slices.Sort(classes)
	opts.Classes = slices.Compact(classes)
	return hashKey("result", graphHash, opts)
}

// hashKey generates a cache key of the form prefix:sha256(parts).
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes the hex SHA-256 of data.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
