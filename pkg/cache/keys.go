package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	json "github.com/goccy/go-json"
)

// schemaVersion is part of every hashed key. Bump it when the payload or
// artifact encoding changes so old entries are never decoded.
const schemaVersion = "v1"

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey keys a raw HTTP response body.
	HTTPKey(namespace, key string) string
	// PayloadKey keys a decoded provider payload.
	PayloadKey(kind string, item int, opts PayloadKeyOpts) string
	// ArtifactKey keys a rendered view.
	ArtifactKey(payloadHash string, opts ArtifactKeyOpts) string
}

// PayloadKeyOpts are the inputs that change a provider payload.
type PayloadKeyOpts struct {
	Dataset string `json:"dataset"`
	X       string `json:"x"`
	Y       string `json:"y"`
	Cluster bool   `json:"cluster"`
}

// ArtifactKeyOpts are the inputs that change a rendered view.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Abstract bool    `json:"abstract"`
	Unfolded []int   `json:"unfolded,omitempty"`
	Zoom     float64 `json:"zoom,omitempty"`
	PanX     float64 `json:"pan_x,omitempty"`
	Palette  string  `json:"palette,omitempty"`
	Title    string  `json:"title,omitempty"`
	Endpoint string  `json:"endpoint,omitempty"`
}

// DefaultKeyer lays keys out as "http:<ns>:<key>",
// "payload:<kind>:<item>:v1:<hash>" and "artifact:v1:<hash>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

func (DefaultKeyer) PayloadKey(kind string, item int, opts PayloadKeyOpts) string {
	return hashKey(fmt.Sprintf("payload:%s:%d", kind, item), opts)
}

func (DefaultKeyer) ArtifactKey(payloadHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", payloadHash, opts)
}

// ScopedKeyer prefixes every key of an inner keyer.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer prefixes the keys of inner, or of the default keyer when
// inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// DatasetKeyer scopes keys to one dataset, so that responses of different
// datasets behind the same provider URL never collide.
func DatasetKeyer(inner Keyer, dataset string) Keyer {
	return NewScopedKeyer(inner, "dataset:"+dataset+":")
}

func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

func (k *ScopedKeyer) PayloadKey(kind string, item int, opts PayloadKeyOpts) string {
	return k.prefix + k.inner.PayloadKey(kind, item, opts)
}

func (k *ScopedKeyer) ArtifactKey(payloadHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(payloadHash, opts)
}

// hashKey returns prefix:version:sha256(parts). The option structs always
// marshal, so a marshal error cannot occur for the keys built here.
func hashKey(prefix string, parts ...any) string {
	data, err := json.Marshal(parts)
	if err != nil {
		data = fmt.Appendf(nil, "%#v", parts)
	}
	return prefix + ":" + schemaVersion + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

var (
	_ Keyer = DefaultKeyer{}
	_ Keyer = (*ScopedKeyer)(nil)
)
