package security

import (
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// KeyFile names a PEM encoded RSA private key (PKCS#1 or PKCS#8) and the kid it is published under.
type KeyFile struct {
	Kid  string
	Path string
}

// KeyManager signs with one key and verifies against every loaded key, so a key can be
// published ahead of a rotation and tokens it signs later still verify on older replicas.
type KeyManager struct {
	kid    string
	signer *rsa.PrivateKey
	pubs   map[string]*rsa.PublicKey
	order  []string
}

// LoadKeys reads the signing key and any keys that are only published for verification.
func LoadKeys(signing KeyFile, published ...KeyFile) (*KeyManager, error) {
	km := &KeyManager{pubs: make(map[string]*rsa.PublicKey)}
	for i, kf := range append([]KeyFile{signing}, published...) {
		if kf.Kid == "" {
			return nil, fmt.Errorf("key %s: empty kid", kf.Path)
		}
		if _, dup := km.pubs[kf.Kid]; dup {
			return nil, fmt.Errorf("key %s: kid %q loaded twice", kf.Path, kf.Kid)
		}
		priv, err := readKey(kf.Path)
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", kf.Path, err)
		}
		if i == 0 {
			km.kid, km.signer = kf.Kid, priv
		}
		km.pubs[kf.Kid] = &priv.PublicKey
		km.order = append(km.order, kf.Kid)
	}
	return km, nil
}

func readKey(path string) (*rsa.PrivateKey, error) {
	if path == "" {
		return nil, errors.New("no path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return jwt.ParseRSAPrivateKeyFromPEM(b)
}

func (km *KeyManager) SigningKid() string { return km.kid }

func (km *KeyManager) sign(t *jwt.Token) (string, error) {
	t.Header["kid"] = km.kid
	return t.SignedString(km.signer)
}

func (km *KeyManager) PublicKey(kid string) (*rsa.PublicKey, bool) {
	pk, ok := km.pubs[kid]
	return pk, ok
}

// JWK is the RSA subset of RFC 7517 served at /.well-known/jwks.json.
type JWK struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWKS lists the signing key first, then the published ones in load order.
func (km *KeyManager) JWKS() JWKS {
	set := JWKS{Keys: make([]JWK, 0, len(km.order))}
	for _, kid := range km.order {
		pk := km.pubs[kid]
		set.Keys = append(set.Keys, JWK{
			Kty: "RSA",
			Kid: kid,
			Use: "sig",
			Alg: jwt.SigningMethodRS256.Alg(),
			N:   base64.RawURLEncoding.EncodeToString(pk.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pk.E)).Bytes()),
		})
	}
	return set
}
