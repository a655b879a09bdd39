package securitypolicy

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duchuan123/opc-ua-client/ua"
)

// selfSignedCert builds a throwaway RSA certificate for AsymmetricEncrypt
// tests; real OPC UA servers present their own, but the math is identical.
func selfSignedCert(t *testing.T) (*x509.Certificate, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "opc-ua-client test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return cert, key
}

func TestByURI(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		wantErr    bool
		wantKeyLen int
	}{
		{"empty treated as none", "", false, 0},
		{"none", ua.SecurityPolicyURINone, false, 0},
		{"basic128rsa15", ua.SecurityPolicyURIBasic128Rsa15, false, 16},
		{"basic256", ua.SecurityPolicyURIBasic256, false, 32},
		{"basic256sha256", ua.SecurityPolicyURIBasic256Sha256, false, 32},
		{"unsupported", "http://example.com/bogus", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ByURI(tt.uri)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKeyLen, p.SymmetricKeyLength())
		})
	}
}

func TestNonePolicyIsNoOp(t *testing.T) {
	p, err := ByURI(ua.SecurityPolicyURINone)
	require.NoError(t, err)

	keys, err := p.DeriveKeys(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, &SymmetricKeys{}, keys)

	ct, err := p.Encrypt(nil, nil, []byte("plaintext"))
	require.NoError(t, err)
	assert.Equal(t, []byte("plaintext"), ct)

	pt, err := p.Decrypt(nil, nil, []byte("ciphertext"))
	require.NoError(t, err)
	assert.Equal(t, []byte("ciphertext"), pt)
}

func TestBasicPolicyDeriveKeysRequiresNonces(t *testing.T) {
	p, err := ByURI(ua.SecurityPolicyURIBasic256Sha256)
	require.NoError(t, err)

	_, err = p.DeriveKeys(nil, []byte("server-nonce-0123456789abcdef01"))
	assert.Error(t, err)
}

func TestBasicPolicyDeriveKeysIsDeterministicAndAsymmetric(t *testing.T) {
	p, err := ByURI(ua.SecurityPolicyURIBasic256Sha256)
	require.NoError(t, err)

	clientNonce := []byte("client-nonce-0123456789abcdef01")
	serverNonce := []byte("server-nonce-0123456789abcdef01")

	k1, err := p.DeriveKeys(clientNonce, serverNonce)
	require.NoError(t, err)
	k2, err := p.DeriveKeys(clientNonce, serverNonce)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)

	assert.NotEqual(t, k1.ClientSigningKey, k1.ServerSigningKey)
	assert.Len(t, k1.ClientSigningKey, p.SignatureLength())
	assert.Len(t, k1.ClientEncryptingKey, p.SymmetricKeyLength())
	assert.Len(t, k1.ClientInitVector, p.BlockSize())
}

func TestBasicPolicySignVerifyRoundTrip(t *testing.T) {
	p, err := ByURI(ua.SecurityPolicyURIBasic256Sha256)
	require.NoError(t, err)

	key := make([]byte, p.SymmetricKeyLength())
	data := []byte("a request header worth signing")

	sig, err := p.Sign(key, data)
	require.NoError(t, err)
	assert.Len(t, sig, p.SignatureLength())
	require.NoError(t, p.Verify(key, data, sig))

	tampered := append([]byte(nil), data...)
	tampered[0] ^= 0xFF
	assert.Error(t, p.Verify(key, tampered, sig))
}

func TestBasicPolicyEncryptDecryptRoundTrip(t *testing.T) {
	p, err := ByURI(ua.SecurityPolicyURIBasic256)
	require.NoError(t, err)

	key := make([]byte, p.SymmetricKeyLength())
	iv := make([]byte, p.BlockSize())
	plaintext := make([]byte, p.BlockSize()*3)
	copy(plaintext, []byte("16-byte-aligned payload padded out to whole blocks"))

	ciphertext, err := p.Encrypt(key, iv, plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := p.Decrypt(key, iv, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestBasicPolicyEncryptRejectsUnalignedPlaintext(t *testing.T) {
	p, err := ByURI(ua.SecurityPolicyURIBasic256)
	require.NoError(t, err)

	key := make([]byte, p.SymmetricKeyLength())
	iv := make([]byte, p.BlockSize())
	_, err = p.Encrypt(key, iv, []byte("not block aligned"))
	assert.Error(t, err)
}

func TestBasicPolicyAsymmetricEncryptRoundTrip(t *testing.T) {
	p, err := ByURI(ua.SecurityPolicyURIBasic256Sha256)
	require.NoError(t, err)
	cert, key := selfSignedCert(t)

	plaintext := []byte("a password plus server nonce")
	ciphertext, err := p.AsymmetricEncrypt(cert, plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := rsa.DecryptOAEP(p.(*basic).hashNew(), nil, key, ciphertext, nil)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestPasswordEncryptionAlgorithmURI(t *testing.T) {
	sha256Policy, err := ByURI(ua.SecurityPolicyURIBasic256Sha256)
	require.NoError(t, err)
	assert.Equal(t, "http://opcfoundation.org/UA/security/rsa-oaep-sha2-256", sha256Policy.PasswordEncryptionAlgorithmURI())

	sha1Policy, err := ByURI(ua.SecurityPolicyURIBasic256)
	require.NoError(t, err)
	assert.Equal(t, "http://www.w3.org/2001/04/xmlenc#rsa-oaep", sha1Policy.PasswordEncryptionAlgorithmURI())

	nonePolicy, err := ByURI(ua.SecurityPolicyURINone)
	require.NoError(t, err)
	assert.Equal(t, "", nonePolicy.PasswordEncryptionAlgorithmURI())
}

func TestSHA1Thumbprint(t *testing.T) {
	a := SHA1Thumbprint([]byte("certificate bytes"))
	b := SHA1Thumbprint([]byte("certificate bytes"))
	assert.Equal(t, a, b)
	assert.Len(t, a, 20)
}
