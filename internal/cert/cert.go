package cert

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

const (
	CertificateFileName = "inspector.crt"
	KeyFileName         = "inspector.key"
)

// Paths возвращает пути к сертификату и ключу в каталоге dir.
func Paths(dir string) (string, string) {
	return filepath.Join(dir, CertificateFileName), filepath.Join(dir, KeyFileName)
}

// GenerateCert создаёт самоподписанный сертификат для 127.0.0.1, ::1 и localhost.
func GenerateCert() ([]byte, []byte, error) {
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		return nil, nil, fmt.Errorf("generate serial: %w", err)
	}

	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"gzip64-inspector"},
		},
		IPAddresses: []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		DNSNames:    []string{"localhost"},
		NotBefore:   time.Now(),
		// сертификат верен год
		NotAfter:    time.Now().AddDate(1, 0, 0),
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		KeyUsage:    x509.KeyUsageDigitalSignature,
	}

	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generate key: %w", err)
	}

	certBytes, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &privateKey.PublicKey, privateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("create certificate: %w", err)
	}

	keyBytes, err := x509.MarshalECPrivateKey(privateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal key: %w", err)
	}

	var certPEM, keyPEM bytes.Buffer
	if err := pem.Encode(&certPEM, &pem.Block{Type: "CERTIFICATE", Bytes: certBytes}); err != nil {
		return nil, nil, err
	}
	if err := pem.Encode(&keyPEM, &pem.Block{Type: "EC PRIVATE KEY", Bytes: keyBytes}); err != nil {
		return nil, nil, err
	}

	return certPEM.Bytes(), keyPEM.Bytes(), nil
}

// CertExists проверяет существование сертификата и ключа.
func CertExists(dir string) bool {
	certPath, keyPath := Paths(dir)
	_, certErr := os.Stat(certPath)
	_, keyErr := os.Stat(keyPath)
	return certErr == nil && keyErr == nil
}

// SaveCert сохраняет сертификат и ключ в файлы.
func SaveCert(dir string, certPEM, keyPEM []byte) error {
	certPath, keyPath := Paths(dir)
	if err := os.WriteFile(certPath, certPEM, 0600); err != nil {
		return err
	}
	return os.WriteFile(keyPath, keyPEM, 0600)
}

// Ensure создаёт сертификат, если его ещё нет, и возвращает пути к файлам.
func Ensure(dir string) (string, string, error) {
	certPath, keyPath := Paths(dir)
	if CertExists(dir) {
		return certPath, keyPath, nil
	}

	certPEM, keyPEM, err := GenerateCert()
	if err != nil {
		return "", "", err
	}
	if err := SaveCert(dir, certPEM, keyPEM); err != nil {
		return "", "", fmt.Errorf("failed to save TLS certificate: %w", err)
	}
	return certPath, keyPath, nil
}
