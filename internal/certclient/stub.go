package certclient

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"time"
)

// StubAuthority is a scriptable Authority for tests. Zero value behaves
// as a CA that validates on the first status poll and issues Chain/Key.
type StubAuthority struct {
	// PollsUntilValid is how many OrderStatus calls report pending
	// before the order turns valid.
	PollsUntilValid int

	// Chain and Key are returned by Finalize. When nil, a small
	// self-signed placeholder chain is generated.
	Chain []byte
	Key   []byte

	// Error injection, one per operation.
	RegisterErr error
	NewOrderErr error
	AcceptErr   error
	StatusErr   error
	FinalizeErr error

	// RejectValidation makes OrderStatus report StatusInvalid once
	// polling starts.
	RejectValidation bool

	// Call tracking.
	RegisterCalls []string
	NewOrderCalls []string
	AcceptCalls   int
	StatusCalls   int
	FinalizeCalls int
}

var _ Authority = (*StubAuthority)(nil)

func (s *StubAuthority) RegisterAccount(ctx context.Context, email string) error {
	s.RegisterCalls = append(s.RegisterCalls, email)
	return s.RegisterErr
}

func (s *StubAuthority) NewOrder(ctx context.Context, domain string) (*Order, error) {
	s.NewOrderCalls = append(s.NewOrderCalls, domain)
	if s.NewOrderErr != nil {
		return nil, s.NewOrderErr
	}
	return &Order{
		Domain:      domain,
		Token:       "stub-token",
		RecordName:  "_acme-challenge." + domain,
		RecordValue: "stub-validation-value",
	}, nil
}

func (s *StubAuthority) AcceptChallenge(ctx context.Context, order *Order) error {
	s.AcceptCalls++
	return s.AcceptErr
}

func (s *StubAuthority) OrderStatus(ctx context.Context, order *Order) (OrderStatus, error) {
	s.StatusCalls++
	if s.StatusErr != nil {
		return StatusPending, s.StatusErr
	}
	if s.RejectValidation {
		return StatusInvalid, nil
	}
	if s.StatusCalls <= s.PollsUntilValid {
		return StatusPending, nil
	}
	return StatusValid, nil
}

func (s *StubAuthority) Finalize(ctx context.Context, order *Order) (*IssuedCertificate, error) {
	s.FinalizeCalls++
	if s.FinalizeErr != nil {
		return nil, s.FinalizeErr
	}
	chain, key := s.Chain, s.Key
	if chain == nil {
		var err error
		chain, key, err = selfSignedPEM(order.Domain)
		if err != nil {
			return nil, fmt.Errorf("stub certificate generation: %w", err)
		}
	}
	return &IssuedCertificate{ChainPEM: chain, KeyPEM: key}, nil
}

// TotalAuthorityCalls counts every CA interaction, useful for asserting
// that an operation never reached the authority.
func (s *StubAuthority) TotalAuthorityCalls() int {
	return len(s.RegisterCalls) + len(s.NewOrderCalls) + s.AcceptCalls + s.StatusCalls + s.FinalizeCalls
}

// selfSignedPEM builds a throwaway certificate and key for the domain,
// valid for 90 days like a typical ACME issuance.
func selfSignedPEM(domain string) (chainPEM, keyPEM []byte, err error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, err
	}

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: domain},
		DNSNames:     []string{domain},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(90 * 24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		return nil, nil, err
	}

	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, nil, err
	}

	chainPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	return chainPEM, keyPEM, nil
}
