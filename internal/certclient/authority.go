package certclient

import "context"

// OrderStatus is the validation state of an order's challenge.
type OrderStatus string

// Order statuses reported by the authority.
const (
	StatusPending OrderStatus = "pending"
	StatusValid   OrderStatus = "valid"
	StatusInvalid OrderStatus = "invalid"
)

// Order is one in-flight certificate order. The exported fields describe
// the DNS-01 challenge the caller must publish; the rest of the order
// state is private to the Authority implementation.
type Order struct {
	Domain      string
	Token       string
	RecordName  string
	RecordValue string

	// Implementation-private order state (authorization and finalize
	// URLs for the ACME implementation, scripted state for stubs).
	impl interface{}
}

// IssuedCertificate is the downloaded result of a finalized order.
type IssuedCertificate struct {
	ChainPEM []byte // full chain, leaf first
	KeyPEM   []byte // certificate private key
}

// Authority abstracts the certificate authority protocol so the
// lifecycle logic can run against a test double.
//
// Transient failures (network timeouts, 5xx responses) must be marked
// with errors.Transient so the client retries them with backoff;
// anything else is treated as permanent and propagates immediately.
type Authority interface {
	// RegisterAccount creates or retrieves the CA account for the
	// contact email. Idempotent for the same account key.
	RegisterAccount(ctx context.Context, email string) error

	// NewOrder opens an order for the domain and returns its DNS-01
	// challenge.
	NewOrder(ctx context.Context, domain string) (*Order, error)

	// AcceptChallenge tells the CA the challenge record is in place and
	// validation may begin.
	AcceptChallenge(ctx context.Context, order *Order) error

	// OrderStatus reports the current validation state of the order.
	OrderStatus(ctx context.Context, order *Order) (OrderStatus, error)

	// Finalize submits the CSR and downloads the issued certificate.
	// Only valid once OrderStatus has reported StatusValid.
	Finalize(ctx context.Context, order *Order) (*IssuedCertificate, error)
}
