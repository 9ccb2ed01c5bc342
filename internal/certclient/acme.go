package certclient

import (
	"context"
	"crypto"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-acme/lego/v4/acme"
	"github.com/go-acme/lego/v4/acme/api"
	"github.com/go-acme/lego/v4/certcrypto"
	"github.com/go-acme/lego/v4/challenge/dns01"

	"github.com/ksyq12/certman/internal/errors"
	"github.com/ksyq12/certman/internal/logger"
)

const acmeUserAgent = "certman"

// acmeOrder carries the per-order URLs between Authority calls.
type acmeOrder struct {
	orderURL     string
	authzURL     string
	challengeURL string
	finalizeURL  string
}

// acmeAuthority implements Authority over the lego low-level ACME API.
type acmeAuthority struct {
	directoryURL string
	accountKey   crypto.PrivateKey
	httpClient   *http.Client

	core *api.Core
}

// NewACMEAuthority builds an Authority speaking ACME to the directory at
// directoryURL, authenticated with the given account key.
func NewACMEAuthority(directoryURL string, accountKey crypto.PrivateKey) Authority {
	return &acmeAuthority{
		directoryURL: directoryURL,
		accountKey:   accountKey,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *acmeAuthority) RegisterAccount(ctx context.Context, email string) error {
	core, err := api.New(a.httpClient, acmeUserAgent, a.directoryURL, "", a.accountKey)
	if err != nil {
		return classifyACME(err)
	}

	account := acme.Account{
		TermsOfServiceAgreed: true,
		Contact:              []string{"mailto:" + email},
	}
	if _, err := core.Accounts.New(account); err != nil {
		return classifyACME(err)
	}

	a.core = core
	logger.Debug("ACME account ready for %s", email)
	return nil
}

func (a *acmeAuthority) NewOrder(ctx context.Context, domain string) (*Order, error) {
	if a.core == nil {
		return nil, errors.Validation("account must be registered before ordering")
	}

	extOrder, err := a.core.Orders.New([]string{domain})
	if err != nil {
		return nil, classifyACME(err)
	}
	if len(extOrder.Authorizations) == 0 {
		return nil, fmt.Errorf("order for %s has no authorizations", domain)
	}

	authzURL := extOrder.Authorizations[0]
	authz, err := a.core.Authorizations.Get(authzURL)
	if err != nil {
		return nil, classifyACME(err)
	}

	var chlg *acme.Challenge
	for i := range authz.Challenges {
		if authz.Challenges[i].Type == "dns-01" {
			chlg = &authz.Challenges[i]
			break
		}
	}
	if chlg == nil {
		return nil, fmt.Errorf("authority offered no dns-01 challenge for %s", domain)
	}

	keyAuth, err := a.core.GetKeyAuthorization(chlg.Token)
	if err != nil {
		return nil, classifyACME(err)
	}
	info := dns01.GetChallengeInfo(domain, keyAuth)

	return &Order{
		Domain:      domain,
		Token:       chlg.Token,
		RecordName:  dns01.UnFqdn(info.EffectiveFQDN),
		RecordValue: info.Value,
		impl: &acmeOrder{
			orderURL:     extOrder.Location,
			authzURL:     authzURL,
			challengeURL: chlg.URL,
			finalizeURL:  extOrder.Finalize,
		},
	}, nil
}

func (a *acmeAuthority) AcceptChallenge(ctx context.Context, order *Order) error {
	state, err := a.state(order)
	if err != nil {
		return err
	}
	if _, err := a.core.Challenges.New(state.challengeURL); err != nil {
		return classifyACME(err)
	}
	return nil
}

func (a *acmeAuthority) OrderStatus(ctx context.Context, order *Order) (OrderStatus, error) {
	state, err := a.state(order)
	if err != nil {
		return StatusInvalid, err
	}

	authz, err := a.core.Authorizations.Get(state.authzURL)
	if err != nil {
		return StatusPending, classifyACME(err)
	}

	switch authz.Status {
	case acme.StatusValid:
		return StatusValid, nil
	case acme.StatusInvalid, acme.StatusRevoked, acme.StatusDeactivated, acme.StatusExpired:
		return StatusInvalid, nil
	default:
		return StatusPending, nil
	}
}

func (a *acmeAuthority) Finalize(ctx context.Context, order *Order) (*IssuedCertificate, error) {
	state, err := a.state(order)
	if err != nil {
		return nil, err
	}

	certKey, err := certcrypto.GeneratePrivateKey(certcrypto.EC256)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to generate certificate key", err)
	}
	csr, err := certcrypto.GenerateCSR(certKey, order.Domain, nil, false)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to generate CSR", err)
	}

	extOrder, err := a.core.Orders.UpdateForCSR(state.finalizeURL, csr)
	if err != nil {
		return nil, classifyACME(err)
	}

	// Some CAs answer the finalize POST with a still-processing order;
	// poll until the certificate URL appears.
	for extOrder.Certificate == "" {
		if extOrder.Status == acme.StatusInvalid {
			return nil, fmt.Errorf("order for %s became invalid during finalization", order.Domain)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
		extOrder, err = a.core.Orders.Get(state.orderURL)
		if err != nil {
			return nil, classifyACME(err)
		}
	}

	chainPEM, _, err := a.core.Certificates.Get(extOrder.Certificate, true)
	if err != nil {
		return nil, classifyACME(err)
	}

	return &IssuedCertificate{
		ChainPEM: chainPEM,
		KeyPEM:   certcrypto.PEMEncode(certKey),
	}, nil
}

func (a *acmeAuthority) state(order *Order) (*acmeOrder, error) {
	if a.core == nil {
		return nil, errors.Validation("account must be registered before ordering")
	}
	state, ok := order.impl.(*acmeOrder)
	if !ok || state == nil {
		return nil, errors.Validation("order was not created by this authority")
	}
	return state, nil
}

// classifyACME marks retryable ACME failures as transient. Server-side
// errors and network timeouts are worth retrying; everything else, in
// particular 4xx problem documents, is permanent.
func classifyACME(err error) error {
	if err == nil {
		return nil
	}

	var problem *acme.ProblemDetails
	if errors.As(err, &problem) {
		if problem.HTTPStatus >= 500 || problem.Type == acme.BadNonceErr {
			return errors.Transient(err)
		}
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.Transient(err)
	}

	return err
}
