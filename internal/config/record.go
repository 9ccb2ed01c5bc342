package config

import "time"

// CertificateRecord tracks an issued certificate's artifacts and lifetime.
// Created on successful issuance, updated in place on renewal.
type CertificateRecord struct {
	Domain    string    `yaml:"domain"`
	ChainPath string    `yaml:"chain_path"`
	KeyPath   string    `yaml:"key_path"`
	IssuedAt  time.Time `yaml:"issued_at"`
	ExpiresAt time.Time `yaml:"expires_at"`
}

// RemainingValidity returns the time left until the certificate expires.
// Negative when the certificate has already expired.
func (r *CertificateRecord) RemainingValidity(now time.Time) time.Duration {
	return r.ExpiresAt.Sub(now)
}

// DueForRenewal reports whether the certificate's remaining validity has
// dropped to or below the renewal threshold.
func (r *CertificateRecord) DueForRenewal(now time.Time, threshold time.Duration) bool {
	return r.RemainingValidity(now) <= threshold
}
