// Package config manages the certman application configuration and the
// certificate records it tracks, stored in YAML format.
//
// Configuration lives in the user's home directory at
// ~/.config/certman/config.yaml and holds the DNS provider selection,
// ACME directory URL, timing knobs, and a map of all managed
// certificates.
//
// Example config.yaml:
//
//	dns_provider: cloudflare
//	ca_directory_url: https://acme-v02.api.letsencrypt.org/directory
//	email: admin@example.com
//	propagation_seconds: 30
//	renewal_threshold_days: 30
//	validation_timeout_seconds: 300
//	cert_dir: /home/user/.config/certman/certs
//	env_file: /srv/server/.env
//	certificates:
//	  example.com:
//	    domain: example.com
//	    chain_path: /home/user/.config/certman/certs/example.com/fullchain.pem
//	    key_path: /home/user/.config/certman/certs/example.com/privkey.pem
//	    issued_at: 2026-08-23T10:00:00Z
//	    expires_at: 2026-11-21T10:00:00Z
//
// Loading a missing file returns a Config populated with defaults, so a
// fresh install works without any setup beyond saving a credential.
package config
