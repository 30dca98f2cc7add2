package server

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"

	"jobmatcher/internal/observability"
)

// cipherSuiteIDs maps the configurable cipher suite names to their IDs.
// Unknown names are dropped at config time rather than failing the listener.
var cipherSuiteIDs = map[string]uint16{
	"TLS_AES_128_GCM_SHA256":                  tls.TLS_AES_128_GCM_SHA256,
	"TLS_AES_256_GCM_SHA384":                  tls.TLS_AES_256_GCM_SHA384,
	"TLS_CHACHA20_POLY1305_SHA256":            tls.TLS_CHACHA20_POLY1305_SHA256,
	"TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256": tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	"TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384": tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	"TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256":   tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	"TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384":   tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	"TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305":  tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
	"TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305":    tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
}

// configureTLS prepares the listener for the configured TLS mode. Server
// and mutual modes share one setup path; mutual additionally verifies
// client certificates.
func (s *Server) configureTLS(httpServer *http.Server, om *observability.ObservabilityManager) error {
	addr := httpServer.Addr

	switch s.TLSConfig.Mode {
	case "disabled":
		fmt.Printf("Serving plain HTTP on http://%s\n", addr)
		return nil
	case "server":
		fmt.Printf("Serving HTTPS on https://%s\n", addr)
		fmt.Println("TLS: server-only, client certificates not requested")
	case "mutual":
		fmt.Printf("Serving HTTPS with mutual TLS on https://%s\n", addr)
		fmt.Println("TLS: mutual, client certificates required")
	default:
		return fmt.Errorf("unknown TLS mode %q", s.TLSConfig.Mode)
	}

	if err := s.setupCertificateManager(om); err != nil {
		return err
	}

	tlsConfig, err := s.buildTLSConfig()
	if err != nil {
		return fmt.Errorf("TLS setup: %w", err)
	}
	httpServer.TLSConfig = tlsConfig
	return nil
}

// setupCertificateManager starts certificate auto-reload when enabled.
// Without it the listener falls back to statically loaded certificates.
func (s *Server) setupCertificateManager(om *observability.ObservabilityManager) error {
	if !s.TLSConfig.AutoReload.Enabled {
		return nil
	}

	certManager := NewCertificateManager(&s.TLSConfig, &s.TLSConfig.AutoReload, om, s.Logger)
	if err := certManager.Start(); err != nil {
		return fmt.Errorf("certificate manager start: %w", err)
	}
	s.CertificateManager = certManager

	certManager.AddReloadCallback(func(success bool, err error) {
		if success {
			s.Logger.Info("TLS certificates reloaded")
		} else {
			s.Logger.LogError(err, "TLS certificate reload failed")
		}
	})

	fmt.Println("Certificate auto-reload: ENABLED")
	if s.TLSConfig.AutoReload.FileWatcher.Enabled {
		fmt.Println("  - watching certificate files for rotation")
	}
	return nil
}

// buildTLSConfig assembles the tls.Config for the current mode.
func (s *Server) buildTLSConfig() (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion: s.minTLSVersion(),
	}

	if s.CertificateManager != nil {
		// Dynamic material: every handshake asks the manager, so a
		// rotation takes effect without restarting the listener.
		tlsConfig.GetCertificate = s.CertificateManager.GetServerCertificate
		if s.TLSConfig.Mode == "mutual" {
			tlsConfig.VerifyPeerCertificate = s.CertificateManager.VerifyPeerCertificate
		}
	} else {
		cert, err := s.loadStaticCertificate()
		if err != nil {
			return nil, err
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	if suites := s.selectedCipherSuites(); len(suites) > 0 {
		tlsConfig.CipherSuites = suites
	}

	if s.TLSConfig.Mode == "mutual" {
		pool, err := s.loadClientCAPool()
		if err != nil {
			return nil, err
		}
		tlsConfig.ClientCAs = pool
		tlsConfig.ClientAuth = s.clientAuthPolicy()
	} else {
		tlsConfig.ClientAuth = tls.NoClientCert
	}

	if s.TLSConfig.InsecureSkipVerify {
		tlsConfig.InsecureSkipVerify = true
		fmt.Println("WARNING: insecureSkipVerify is set, certificate verification is off")
	}
	if s.TLSConfig.ServerName != "" {
		tlsConfig.ServerName = s.TLSConfig.ServerName
	}

	return tlsConfig, nil
}

func (s *Server) minTLSVersion() uint16 {
	if s.TLSConfig.MinVersion == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}

func (s *Server) selectedCipherSuites() []uint16 {
	suites := make([]uint16, 0, len(s.TLSConfig.CipherSuites))
	for _, name := range s.TLSConfig.CipherSuites {
		if id, ok := cipherSuiteIDs[name]; ok {
			suites = append(suites, id)
		}
	}
	return suites
}

// loadStaticCertificate loads the cert/key pair once, inline content first.
func (s *Server) loadStaticCertificate() (tls.Certificate, error) {
	if s.TLSConfig.CertContent != "" && s.TLSConfig.KeyContent != "" {
		cert, err := tls.X509KeyPair([]byte(s.TLSConfig.CertContent), []byte(s.TLSConfig.KeyContent))
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("load server key pair from inline content: %w", err)
		}
		return cert, nil
	}
	if s.TLSConfig.CertFile != "" && s.TLSConfig.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(s.TLSConfig.CertFile, s.TLSConfig.KeyFile)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("load server key pair from files: %w", err)
		}
		return cert, nil
	}
	return tls.Certificate{}, fmt.Errorf("server certificate and key are required, as files or inline content")
}

// loadClientCAPool builds the pool used to verify client certificates.
func (s *Server) loadClientCAPool() (*x509.CertPool, error) {
	var pem []byte
	switch {
	case s.TLSConfig.CAContent != "":
		pem = []byte(s.TLSConfig.CAContent)
	case s.TLSConfig.CAFile != "":
		data, err := os.ReadFile(s.TLSConfig.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}
		pem = data
	default:
		return nil, fmt.Errorf("mutual TLS requires a CA certificate, as caFile or caContent")
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("CA certificate PEM did not parse")
	}
	return pool, nil
}

func (s *Server) clientAuthPolicy() tls.ClientAuthType {
	switch s.TLSConfig.ClientAuthPolicy {
	case "request":
		return tls.RequestClientCert
	case "verify":
		return tls.VerifyClientCertIfGiven
	default:
		return tls.RequireAndVerifyClientCert
	}
}
