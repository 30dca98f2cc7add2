package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	"jobmatcher/internal/config"
	"jobmatcher/internal/errors"
	"jobmatcher/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ReloadCallback is invoked after every reload attempt, successful or not.
type ReloadCallback func(success bool, err error)

// CertificateMetrics is a snapshot of reload activity for the status
// endpoint.
type CertificateMetrics struct {
	ReloadCount        int64
	ReloadSuccessCount int64
	ReloadFailureCount int64
	LastReloadTime     time.Time
	LastReloadSuccess  bool
	LastReloadError    string
}

// CertificateManager holds the server's TLS material and swaps it in place
// when the underlying PEM files rotate, so handshakes always see current
// certificates without a listener restart.
type CertificateManager struct {
	mu sync.RWMutex

	serverCert       *tls.Certificate
	serverCertExpiry time.Time
	caCertPool       *x509.CertPool

	fileWatcher *CertWatcher

	config           *config.TLSConfig
	autoReloadConfig *config.AutoReloadConfig

	reloadCallbacks []ReloadCallback
	logger          *errors.Logger

	observabilityManager *observability.ObservabilityManager

	reloadCount        int64
	reloadSuccessCount int64
	reloadFailureCount int64
	lastReloadTime     time.Time
	lastReloadSuccess  bool
	lastReloadError    string
}

// NewCertificateManager builds a manager for the given TLS settings. The
// observability manager may be nil; metrics are then skipped.
func NewCertificateManager(tlsConfig *config.TLSConfig, autoReloadConfig *config.AutoReloadConfig, om *observability.ObservabilityManager, logger *errors.Logger) *CertificateManager {
	return &CertificateManager{
		config:               tlsConfig,
		autoReloadConfig:     autoReloadConfig,
		logger:               logger,
		observabilityManager: om,
	}
}

// Start loads the initial certificates, begins expiry reporting and, when
// configured with file-based material, starts the file watcher.
func (cm *CertificateManager) Start() error {
	if err := cm.ReloadCertificates(); err != nil {
		return fmt.Errorf("initial certificate load: %w", err)
	}

	cm.startExpiryReporting()
	return cm.startFileWatcher()
}

// Stop shuts down the file watcher if one is running.
func (cm *CertificateManager) Stop() error {
	if cm.fileWatcher != nil {
		if err := cm.fileWatcher.Stop(); err != nil {
			if cm.logger != nil {
				cm.logger.LogError(err, "File watcher stop failed")
			}
			return err
		}
	}
	if cm.logger != nil {
		cm.logger.Info("Certificate manager shut down")
	}
	return nil
}

// GetServerCertificate hands the current certificate to a TLS handshake.
// An expired certificate fails the handshake rather than presenting stale
// material.
func (cm *CertificateManager) GetServerCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.serverCert == nil {
		return nil, fmt.Errorf("server certificate not loaded")
	}
	if time.Now().After(cm.serverCertExpiry) {
		if cm.logger != nil {
			cm.logger.LogError(fmt.Errorf("certificate expired at %s", cm.serverCertExpiry),
				"Refusing handshake with expired server certificate",
				"server_name", hello.ServerName)
		}
		return nil, fmt.Errorf("server certificate has expired")
	}
	return cm.serverCert, nil
}

// GetCACertPool returns the pool used to verify client certificates, or nil
// outside mutual mode.
func (cm *CertificateManager) GetCACertPool() *x509.CertPool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.caCertPool
}

// VerifyPeerCertificate checks a client's leaf certificate against the
// current CA pool. Using the manager's pool instead of tls.Config.ClientCAs
// keeps verification correct across CA rotations.
func (cm *CertificateManager) VerifyPeerCertificate(rawCerts [][]byte, verifiedChains [][]*x509.Certificate) error {
	if len(rawCerts) == 0 {
		return fmt.Errorf("peer presented no certificates")
	}

	cert, err := x509.ParseCertificate(rawCerts[0])
	if err != nil {
		return fmt.Errorf("parse peer certificate: %w", err)
	}

	pool := cm.GetCACertPool()
	if pool == nil {
		return fmt.Errorf("CA pool not loaded")
	}

	if _, err := cert.Verify(x509.VerifyOptions{Roots: pool}); err != nil {
		return fmt.Errorf("peer certificate rejected by CA pool: %w", err)
	}
	return nil
}

// AddReloadCallback registers a callback for reload outcomes.
func (cm *CertificateManager) AddReloadCallback(callback ReloadCallback) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.reloadCallbacks = append(cm.reloadCallbacks, callback)
}

// CheckExpiry returns the time remaining on the server certificate.
func (cm *CertificateManager) CheckExpiry() (time.Duration, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.serverCertExpiry.IsZero() {
		return 0, fmt.Errorf("no certificate loaded")
	}
	return time.Until(cm.serverCertExpiry), nil
}

// GetMetrics snapshots the reload counters for the status endpoint.
func (cm *CertificateManager) GetMetrics() *CertificateMetrics {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	return &CertificateMetrics{
		ReloadCount:        cm.reloadCount,
		ReloadSuccessCount: cm.reloadSuccessCount,
		ReloadFailureCount: cm.reloadFailureCount,
		LastReloadTime:     cm.lastReloadTime,
		LastReloadSuccess:  cm.lastReloadSuccess,
		LastReloadError:    cm.lastReloadError,
	}
}

// ReloadCertificates loads fresh material and swaps it in under the lock.
// A failed load leaves the previous certificates serving.
func (cm *CertificateManager) ReloadCertificates() error {
	serverCert, expiry, err := cm.loadServerPair()
	if err != nil {
		cm.recordReload(false, err)
		return err
	}
	caPool, err := cm.loadCAPool()
	if err != nil {
		cm.recordReload(false, err)
		return err
	}

	cm.mu.Lock()
	cm.serverCert = serverCert
	cm.serverCertExpiry = expiry
	cm.caCertPool = caPool
	cm.lastReloadTime = time.Now()
	cm.mu.Unlock()

	cm.recordReload(true, nil)

	if cm.logger != nil {
		cm.logger.Info("Certificates reloaded", "server_cert_expiry", expiry)
	}
	return nil
}

// loadServerPair reads the cert/key pair, preferring inline content over
// files, and extracts the leaf's expiry.
func (cm *CertificateManager) loadServerPair() (*tls.Certificate, time.Time, error) {
	var (
		cert tls.Certificate
		err  error
	)
	switch {
	case cm.config.CertContent != "" && cm.config.KeyContent != "":
		cert, err = tls.X509KeyPair([]byte(cm.config.CertContent), []byte(cm.config.KeyContent))
	case cm.config.CertFile != "" && cm.config.KeyFile != "":
		cert, err = tls.LoadX509KeyPair(cm.config.CertFile, cm.config.KeyFile)
	default:
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}

	var expiry time.Time
	if len(cert.Certificate) > 0 {
		leaf, err := x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("parse server certificate: %w", err)
		}
		expiry = leaf.NotAfter
	}
	return &cert, expiry, nil
}

// loadCAPool builds the client-verification pool for mutual mode.
func (cm *CertificateManager) loadCAPool() (*x509.CertPool, error) {
	if cm.config.Mode != "mutual" {
		return nil, nil
	}

	var pem []byte
	switch {
	case cm.config.CAContent != "":
		pem = []byte(cm.config.CAContent)
	case cm.config.CAFile != "":
		data, err := os.ReadFile(cm.config.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}
		pem = data
	default:
		return nil, nil
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("CA certificate PEM did not parse")
	}
	return pool, nil
}

// startFileWatcher wires rotation detection for file-based material.
func (cm *CertificateManager) startFileWatcher() error {
	if cm.autoReloadConfig == nil || !cm.autoReloadConfig.FileWatcher.Enabled {
		return nil
	}
	if cm.config.CertFile == "" && cm.config.KeyFile == "" && cm.config.CAFile == "" {
		return nil
	}

	watcher, err := NewCertWatcher(
		cm.config.CertFile,
		cm.config.KeyFile,
		cm.config.CAFile,
		cm.autoReloadConfig.FileWatcher.DebounceDelay,
		cm.onFilesChanged,
		cm.logger,
	)
	if err != nil {
		return fmt.Errorf("create cert watcher: %w", err)
	}

	cm.fileWatcher = watcher
	if err := cm.fileWatcher.Start(); err != nil {
		return fmt.Errorf("start cert watcher: %w", err)
	}
	return nil
}

// onFilesChanged is the watcher callback.
func (cm *CertificateManager) onFilesChanged() {
	if cm.logger != nil {
		cm.logger.Info("File watcher triggered certificate reload")
	}
	if err := cm.ReloadCertificates(); err != nil && cm.logger != nil {
		cm.logger.LogError(err, "Certificate reload failed")
	}
}

// recordReload updates the counters, emits metrics and fans out to the
// registered callbacks.
func (cm *CertificateManager) recordReload(success bool, err error) {
	cm.mu.Lock()
	cm.reloadCount++
	if success {
		cm.reloadSuccessCount++
		cm.lastReloadSuccess = true
		cm.lastReloadError = ""
	} else {
		cm.reloadFailureCount++
		cm.lastReloadSuccess = false
		if err != nil {
			cm.lastReloadError = err.Error()
		}
	}
	callbacks := make([]ReloadCallback, len(cm.reloadCallbacks))
	copy(callbacks, cm.reloadCallbacks)
	cm.mu.Unlock()

	cm.emitReloadMetric(success, err)

	for _, callback := range callbacks {
		go callback(success, err)
	}
}

func (cm *CertificateManager) emitReloadMetric(success bool, err error) {
	metrics := cm.otelMetrics()
	if metrics == nil {
		return
	}

	ctx := context.Background()
	attrs := []attribute.KeyValue{attribute.String("cert_type", "server")}
	if success {
		attrs = append(attrs, attribute.String("status", "success"))
	} else {
		attrs = append(attrs, attribute.String("status", "failure"))
		if err != nil {
			attrs = append(attrs, attribute.String("error", err.Error()))
		}
	}
	metrics.CertReloadCount.Add(ctx, 1, metric.WithAttributes(attrs...))

	cm.emitExpiryMetric()
}

func (cm *CertificateManager) emitExpiryMetric() {
	metrics := cm.otelMetrics()
	if metrics == nil {
		return
	}

	cm.mu.RLock()
	expiry := cm.serverCertExpiry
	cm.mu.RUnlock()
	if expiry.IsZero() {
		return
	}

	metrics.CertExpiryTime.Record(context.Background(),
		time.Until(expiry).Seconds(),
		metric.WithAttributes(attribute.String("cert_type", "server")))
}

func (cm *CertificateManager) otelMetrics() *observability.Metrics {
	if cm.observabilityManager == nil {
		return nil
	}
	return cm.observabilityManager.GetMetrics()
}

// startExpiryReporting keeps the expiry gauge current between reloads.
func (cm *CertificateManager) startExpiryReporting() {
	if cm.observabilityManager == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cm.emitExpiryMetric()
		}
	}()

	if cm.logger != nil {
		cm.logger.Info("Certificate expiry reporting started")
	}
}
