package config

import "fmt"

// certMaterial names one piece of PEM material that may arrive either as a
// file path or as inline content, but never both.
type certMaterial struct {
	name    string
	file    string
	content string
}

func (m certMaterial) provided() bool {
	return m.file != "" || m.content != ""
}

func (m certMaterial) ambiguous() bool {
	return m.file != "" && m.content != ""
}

// ValidateTLSConfig checks the server TLS block for contradictions before
// any listener is built. Mode "disabled" only has its minVersion checked,
// so a dormant TLS block cannot fail startup.
func (c *Config) ValidateTLSConfig() error {
	tls := c.Server.TLS

	switch tls.MinVersion {
	case "", "1.2", "1.3":
	default:
		return fmt.Errorf("invalid TLS minVersion %q: must be \"1.2\" or \"1.3\"", tls.MinVersion)
	}

	switch tls.Mode {
	case "disabled":
		return nil
	case "server":
		return validateCertMaterials(tls, false)
	case "mutual":
		if err := validateCertMaterials(tls, true); err != nil {
			return err
		}
		return validateClientAuthPolicy(tls.ClientAuthPolicy)
	default:
		return fmt.Errorf("invalid TLS mode %q: must be \"disabled\", \"server\", or \"mutual\"", tls.Mode)
	}
}

// validateCertMaterials checks the server certificate and key, plus the CA
// bundle when mutual TLS is requested. Each material must come from exactly
// one source.
func validateCertMaterials(tls TLSConfig, needCA bool) error {
	cert := certMaterial{name: "certificate", file: tls.CertFile, content: tls.CertContent}
	key := certMaterial{name: "key", file: tls.KeyFile, content: tls.KeyContent}

	if !cert.provided() || !key.provided() {
		return fmt.Errorf("TLS mode %q needs both a certificate and a key, as files or inline content", tls.Mode)
	}

	materials := []certMaterial{cert, key}
	if needCA {
		ca := certMaterial{name: "CA certificate", file: tls.CAFile, content: tls.CAContent}
		if !ca.provided() {
			return fmt.Errorf("mutual TLS needs a CA certificate, as caFile or caContent")
		}
		materials = append(materials, ca)
	}

	for _, m := range materials {
		if m.ambiguous() {
			return fmt.Errorf("TLS %s given as both a file and inline content: pick one source", m.name)
		}
	}
	return nil
}

func validateClientAuthPolicy(policy string) error {
	switch policy {
	case "", "require", "request", "verify":
		return nil
	default:
		return fmt.Errorf("invalid clientAuthPolicy %q: must be \"require\", \"request\", or \"verify\"", policy)
	}
}
