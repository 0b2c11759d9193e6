package pco

import (
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Validation patterns for writer configuration fields. A network address is
// "<protocol>://<ipv4-or-hostname>:<port>" where the port has 4 or 5 digits
// (no check against the 65535 ceiling) and a hostname must contain at least
// one character that is neither a digit nor a period, to distinguish it from
// an IPv4 address.
const (
	// IPv4 with no leading zeros and octet values up to 255.
	ipv4Pattern = `(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}` +
		`(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)`
	hostnamePattern = `[\w.\-]*[A-Za-z_-][\w.\-]*`
	portPattern     = `:[0-9]{4,5}`
)

var (
	outputFileRe  = regexp.MustCompile(`^[%./A-Za-z0-9_-]*\.h5$`)
	placeholderRe = regexp.MustCompile(`%\d*d`)
)

// ValidateIPAddress checks that s is a valid IPv4 address and returns it in
// canonical form.
func ValidateIPAddress(s string) (string, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not an IP address", ErrInvalidConfiguration, s)
	}
	if !addr.Is4() {
		return "", fmt.Errorf("%w: %q is not an IPv4 address", ErrInvalidConfiguration, s)
	}
	return addr.String(), nil
}

// ValidateNetworkAddress checks that address is a well-formed
// "<protocol>://<ipv4-or-hostname>:<4-5 digit port>" endpoint and returns it
// unchanged. Unlike the service's historical client, it reports failure
// through the error return only; there is no nil-sentinel path.
func ValidateNetworkAddress(address, protocol string) (string, error) {
	protoPattern := regexp.QuoteMeta(protocol) + `://`

	ipRe, err := regexp.Compile(`^` + protoPattern + `(` + ipv4Pattern + `)` + portPattern + `$`)
	if err != nil {
		return "", fmt.Errorf("%w: bad protocol %q", ErrInvalidConfiguration, protocol)
	}
	if m := ipRe.FindStringSubmatch(address); m != nil {
		if _, err := ValidateIPAddress(m[1]); err != nil {
			return "", err
		}
		return address, nil
	}

	hostRe, err := regexp.Compile(`^` + protoPattern + hostnamePattern + portPattern + `$`)
	if err != nil {
		return "", fmt.Errorf("%w: bad protocol %q", ErrInvalidConfiguration, protocol)
	}
	if hostRe.MatchString(address) {
		return address, nil
	}
	return "", fmt.Errorf("%w: %q is not a valid %s://host:port address",
		ErrInvalidConfiguration, address, protocol)
}

// ValidateOutputFile expands a leading "~" and checks that the result looks
// like an hdf5 file path, optionally containing a %d-style file number
// placeholder. The expanded path is returned.
func ValidateOutputFile(path string) (string, error) {
	expanded, err := expandUser(path)
	if err != nil {
		return "", fmt.Errorf("%w: output file %q: %v", ErrInvalidConfiguration, path, err)
	}
	if !outputFileRe.MatchString(expanded) {
		return "", fmt.Errorf("%w: output file %q must match %s",
			ErrInvalidConfiguration, path, outputFileRe.String())
	}
	return expanded, nil
}

// ValidateNonNegInt checks that value is not negative. The parameter name is
// carried into the error for operator-facing messages.
func ValidateNonNegInt(name string, value int) (int, error) {
	if value < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer, got %d",
			ErrInvalidConfiguration, name, value)
	}
	return value, nil
}

// ValidateDatasetName checks that name is not empty.
func ValidateDatasetName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: dataset name must not be empty", ErrInvalidConfiguration)
	}
	return name, nil
}

// expandUser resolves a leading "~" or "~/" against the current user's home
// directory. Other paths pass through untouched; the client never makes the
// path absolute because the writer process resolves it in its own working
// directory.
func expandUser(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
