package oemcert

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
)

// Response is the body of the OEM devices endpoint. The list is paginated
// server side; Next and Previous are decoded but not followed.
type Response struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Probe `json:"results"`
}

// Probe is a device record. Certificate is empty when the probe has no
// signed certificate yet. Device stays raw until the probe is known to
// carry a certificate, so records without one are never inspected.
type Probe struct {
	Certificate string          `json:"crt"`
	Device      json.RawMessage `json:"device"`
}

type Device struct {
	Serial *string `json:"serial"`
}

// Entry pairs a probe serial with its certificate.
type Entry struct {
	Serial      string `json:"serial"`
	Certificate string `json:"certificate"`
}

type Format string

const (
	FormatPair Format = "pair"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPair, FormatJSON:
		return f, nil
	case "":
		return FormatPair, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

func (p *Probe) HasCertificate() bool {
	return p.Certificate != ""
}

func (p *Probe) GetDevice() (*Device, error) {
	raw := bytes.TrimSpace(p.Device)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, ErrMissingDevice
	}

	var d Device
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode device: %w", err)
	}
	return &d, nil
}

func (p *Probe) GetSerial() (string, error) {
	d, err := p.GetDevice()
	if err != nil {
		return "", err
	}
	if d.Serial == nil {
		return "", ErrMissingSerial
	}
	return *d.Serial, nil
}

// Authenticated returns an entry for every probe carrying a certificate,
// in input order. Probes without a certificate are skipped without looking
// at their device. A certificate on a probe without device or serial is an
// error.
func Authenticated(probes []Probe) ([]Entry, error) {
	var entries []Entry
	for i := range probes {
		if !probes[i].HasCertificate() {
			continue
		}
		serial, err := probes[i].GetSerial()
		if err != nil {
			return nil, fmt.Errorf("probe %d: %w", i, err)
		}
		entries = append(entries, Entry{Serial: serial, Certificate: probes[i].Certificate})
	}
	return entries, nil
}

// FilterSerials keeps entries whose serial is listed. No serials keeps all.
func FilterSerials(entries []Entry, serials ...string) []Entry {
	if len(serials) == 0 {
		return entries
	}

	wanted := make(map[string]bool, len(serials))
	for _, s := range serials {
		wanted[s] = true
	}

	var out []Entry
	for _, e := range entries {
		if wanted[e.Serial] {
			out = append(out, e)
		}
	}
	return out
}

// String renders the entry as a quoted pair, keeping multi-line
// certificates on a single line.
func (e Entry) String() string {
	return fmt.Sprintf("(%q, %q)", e.Serial, e.Certificate)
}

func (e Entry) Format(f Format) (string, error) {
	switch f {
	case FormatJSON:
		b, err := json.Marshal(e)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case FormatPair, "":
		return e.String(), nil
	default:
		return "", fmt.Errorf("unknown output format %q", string(f))
	}
}

// WriteEntries prints one line per entry.
func WriteEntries(w io.Writer, entries []Entry, f Format) error {
	for _, e := range entries {
		line, err := e.Format(f)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
