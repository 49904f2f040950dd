package directory

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/stakevault/libstakevault-go/ledger"
)

const (
	// defaultUpstream is the default recursive resolver.
	defaultUpstream = "8.8.8.8:53"

	// queryTimeout bounds one DNS exchange.
	queryTimeout = 10 * time.Second

	// edns0BufSize is the EDNS0 UDP buffer size.
	edns0BufSize = 4096
)

// DNS resolves directory keys from TXT records published under Zone.
//
// The record for a key lives at <hex[:32]>.<hex[32:]>.<Zone>, since a DNS
// label holds at most 63 characters, and carries the contract address as
// 0x-prefixed hex.
type DNS struct {
	// Zone is the domain the directory is published under.
	Zone string
	// Upstream is the recursive resolver address (e.g., "8.8.8.8:53").
	Upstream string
	// RequireDNSSEC rejects answers without the AD (Authenticated Data) flag.
	RequireDNSSEC bool
}

// NewDNS creates a DNS directory for zone.
// If upstream is empty, it defaults to "8.8.8.8:53".
func NewDNS(zone, upstream string, requireDNSSEC bool) *DNS {
	if upstream == "" {
		upstream = defaultUpstream
	}
	return &DNS{Zone: zone, Upstream: upstream, RequireDNSSEC: requireDNSSEC}
}

// RecordName returns the fully qualified name holding key's record.
func (d *DNS) RecordName(key [32]byte) string {
	h := hex.EncodeToString(key[:])
	return dns.Fqdn(h[:32] + "." + h[32:] + "." + strings.TrimSuffix(d.Zone, "."))
}

// GetAddress looks up the TXT record for key.
func (d *DNS) GetAddress(ctx context.Context, key [32]byte) (ledger.Address, error) {
	name := d.RecordName(key)
	txts, err := d.lookupTXT(ctx, name)
	if err != nil {
		return ledger.ZeroAddress, err
	}
	for _, txt := range txts {
		addr, err := ledger.ParseAddress(strings.TrimSpace(txt))
		if err != nil {
			continue
		}
		if addr.IsZero() {
			return ledger.ZeroAddress, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return addr, nil
	}
	return ledger.ZeroAddress, fmt.Errorf("%w: no address in TXT records for %s", ErrInvalidRecord, name)
}

func (d *DNS) lookupTXT(ctx context.Context, name string) ([]string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(name, dns.TypeTXT)
	msg.RecursionDesired = true
	msg.SetEdns0(edns0BufSize, d.RequireDNSSEC) // DO (DNSSEC OK) flag

	client := &dns.Client{Timeout: queryTimeout}
	resp, _, err := client.ExchangeContext(ctx, msg, d.Upstream)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s TXT: %w", ErrLookupFailed, name, err)
	}
	if resp.Rcode == dns.RcodeNameError {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("%w: query %s TXT: rcode %s",
			ErrLookupFailed, name, dns.RcodeToString[resp.Rcode])
	}
	if d.RequireDNSSEC && !resp.AuthenticatedData {
		return nil, fmt.Errorf("%w: AD flag not set for %s", ErrDNSSECValidationFailed, name)
	}

	var txts []string
	for _, rr := range resp.Answer {
		if txt, ok := rr.(*dns.TXT); ok {
			// TXT records may be split into multiple strings; join them.
			txts = append(txts, strings.Join(txt.Txt, ""))
		}
	}
	if len(txts) == 0 {
		return nil, fmt.Errorf("%w: no TXT records for %s", ErrNotFound, name)
	}
	return txts, nil
}
