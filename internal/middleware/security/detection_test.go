package security

import (
	"net/http/httptest"
	"testing"
)

func TestSuspicion(t *testing.T) {
	d := NewDetector()

	clean := httptest.NewRequest("GET", "/ui/summary?month=2025-03", nil)
	clean.Header.Set("User-Agent", "Mozilla/5.0")
	if reason, bad := d.Suspicion(clean); bad {
		t.Errorf("clean request flagged: %q", reason)
	}

	// The mux never routes this, but the detector sees the raw URL.
	traversal := httptest.NewRequest("GET", "/static/../../etc/passwd", nil)
	if reason, bad := d.Suspicion(traversal); !bad || reason != "attack pattern in URL" {
		t.Errorf("traversal: reason=%q bad=%v", reason, bad)
	}

	scanner := httptest.NewRequest("GET", "/", nil)
	scanner.Header.Set("User-Agent", "sqlmap/1.7")
	if reason, bad := d.Suspicion(scanner); !bad || reason != "scanner user agent" {
		t.Errorf("scanner: reason=%q bad=%v", reason, bad)
	}

	trace := httptest.NewRequest("TRACE", "/", nil)
	if reason, bad := d.Suspicion(trace); !bad || reason != "unusual method" {
		t.Errorf("TRACE: reason=%q bad=%v", reason, bad)
	}

	m := d.GetMetrics()
	if m.SuspiciousRequests != 3 {
		t.Errorf("SuspiciousRequests = %d, want 3", m.SuspiciousRequests)
	}
}

func TestExtractClientIP(t *testing.T) {
	d := NewDetector()

	direct := httptest.NewRequest("GET", "/", nil)
	direct.RemoteAddr = "203.0.113.7:4431"
	if ip := d.ExtractClientIP(direct); ip != "203.0.113.7" {
		t.Errorf("direct = %q, want 203.0.113.7", ip)
	}

	// Forwarded header from a trusted proxy is honored.
	proxied := httptest.NewRequest("GET", "/", nil)
	proxied.RemoteAddr = "10.1.2.3:9000"
	proxied.Header.Set("X-Forwarded-For", "198.51.100.4, 10.1.2.3")
	if ip := d.ExtractClientIP(proxied); ip != "198.51.100.4" {
		t.Errorf("proxied = %q, want 198.51.100.4", ip)
	}

	// The same header from an untrusted peer is ignored.
	spoofed := httptest.NewRequest("GET", "/", nil)
	spoofed.RemoteAddr = "203.0.113.9:1234"
	spoofed.Header.Set("X-Forwarded-For", "198.51.100.4")
	if ip := d.ExtractClientIP(spoofed); ip != "203.0.113.9" {
		t.Errorf("spoofed = %q, want 203.0.113.9", ip)
	}

	// Garbage in a trusted proxy's header counts as an invalid attempt.
	bad := httptest.NewRequest("GET", "/", nil)
	bad.RemoteAddr = "127.0.0.1:5555"
	bad.Header.Set("X-Forwarded-For", "not-an-ip")
	if ip := d.ExtractClientIP(bad); ip != "127.0.0.1" {
		t.Errorf("bad header = %q, want 127.0.0.1", ip)
	}
	if m := d.GetMetrics(); m.InvalidIPAttempts != 1 {
		t.Errorf("InvalidIPAttempts = %d, want 1", m.InvalidIPAttempts)
	}
}
