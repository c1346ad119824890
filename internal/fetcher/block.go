package fetcher

import (
	"net/http"
	"strings"
)

// BlockType describes the anti-bot wall a response hit.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockDataDome   BlockType = "datadome"
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
)

// DetectBlock inspects a response for signs of bot protection. Marketplace
// walls usually answer 403 with a vendor header, but some serve the
// challenge page with 200.
func DetectBlock(status int, header http.Header, body []byte) BlockType {
	if status == http.StatusForbidden || status == http.StatusServiceUnavailable {
		if header.Get("X-DataDome") != "" || header.Get("X-DD-B") != "" || strings.EqualFold(header.Get("Server"), "DataDome") {
			return BlockDataDome
		}
		if header.Get("CF-Ray") != "" || strings.EqualFold(header.Get("Server"), "cloudflare") {
			return BlockCloudflare
		}
	}

	// Real result pages are large; only short bodies are scanned for markers.
	if len(body) > 64<<10 {
		return BlockNone
	}
	lower := strings.ToLower(string(body))
	switch {
	case strings.Contains(lower, "captcha-delivery.com") || strings.Contains(lower, "datadome"):
		return BlockDataDome
	case strings.Contains(lower, "cf-browser-verification") || strings.Contains(lower, "checking your browser"):
		return BlockCloudflare
	case strings.Contains(lower, "g-recaptcha") || strings.Contains(lower, "hcaptcha"):
		return BlockCaptcha
	}
	return BlockNone
}
