package server

import "fmt"

// displayServerInfo prints a startup summary: endpoints, then each
// protection layer with a warning when it is off.
func (s *Server) displayServerInfo() {
	fmt.Println("Endpoints:")
	fmt.Println("  GET  /health    - Service health")
	fmt.Println("  GET  /stats     - Runtime statistics")
	fmt.Println("  POST /match     - Match resume against job descriptions (requires API key)")
	fmt.Println("  POST /parse     - Parse resume into structured facts (requires API key)")

	if len(s.APIKeys) > 0 {
		fmt.Printf("API auth: ENABLED, %d key(s) accepted\n", len(s.APIKeys))
		fmt.Println("Send 'X-API-Key: <your-key>' with requests to /match and /parse")
	} else {
		fmt.Println("API auth: DISABLED, no keys configured")
		fmt.Println("WARNING: /match and /parse are open to anyone")
	}

	if s.MaxRequestSize > 0 {
		fmt.Printf("Request body cap: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Println("Request body cap: DISABLED")
		fmt.Println("WARNING: request bodies are unbounded")
	}

	s.displayRateLimitInfo()
}

func (s *Server) displayRateLimitInfo() {
	if s.RateLimit == nil || !s.RateLimit.Enabled {
		fmt.Println("Rate limiting: DISABLED")
		fmt.Println("WARNING: clients are not rate limited")
		return
	}

	fmt.Printf("Rate limiting: ENABLED, %d req/min with burst %d\n",
		s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
	if s.RateLimit.ByAPIKey {
		fmt.Println("  - keyed per API key")
	}
	if s.RateLimit.ByIP {
		fmt.Println("  - keyed per client IP")
	}
}
