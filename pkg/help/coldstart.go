package help

const ColdstartYAML = `# linkslug Quick Start

tiers:
  ai: "Hosted text generation (needs ANTHROPIC_API_KEY and ai.enabled)"
  scraping: "Page title, headings and keywords"
  url: "Meaningful URL path segments and search queries"
  template: "Known platforms (GitHub, YouTube, Reddit, Amazon, ...)"
  fallback: "Merchant plus date or campaign word; always succeeds"

commands:
  basic: |
    linkslug generate "https://www.target.com/p/centrum-silver-men"

  several_urls: |
    linkslug generate --urls "https://example.com/a,https://example.com/b" --format yaml

  alternatives: |
    linkslug multiple --count 5 "https://www.target.com/p/centrum-silver-men"

  offline: |
    linkslug --no-ai generate --no-fetch "https://github.com/golang/go/issues/4242"

  learn_a_pattern: |
    # Step 1: Record slugs for an identity
    linkslug generate --identity acme --record "https://acme.com/spring-sale"
    linkslug db record acme --url "https://acme.com/fall" --slug "Acme.Fall-Collection"

    # Step 2: Analyze once at least 5 slugs are recorded
    linkslug analyze acme

    # Step 3: Later slugs follow the learned separator and casing
    linkslug generate --identity acme "https://acme.com/winter"

  cache: |
    linkslug cache stats --limit 5 --format table
    linkslug cache clear

  server: |
    linkslug serve --addr :8080 --analyze-schedule "@daily"

http_api:
  - "POST /slugs {url, identity_id, record_history, ...}"
  - "POST /slugs/multiple {url, count}"
  - "POST /identities/{id}/analyze?force=true"
  - "GET /cache?limit=10, DELETE /cache"
  - "GET /health, GET /metrics"

configuration:
  file: "--config linkslug.yaml (optional)"
  env:
    - "ANTHROPIC_API_KEY"
    - "REDIS_ADDRESS, REDIS_PASSWORD (cache.backend: redis)"
  dotenv: ".env in the working directory is loaded if present"

error_behavior:
  - "Malformed URLs: reported, other URLs still processed"
  - "Fetch or AI failures: fall through to the next tier"
  - "Exit codes: 0=success, 1=malformed input or failure"
`
