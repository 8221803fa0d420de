package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	sigv4Algorithm   = "AWS4-HMAC-SHA256"
	unsignedPayload  = "UNSIGNED-PAYLOAD"
	maxPresignExpiry = 7 * 24 * time.Hour
)

var emptyPayloadHash = hashSHA256Hex(nil)

// signS3Request assina a requisição no header Authorization.
func signS3Request(req *http.Request, cfg S3Config, payloadHash string, now time.Time) {
	amzDate := now.UTC().Format("20060102T150405Z")
	dateStamp := now.UTC().Format("20060102")

	req.Header.Set("x-amz-date", amzDate)
	req.Header.Set("x-amz-content-sha256", payloadHash)
	req.Header.Set("Host", req.URL.Host)

	headers, signedHeaders := canonicalHeaders(req.Header)
	canonicalRequest := strings.Join([]string{
		req.Method,
		canonicalURI(req.URL.Path),
		canonicalQueryString(req.URL.Query()),
		headers,
		signedHeaders,
		payloadHash,
	}, "\n")

	scope := credentialScope(dateStamp, cfg.Region)
	signature := sign(cfg, dateStamp, stringToSign(amzDate, scope, canonicalRequest))

	req.Header.Set("Authorization", fmt.Sprintf(
		"%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		sigv4Algorithm,
		cfg.AccessKey,
		scope,
		signedHeaders,
		signature,
	))
}

// presignURL gera URL com assinatura na query string, assinando apenas o header host.
func presignURL(method string, target *url.URL, cfg S3Config, ttl time.Duration, now time.Time) (string, error) {
	if ttl < time.Second || ttl > maxPresignExpiry {
		return "", fmt.Errorf("storage: validade %s fora do intervalo permitido", ttl)
	}
	if target.Host == "" || target.Scheme == "" {
		return "", fmt.Errorf("storage: url alvo inválida %q", target.String())
	}

	amzDate := now.UTC().Format("20060102T150405Z")
	dateStamp := now.UTC().Format("20060102")
	scope := credentialScope(dateStamp, cfg.Region)

	query := url.Values{}
	query.Set("X-Amz-Algorithm", sigv4Algorithm)
	query.Set("X-Amz-Credential", cfg.AccessKey+"/"+scope)
	query.Set("X-Amz-Date", amzDate)
	query.Set("X-Amz-Expires", strconv.FormatInt(int64(ttl/time.Second), 10))
	query.Set("X-Amz-SignedHeaders", "host")

	uri := canonicalURI(target.Path)
	rawQuery := canonicalQueryString(query)

	canonicalRequest := strings.Join([]string{
		method,
		uri,
		rawQuery,
		"host:" + strings.ToLower(target.Host) + "\n",
		"host",
		unsignedPayload,
	}, "\n")

	signature := sign(cfg, dateStamp, stringToSign(amzDate, scope, canonicalRequest))
	return fmt.Sprintf("%s://%s%s?%s&X-Amz-Signature=%s", target.Scheme, target.Host, uri, rawQuery, signature), nil
}

func credentialScope(dateStamp, region string) string {
	return fmt.Sprintf("%s/%s/s3/aws4_request", dateStamp, region)
}

func stringToSign(amzDate, scope, canonicalRequest string) string {
	return strings.Join([]string{
		sigv4Algorithm,
		amzDate,
		scope,
		hashSHA256Hex([]byte(canonicalRequest)),
	}, "\n")
}

func sign(cfg S3Config, dateStamp, toSign string) string {
	key := deriveSigningKey(cfg.SecretKey, dateStamp, cfg.Region, "s3")
	return hex.EncodeToString(hmacSHA256(key, []byte(toSign)))
}

func canonicalURI(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return uriEncode(path, false)
}

func canonicalQueryString(values url.Values) string {
	if len(values) == 0 {
		return ""
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		vals := append([]string(nil), values[key]...)
		sort.Strings(vals)
		for _, v := range vals {
			parts = append(parts, uriEncode(key, true)+"="+uriEncode(v, true))
		}
	}
	return strings.Join(parts, "&")
}

func canonicalHeaders(h http.Header) (string, string) {
	merged := make(map[string][]string)
	for k, vals := range h {
		lower := strings.ToLower(k)
		if lower == "authorization" || lower == "user-agent" {
			continue
		}
		merged[lower] = append(merged[lower], vals...)
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headerLines := make([]string, len(keys))
	for i, k := range keys {
		sanitized := make([]string, 0, len(merged[k]))
		for _, v := range merged[k] {
			sanitized = append(sanitized, strings.TrimSpace(v))
		}
		headerLines[i] = k + ":" + strings.Join(sanitized, ",")
	}

	return strings.Join(headerLines, "\n") + "\n", strings.Join(keys, ";")
}

func uriEncode(input string, encodeSlash bool) string {
	var builder strings.Builder
	for i := 0; i < len(input); i++ {
		c := input[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' || c == '_' || c == '.' || c == '~' {
			builder.WriteByte(c)
			continue
		}
		if c == '/' && !encodeSlash {
			builder.WriteByte(c)
			continue
		}
		fmt.Fprintf(&builder, "%%%02X", c)
	}
	return builder.String()
}

func deriveSigningKey(secret, dateStamp, region, service string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secret), []byte(dateStamp))
	kRegion := hmacSHA256(kDate, []byte(region))
	kService := hmacSHA256(kRegion, []byte(service))
	return hmacSHA256(kService, []byte("aws4_request"))
}

func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

func hashSHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
