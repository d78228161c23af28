// Package captcha gates unauthenticated operations behind a
// challenge/response check.
package captcha

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Verifier validates a captcha challenge/response pair.
type Verifier interface {
	Verify(ctx context.Context, challenge, response, remoteIP string) (bool, error)
}

// RecaptchaVerifier submits proofs to the reCAPTCHA verify endpoint. The
// response body is line-oriented: "true" on the first line for a valid proof,
// "false" followed by an error code otherwise.
type RecaptchaVerifier struct {
	client     *http.Client
	verifyURL  string
	privateKey string
}

// NewRecaptchaVerifier builds a verifier for the given endpoint and key.
// The timeout bounds the whole verification round trip.
func NewRecaptchaVerifier(verifyURL, privateKey string, timeout time.Duration) *RecaptchaVerifier {
	return &RecaptchaVerifier{
		client:     &http.Client{Timeout: timeout},
		verifyURL:  verifyURL,
		privateKey: privateKey,
	}
}

// Verify submits the proof. A transport failure is returned as an error;
// a rejected proof is (false, nil).
func (v *RecaptchaVerifier) Verify(ctx context.Context, challenge, response, remoteIP string) (bool, error) {
	form := url.Values{
		"privatekey": {v.privateKey},
		"remoteip":   {remoteIP},
		"challenge":  {challenge},
		"response":   {response},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("captcha verify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("captcha verify: unexpected status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	if !scanner.Scan() {
		return false, fmt.Errorf("captcha verify: empty response")
	}
	return strings.TrimSpace(scanner.Text()) == "true", nil
}

// StaticVerifier answers every proof with a fixed verdict. Used in
// development mode and in tests.
type StaticVerifier struct {
	Valid bool
}

// Verify returns the configured verdict.
func (v StaticVerifier) Verify(context.Context, string, string, string) (bool, error) {
	return v.Valid, nil
}
