package captcha

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRecaptchaVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.PostFormValue("privatekey") != "test-key" {
			fmt.Fprint(w, "false\ninvalid-site-private-key")
			return
		}
		if r.PostFormValue("response") == "right" {
			fmt.Fprint(w, "true\nsuccess")
			return
		}
		fmt.Fprint(w, "false\nincorrect-captcha-sol")
	}))
	defer srv.Close()

	v := NewRecaptchaVerifier(srv.URL, "test-key", 5*time.Second)
	ctx := context.Background()

	ok, err := v.Verify(ctx, "challenge", "right", "127.0.0.1")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected valid proof to pass")
	}

	ok, err = v.Verify(ctx, "challenge", "wrong", "127.0.0.1")
	if err != nil {
		t.Fatalf("verify wrong: %v", err)
	}
	if ok {
		t.Fatalf("expected wrong proof to fail")
	}
}

func TestRecaptchaTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	v := NewRecaptchaVerifier(srv.URL, "test-key", time.Second)
	if _, err := v.Verify(context.Background(), "c", "r", "127.0.0.1"); err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestStaticVerifier(t *testing.T) {
	ctx := context.Background()
	if ok, _ := (StaticVerifier{Valid: true}).Verify(ctx, "c", "r", ""); !ok {
		t.Fatalf("expected accepting verifier to pass")
	}
	if ok, _ := (StaticVerifier{Valid: false}).Verify(ctx, "c", "r", ""); ok {
		t.Fatalf("expected rejecting verifier to fail")
	}
}
