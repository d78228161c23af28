package mailer

import (
	"strings"
	"testing"
)

func TestRenderResetMail(t *testing.T) {
	body, err := RenderResetMail(ResetMailData{
		Host:     "https://sync.example.com",
		Username: "alice",
		Code:     "ABC234DEF567",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(body, "Hello alice") {
		t.Fatalf("body missing greeting:\n%s", body)
	}
	if !strings.Contains(body, "https://sync.example.com/weave-password-reset?username=alice&key=ABC234DEF567") {
		t.Fatalf("body missing reset link:\n%s", body)
	}
	if !strings.Contains(body, "ABC234DEF567") {
		t.Fatalf("body missing bare code:\n%s", body)
	}
}
