package jwtPkg

import (
	"testing"
	"time"
)

func TestSignAndVerify(t *testing.T) {
	t.Setenv(AccessTokenSecret, "test-secret")

	token, exp, err := Sign(map[string]interface{}{"id": "client-1", "name": "render-worker"}, time.Hour)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if exp <= time.Now().Unix() {
		t.Errorf("expiry %d is not in the future", exp)
	}

	parsed, err := VerifyToken(token, AccessTokenSecret)
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}

	client, err := ClientFromToken(parsed)
	if err != nil {
		t.Fatalf("ClientFromToken() error = %v", err)
	}
	if client.ID != "client-1" || client.Name != "render-worker" {
		t.Errorf("ClientFromToken() = %+v", client)
	}
}

func TestVerifyRejects(t *testing.T) {
	t.Setenv(AccessTokenSecret, "test-secret")

	expired, _, err := Sign(map[string]interface{}{"id": "client-1"}, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := VerifyToken(expired, AccessTokenSecret); err == nil {
		t.Error("VerifyToken() accepted an expired token")
	}

	valid, _, err := Sign(map[string]interface{}{"id": "client-1"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv(AccessTokenSecret, "rotated")
	if _, err := VerifyToken(valid, AccessTokenSecret); err == nil {
		t.Error("VerifyToken() accepted a token signed with another secret")
	}

	if _, err := VerifyToken("", AccessTokenSecret); err == nil {
		t.Error("VerifyToken() accepted an empty token")
	}
}

func TestClientFromTokenRequiresID(t *testing.T) {
	t.Setenv(AccessTokenSecret, "test-secret")

	token, _, err := Sign(map[string]interface{}{"name": "anonymous"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := VerifyToken(token, AccessTokenSecret)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ClientFromToken(parsed); err == nil {
		t.Error("ClientFromToken() accepted a token without id")
	}
}

func TestSignWithoutSecret(t *testing.T) {
	t.Setenv(AccessTokenSecret, "")

	if _, _, err := Sign(map[string]interface{}{"id": "x"}, time.Hour); err == nil {
		t.Error("Sign() succeeded without a secret")
	}
}
