package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestKeyCommands(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"key", "encode", "1"}, "2223"},
		{[]string{"key", "encode", "5"}, "222G"},
		{[]string{"key", "decode", "2224"}, "2"},
		{[]string{"key", "decode", "222g"}, "5"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			var out bytes.Buffer
			if err := run(tt.args, strings.NewReader(""), &out); err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if got := strings.TrimSpace(out.String()); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeyCommandErrors(t *testing.T) {
	tests := [][]string{
		{"key", "encode", "0"},
		{"key", "encode", "abc"},
		{"key", "decode", "XYZ1"},
	}
	for _, args := range tests {
		if err := run(args, strings.NewReader(""), &bytes.Buffer{}); err == nil {
			t.Errorf("run(%v) succeeded, want error", args)
		}
	}
}

func TestUsage(t *testing.T) {
	for _, args := range [][]string{nil, {"bogus"}, {"key"}, {"leaderboard"}} {
		if err := run(args, strings.NewReader(""), &bytes.Buffer{}); !errors.Is(err, errUsage) {
			t.Errorf("run(%v) = %v, want usage error", args, err)
		}
	}
}

func TestHashPassword(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"hash-password"}, strings.NewReader("long-enough-secret\n"), &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	hash := strings.TrimSpace(out.String())
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("long-enough-secret")); err != nil {
		t.Errorf("hash does not match password: %v", err)
	}

	if err := run([]string{"hash-password", "--password", "short"}, strings.NewReader(""), &bytes.Buffer{}); err == nil {
		t.Error("expected weak password to be rejected")
	}
}

func TestToPar(t *testing.T) {
	for n, want := range map[int]string{0: "E", 3: "+3", -2: "-2"} {
		if got := toPar(n); got != want {
			t.Errorf("toPar(%d) = %q, want %q", n, got, want)
		}
	}
}
